package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/adapter"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/adapter/utils"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/config"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/commonModels"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/extract"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/pkg/logger_i"
)

var logRH *logger_i.Logger

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// QueryHandler godoc
// @Summary      Ask a question about an uploaded document
// @Description  Receives a document and a prompt via multipart/form-data, splits the document into chunks and queues a completion job. Pass wait=true to block until the job finishes (bounded).
// @Tags         Query
// @Accept       multipart/form-data
// @Produce      json
// @Param        prompt    formData  string  true   "The question to ask about the document"
// @Param        document  formData  file    true   "The PDF, DOCX, TXT, RTF or ODT file to query"
// @Param        chat_id   formData  string  false  "Existing chat to append this exchange to"
// @Param        wait      formData  string  false  "Set to true to wait for the answer in this request"
// @Success      202  {object}  api.InitJobResponse "Accepted - poll the status URL"
// @Success      200  {object}  api.JobResponse "Returned when wait=true"
// @Failure      400  {object}  api.JobResponse "Missing fields, unknown chat or unsupported file"
// @Failure      500  {object}  api.JobResponse "Storage or write error"
// @Router       /query [post]
func QueryHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		const maxUploadSize = 32 << 20 //32mb
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
			return
		}

		prompt := r.FormValue("prompt")
		if prompt == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "prompt is required")
			return
		}

		chatId := r.FormValue("chat_id")
		isNewChat := false
		if chatId == "" {
			chatId = utils.GetNewUUID()
			isNewChat = true
			logRH.Debug(" New chat request : ", "chatID:", chatId)
		} else if !ValidateChatId(chatId) {
			WriteErrorResponse(w, http.StatusBadRequest, chatId, "Unknown chat id")
			return
		}

		fileReader, fileMetadata, err := r.FormFile("document")
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
			return
		}
		defer fileReader.Close()

		docType := extract.GetDocType(fileMetadata.Filename)
		if docType == commonModels.ERR {
			WriteErrorResponse(w, http.StatusBadRequest, "", "Unsupported file type")
			return
		}

		tempFilePath, errString := saveToTempFile(fileReader, fileMetadata.Filename)
		if errString != "" {
			WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
			return
		}
		defer func() {
			if err := os.Remove(tempFilePath); err != nil {
				logRH.Warn("Failed to remove temp file", "path", tempFilePath, "err", err)
			}
		}()

		chunks, wordCount, err := extract.ChunkDocument(tempFilePath, docType)
		if err != nil {
			logRH.Warn("Extraction failed", "file", fileMetadata.Filename, "err", err)
			WriteErrorResponse(w, http.StatusBadRequest, "", "Could not extract text from file")
			return
		}

		newJob := newJobData{
			id:        utils.GetNewUUID(),
			chatId:    chatId,
			prompt:    prompt,
			isNewChat: isNewChat,
			traceId:   r.Context().Value(config.TRACE_ID_KEY).(string),
			chunks:    chunks,
			wordCount: wordCount,
		}
		CreateNewJob(newJob)

		if r.FormValue("wait") == "true" {
			// the server write deadline is tuned for fast handlers and would
			// kill the connection long before the wait cap elapses
			deadline := time.Now().Add(config.SyncWaitTimeout + config.WriteTimeout)
			if err := http.NewResponseController(w).SetWriteDeadline(deadline); err != nil {
				logRH.Warn("Could not extend write deadline for waiting request", "err", err)
			}
			snapshot, isFound := WaitForJob(r.Context(), newJob.id, newJob.traceId)
			if !isFound {
				WriteErrorResponse(w, http.StatusNotFound, newJob.id, "Job not found")
				return
			}
			writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(snapshot))
			return
		}

		writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		//use chi get the url id
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

func saveToTempFile(fileReader io.Reader, originalName string) (string, string) {
	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory :", "err", errString)
		return "", errString
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(originalName))
	tempFilePath := filepath.Join(targetDir, filename)
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		return "", "Storage error"
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		return "", "Write error"
	}
	return tempFilePath, ""
}
