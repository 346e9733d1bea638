package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/api"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/config"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/data/store"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/jobModel"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/job"
)

// inline worker: drains the job channel and finishes every job so
// wait=true requests come back terminal without the real pool
func startInlineWorker(svc *job.Service) {
	go func() {
		ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
		for j := range svc.JobChannel {
			j.Result = "inline answer"
			svc.TransitionJob(ctx, j, jobModel.JobStatusSucceeded)
		}
	}()
}

func setupTestRouter(t *testing.T) (*chi.Mux, *job.Service) {
	t.Helper()
	svc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          store.InitInMemoryJobStore(),
		MessageStore:      store.InitMessageStore(),
	})
	resetForTest(svc)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), config.TRACE_ID_KEY, "test-trace")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	router.Post("/query", QueryHandler)
	router.Get("/status/{id}", GetStatusHandler)
	return router, svc
}

func multipartQuery(t *testing.T, fields map[string]string, fileName string, fileBody string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		writer.WriteField(key, value)
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("document", fileName)
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		io.WriteString(part, fileBody)
	}
	writer.Close()
	return &body, writer.FormDataContentType()
}

func TestQueryHandler_AsyncSubmitReturnsAccepted(t *testing.T) {
	router, svc := setupTestRouter(t)

	body, contentType := multipartQuery(t,
		map[string]string{"prompt": "what is this file about"},
		"notes.txt", "photosynthesis converts light into chemical energy")
	req := httptest.NewRequest(http.MethodPost, "/query", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("Status got %d, want 202, body: %s", rec.Code, rec.Body.String())
	}

	var res api.InitJobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("Could not decode response: %v", err)
	}
	if res.Id == "" {
		t.Error("Response carries no job id")
	}
	if res.StatusURL != "status/"+res.Id {
		t.Errorf("Status URL got %q", res.StatusURL)
	}

	// submit must leave a Pending record behind before the worker runs
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	stored, found := svc.JobStore.GetJob(ctx, res.Id)
	if !found {
		t.Fatal("No job record after submit")
	}
	if stored.Status != jobModel.JobStatusPending {
		t.Errorf("Status got %v, want %v", stored.Status, jobModel.JobStatusPending)
	}
	if stored.WordCount != 6 {
		t.Errorf("Word count got %d, want 6", stored.WordCount)
	}
}

func TestQueryHandler_WaitReturnsTerminalResult(t *testing.T) {
	router, svc := setupTestRouter(t)
	startInlineWorker(svc)

	body, contentType := multipartQuery(t,
		map[string]string{"prompt": "summarize", "wait": "true"},
		"notes.txt", "some document content")
	req := httptest.NewRequest(http.MethodPost, "/query", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status got %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var res api.JobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("Could not decode response: %v", err)
	}
	if res.Result.Status != string(jobModel.JobStatusSucceeded) {
		t.Errorf("Result status got %q, want %q", res.Result.Status, jobModel.JobStatusSucceeded)
	}
	if res.Result.Answer == nil || res.Result.Answer.Answer != "inline answer" {
		t.Errorf("Answer got %+v, want the worker output", res.Result.Answer)
	}
}

func TestQueryHandler_Validation(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]string
		fileName string
		fileBody string
		wantCode int
	}{
		{
			name:     "Missing_Prompt",
			fields:   map[string]string{},
			fileName: "notes.txt",
			fileBody: "content",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "Missing_File",
			fields:   map[string]string{"prompt": "hello"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "Unsupported_File_Type",
			fields:   map[string]string{"prompt": "hello"},
			fileName: "image.png",
			fileBody: "not a document",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "Unknown_Chat_Id",
			fields:   map[string]string{"prompt": "hello", "chat_id": "never-created"},
			fileName: "notes.txt",
			fileBody: "content",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupTestRouter(t)

			body, contentType := multipartQuery(t, tt.fields, tt.fileName, tt.fileBody)
			req := httptest.NewRequest(http.MethodPost, "/query", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("Status got %d, want %d, body: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestGetStatusHandler_UnknownJobIs404(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/status/ghost-id", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Status got %d, want 404", rec.Code)
	}

	var res api.JobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("Could not decode response: %v", err)
	}
	if res.Error == nil || res.Error.Message != "Job not found" {
		t.Errorf("Error got %+v, want Job not found", res.Error)
	}
}

func TestGetStatusHandler_ReturnsStoredJob(t *testing.T) {
	router, svc := setupTestRouter(t)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	saved := jobModel.Job{
		Id:     "job-77",
		Prompt: "what happened",
		Result: "everything worked",
		Status: jobModel.JobStatusSucceeded,
	}
	if err := svc.JobStore.SaveJob(ctx, saved); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/status/job-77", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status got %d, want 200", rec.Code)
	}

	var res api.JobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("Could not decode response: %v", err)
	}
	if res.Id != "job-77" {
		t.Errorf("Id got %q", res.Id)
	}
	if res.Result.Status != string(jobModel.JobStatusSucceeded) {
		t.Errorf("Result status got %q", res.Result.Status)
	}
	if res.Result.Answer == nil || res.Result.Answer.Answer != "everything worked" {
		t.Errorf("Answer got %+v", res.Result.Answer)
	}
}
