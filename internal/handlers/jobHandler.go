package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/config"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/commonModels"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/jobModel"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/job"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/metrics"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service *job.Service
}

func InitJobHandler(jobService *job.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})
}

func CreateNewJob(newJob newJobData) {
	log := logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	log.Info("To create new job", "chunks", len(newJob.chunks))
	handlerInstance.pushToJobChannel(newJob)
	if newJob.isNewChat {
		log.Info("Create new chat")
		handlerInstance.initNewChat(newJob.chatId, newJob.traceId)
	}
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// WaitForJob gives synchronous callers a bounded wait for a terminal state;
// on timeout they get the current snapshot back, still Pending or Running.
func WaitForJob(ctx context.Context, id string, traceId string) (jobModel.Job, bool) {
	if handlerInstance == nil {
		return jobModel.Job{}, false
	}
	ctxC := context.WithValue(ctx, config.TRACE_ID_KEY, traceId)
	return handlerInstance.service.WaitForTerminal(ctxC, id, config.SyncWaitTimeout)
}

func ValidateChatId(chatId string) bool {
	if handlerInstance == nil {
		return false
	}
	if chatId == "" {
		return true
	}
	logJH.Debug("Validating chat id ", "chatId :", chatId)
	return handlerInstance.service.MessageStore.ValidateChatId(context.Background(), chatId)
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusPending
	_job.CurrentStep = jobModel.QueryInit
	_job.ChatId = newJob.chatId
	_job.Prompt = newJob.prompt
	_job.Chunks = newJob.chunks
	_job.WordCount = newJob.wordCount

	// The record must exist before submit returns so pollers can find a
	// Pending job immediately.
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, newJob.traceId)
	if err := h.service.JobStore.SaveJob(ctxC, _job); err != nil {
		logJH.Error("Failed to save pending job", "err", err)
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//we will start a new worker every 10 requests - can also be configured
	// or
	//for performance - a new worker is added for a multi-chunk job
	//fan-out means several outbound completion calls which might take time
	//worker will be removed if it has idle time - so it should be ok
	//this also allows us to only keep 1 worker running at most times therefore cutting resource spend

	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || len(newJob.chunks) > 1 {
		metrics.StartDispatcherSignalCount() //metrics
		logJH.Debug("Worker count ", "requests", accurateCount)
		h.service.DispatcherChannel <- true
	}
}

func (h *JobHandler) initNewChat(chatId string, traceId string) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	err := h.service.MessageStore.InitNewChat(ctxC, chatId)
	if err != nil {
		logJH.Error("Error initiating new chat", "chatId", chatId, "err", err)
		return
	}
}

// used by tests to point the handler singleton at a fresh service
func resetForTest(jobService *job.Service) {
	handlerInstance = &JobHandler{service: jobService}
	if logJH == nil {
		logJH = logger_i.NewLogger("JobHandler")
	}
	if logRH == nil {
		logRH = logger_i.NewLogger("RequestHandler")
	}
}

type newJobData struct {
	id        string
	chatId    string
	prompt    string
	isNewChat bool
	traceId   string
	chunks    []commonModels.Chunk
	wordCount int
}
