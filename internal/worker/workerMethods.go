package worker

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/config"
	jobmodel "github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/jobModel"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/metrics"
)

// executeJob owns every status transition of the job it was handed. The
// channel handoff guarantees no other worker ever sees this job.
func executeJob(currentJob jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(currentJob.Status), time.Since(start))
	}()

	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, currentJob.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobExecutionTimeout)
	defer cancel()
	log := logger.With("traceId", currentJob.TraceId, "jobId", currentJob.Id)

	// A panic below must never leave the job stuck in Running or kill the
	// worker goroutine pool-wide.
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job execution panicked", "panic", r)
			currentJob.Error = jobmodel.JobError{
				Code:    http.StatusInternalServerError,
				Message: "internal worker failure",
				Retry:   false,
			}
			currentJob.CurrentStep = jobmodel.Error
			currentJob.EndTime = time.Now()
			saveJobState(ctxTrace, currentJob, jobmodel.JobStatusFailed)
		}
	}()

	log.Debug("Processing job")
	currentJob = saveJobState(ctx, currentJob, jobmodel.JobStatusRunning)

	currentJob = _pipelineService.Answer(ctx, currentJob)

	if currentJob.Status != jobmodel.JobStatusFailed && currentJob.ChatId != "" {
		currentJob.CurrentStep = jobmodel.SavingChat
		message := jobmodel.ChatMessage{
			Question:  currentJob.Prompt,
			Answer:    currentJob.Result,
			WordCount: currentJob.WordCount,
		}
		if err := _jobService.MessageStore.TrySaveChat(ctx, currentJob.ChatId, message); err != nil {
			log.Error("Failed to save chat history", "err", err)
		}
		currentJob.CurrentStep = jobmodel.Complete
	}

	currentJob.EndTime = time.Now()
	terminalStatus := jobmodel.JobStatusSucceeded
	if currentJob.Status == jobmodel.JobStatusFailed {
		terminalStatus = jobmodel.JobStatusFailed
	}
	currentJob = saveJobState(ctx, currentJob, terminalStatus)
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}

func saveJobState(ctx context.Context, currentJob jobmodel.Job, jobStatus jobmodel.JobStatus) jobmodel.Job {
	updated, err := _jobService.TransitionJob(ctx, currentJob, jobStatus)
	if err != nil {
		logger.Error("Failed to persist job status", "err", err)
	}
	return updated
}
