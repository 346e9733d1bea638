package pipeline

import (
	"net/http"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/jobModel"
)

func returnOutput(job jobModel.Job, answer string) jobModel.Job {
	job.Result = answer
	job.CurrentStep = jobModel.Complete
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusFailed
	job.CurrentStep = jobModel.Error
	return job
}
