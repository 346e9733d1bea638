package adapter

import (
	"fmt"
	"time"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/api"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status: string(job.Status),
		Answer: ToAnswerResponse(job),
	}

	return api.JobResponse{
		Id:        job.Id,
		ChatId:    job.ChatId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToAnswerResponse(job jobModel.Job) *api.AnswerResponse {
	if job.Result == "" && len(job.ChunkErrors) == 0 {
		return nil
	}

	var failures []api.ChunkFailure
	for _, chunkErr := range job.ChunkErrors {
		failures = append(failures, api.ChunkFailure{
			Index:  chunkErr.Index,
			Detail: chunkErr.Detail,
		})
	}

	return &api.AnswerResponse{
		Question:    job.Prompt,
		Answer:      job.Result,
		WordCount:   job.WordCount,
		ChunkErrors: failures,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		ChatId:    "",
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
