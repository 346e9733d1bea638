package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id,omitempty" example:"chat_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type AnswerResponse struct {
	Question    string         `json:"question"`
	Answer      string         `json:"answer"`
	WordCount   int            `json:"word_count"`
	ChunkErrors []ChunkFailure `json:"chunk_errors,omitempty"`
}

// ChunkFailure reports a chunk that contributed no text to the answer.
type ChunkFailure struct {
	Index  int    `json:"index"`
	Detail string `json:"detail"`
}

type Result struct {
	Status string          `json:"status"`
	Answer *AnswerResponse `json:"answer,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

// requests---------------------

// QueryRequest documents the multipart form fields of POST /query.
type QueryRequest struct {
	Prompt string `json:"prompt" validate:"required"`
	ChatID string `json:"chatID,omitempty"`
	Wait   bool   `json:"wait,omitempty"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}
