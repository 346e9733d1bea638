package jobModel

import (
	"context"
	"time"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/commonModels"
)

type JobStatus string
type InternalStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	JobStatusFailed    JobStatus = "FAILED"

	QueryInit      InternalStatus = "Init"
	ChunkFanOut    InternalStatus = "FanOut"
	CompletionCall InternalStatus = "Completion"
	SavingChat     InternalStatus = "SavingChat"
	Complete       InternalStatus = "Complete"
	Error          InternalStatus = "Error"
)

// Job is one unit of "answer this prompt using these chunks" work.
// Transitions are owned by the worker that dequeues it; once the status is
// terminal the record never changes again.
type Job struct {
	Id          string               `json:"id"`
	ChatId      string               `json:"chat_id,omitempty"`
	TraceId     string               `json:"trace_id"`
	Prompt      string               `json:"prompt"`
	Chunks      []commonModels.Chunk `json:"chunks,omitempty"`
	WordCount   int                  `json:"word_count"`
	Result      string               `json:"result,omitempty"`
	ChunkErrors []ChunkError         `json:"chunk_errors,omitempty"`
	Error       JobError             `json:"error,omitempty"`
	CreatedTime time.Time            `json:"created_time"`
	EndTime     time.Time            `json:"end_time,omitempty"`
	Status      JobStatus            `json:"status"`
	CurrentStep InternalStatus       `json:"current_step"`
}

// IsTerminal reports whether the job reached a final state.
func (j Job) IsTerminal() bool {
	return j.Status == JobStatusSucceeded || j.Status == JobStatusFailed
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// ChunkError records a chunk whose completion call never produced text.
// These are data, not failures of the job itself.
type ChunkError struct {
	Index  int    `json:"index"`
	Detail string `json:"detail"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

type ChatMessage struct {
	Question  string `json:"question,omitempty"`
	Answer    string `json:"answer,omitempty"`
	WordCount int    `json:"word_count,omitempty"`
}

type MessageStore interface {
	ValidateChatId(ctx context.Context, id string) bool
	TrySaveChat(ctx context.Context, id string, message ChatMessage) error
	InitNewChat(ctx context.Context, id string) error
	GetMessageHistory(ctx context.Context, chatId string) (error, []string)
}
