package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/config"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/jobModel"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/metrics"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/pipeline/llm"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/pkg/logger_i"
)

// Service is the only thing the worker calls - it doesn't need to know
// which completion provider sits behind it.
type Service interface {
	Answer(ctx context.Context, job jobModel.Job) jobModel.Job
}

type service struct {
	llmProvider llm.Provider
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(provider llm.Provider) Service {
	return &service{
		llmProvider: provider,
		logger:      logger_i.NewLogger("Pipeline Service :"),
	}
}

// Answer fans one completion call out per chunk, waits for every chunk to
// resolve and reassembles the answers in chunk order. Chunk failures are
// carried on the job as data; the job itself only fails when not a single
// chunk produced text.
func (s *service) Answer(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", jobt.TraceId, "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, config.JobExecutionTimeout)
	defer cancel()

	jobt.CurrentStep = jobModel.ChunkFanOut

	start := time.Now()
	combined, chunkErrors := s.fanOut(processContext, inMethodLogger, jobt.Prompt, jobt.Chunks)
	metrics.CaptureExecutionMetrics("chunk_fanout", time.Since(start))

	jobt.ChunkErrors = chunkErrors

	if len(jobt.Chunks) > 0 && len(chunkErrors) == len(jobt.Chunks) {
		return s.jobError(jobt, errors.New("every chunk failed"), "ALL_CHUNKS_FAILED", true)
	}

	return returnOutput(jobt, combined)
}
