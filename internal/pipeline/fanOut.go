package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/config"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/commonModels"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/jobModel"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/metrics"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/pipeline/llm"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/pkg/logger_i"
)

type chunkResult struct {
	text string
	err  error
}

// fanOut issues one completion call per chunk, at most MaxChunkConcurrency
// in flight. Results land in a slice keyed by chunk position, not by
// arrival order, so reassembly is always ascending chunk index no matter
// which network call finishes first. The WaitGroup join guarantees no
// spawned call outlives this function; on deadline expiry the outstanding
// calls see the cancelled context and resolve as transient timeouts.
func (s *service) fanOut(ctx context.Context, log *logger_i.Logger, prompt string, chunks []commonModels.Chunk) (string, []jobModel.ChunkError) {
	if len(chunks) == 0 {
		return "", nil
	}

	results := make([]chunkResult, len(chunks))
	semaphore := make(chan struct{}, config.MaxChunkConcurrency)
	var waitGroup sync.WaitGroup

	for i, chunk := range chunks {
		waitGroup.Add(1)
		go func(slot int, chunk commonModels.Chunk) {
			defer waitGroup.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				results[slot] = chunkResult{err: llm.Transient("timeout")}
				return
			}

			start := time.Now()
			text, err := llm.CompleteWithRetry(ctx, s.llmProvider, prompt, chunk.Text)
			metrics.CaptureExecutionMetrics("chunk_completion", time.Since(start))
			results[slot] = chunkResult{text: text, err: err}
		}(i, chunk)
	}
	waitGroup.Wait()

	var combined strings.Builder
	var chunkErrors []jobModel.ChunkError
	for i, res := range results {
		if res.err != nil {
			metrics.IncrementChunkFailures()
			log.Error("Chunk completion failed", "chunkIndex", chunks[i].Index, "error", res.err)
			chunkErrors = append(chunkErrors, jobModel.ChunkError{Index: chunks[i].Index, Detail: res.err.Error()})
			continue
		}
		if combined.Len() > 0 {
			combined.WriteString("\n")
		}
		combined.WriteString(res.text)
	}
	return combined.String(), chunkErrors
}
