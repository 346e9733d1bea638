package llm

import (
	"context"
	"math/rand"
	"time"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/config"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/metrics"
)

// CompleteWithRetry drives a provider through the retry policy: up to
// MaxCompletionAttempts requests total, exponential backoff starting at
// RetryBackoffStart, doubled per attempt and capped at RetryBackoffCap, with
// a little jitter so parallel chunk calls don't retry in lockstep.
// Permanent failures return immediately. Exhausting the attempts returns the
// last transient error as a value, never a panic - the pipeline keeps
// processing other chunks.
func CompleteWithRetry(ctx context.Context, provider Provider, prompt string, chunkText string) (string, error) {
	backoff := config.RetryBackoffStart
	var lastErr error

	for attempt := 1; attempt <= config.MaxCompletionAttempts; attempt++ {
		text, err := provider.Complete(ctx, prompt, chunkText)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return "", err
		}
		if attempt == config.MaxCompletionAttempts {
			break
		}

		metrics.IncrementCompletionRetries()

		select {
		case <-ctx.Done():
			return "", Transient("timeout")
		case <-time.After(backoff + jitter()):
		}

		backoff *= 2
		if backoff > config.RetryBackoffCap {
			backoff = config.RetryBackoffCap
		}
	}
	return "", lastErr
}

func jitter() time.Duration {
	return time.Duration(rand.Int63n(int64(500 * time.Millisecond)))
}
