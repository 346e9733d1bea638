package pipeline_test

import (
	"context"
	"sync/atomic"
)

// MockProvider stands in for a completion endpoint. OnComplete runs
// concurrently during fan-out so it must stay goroutine safe.
type MockProvider struct {
	CallCount  int32
	OnComplete func(ctx context.Context, prompt string, chunkText string) (string, error)
}

func (m *MockProvider) Complete(ctx context.Context, prompt string, chunkText string) (string, error) {
	atomic.AddInt32(&m.CallCount, 1)
	if m.OnComplete != nil {
		return m.OnComplete(ctx, prompt, chunkText)
	}
	return "", nil
}
