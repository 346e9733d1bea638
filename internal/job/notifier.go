package job

import (
	"context"
	"sync"
	"time"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/jobModel"
)

// Notifier wakes synchronous callers the moment their job turns terminal,
// so the bounded-wait path never has to sleep-poll the store.
type Notifier struct {
	mu      sync.Mutex
	waiters map[string][]chan jobModel.Job
}

func NewNotifier() *Notifier {
	return &Notifier{
		waiters: make(map[string][]chan jobModel.Job),
	}
}

func (n *Notifier) subscribe(jobId string) chan jobModel.Job {
	//buffered so Notify never blocks on a waiter that already gave up
	waiter := make(chan jobModel.Job, 1)
	n.mu.Lock()
	defer n.mu.Unlock()
	n.waiters[jobId] = append(n.waiters[jobId], waiter)
	return waiter
}

func (n *Notifier) unsubscribe(jobId string, waiter chan jobModel.Job) {
	n.mu.Lock()
	defer n.mu.Unlock()
	channels := n.waiters[jobId]
	for i, ch := range channels {
		if ch == waiter {
			n.waiters[jobId] = append(channels[:i], channels[i+1:]...)
			break
		}
	}
	if len(n.waiters[jobId]) == 0 {
		delete(n.waiters, jobId)
	}
}

// Notify is a no-op for non-terminal saves.
func (n *Notifier) Notify(job jobModel.Job) {
	if !job.IsTerminal() {
		return
	}
	n.mu.Lock()
	channels := n.waiters[job.Id]
	delete(n.waiters, job.Id)
	n.mu.Unlock()

	for _, ch := range channels {
		ch <- job
	}
}

// WaitForTerminal blocks until the job reaches a terminal state or waitFor
// elapses, whichever comes first, and returns the freshest snapshot either
// way. The worker keeps running when a caller gives up - the status
// endpoint stays authoritative.
func (s *Service) WaitForTerminal(ctx context.Context, jobId string, waitFor time.Duration) (jobModel.Job, bool) {
	waiter := s.Watcher.subscribe(jobId)
	defer s.Watcher.unsubscribe(jobId, waiter)

	//the job may have turned terminal before we subscribed
	snapshot, found := s.JobStore.GetJob(ctx, jobId)
	if !found {
		return snapshot, false
	}
	if snapshot.IsTerminal() {
		return snapshot, true
	}

	timer := time.NewTimer(waitFor)
	defer timer.Stop()

	select {
	case finished := <-waiter:
		return finished, true
	case <-timer.C:
	case <-ctx.Done():
	}
	return s.JobStore.GetJob(ctx, jobId)
}
