package job

import (
	"context"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/jobModel"
)

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	MessageStore      jobModel.MessageStore
	Watcher           *Notifier
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	MessageStore      jobModel.MessageStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		MessageStore:      cfg.MessageStore,
		Watcher:           NewNotifier(),
	}
}

// TransitionJob persists a status change and wakes any bounded-wait caller
// once the job turns terminal. A job that already reached a terminal state
// is returned untouched - terminal states are never overwritten.
func (s *Service) TransitionJob(ctx context.Context, job jobModel.Job, status jobModel.JobStatus) (jobModel.Job, error) {
	if current, found := s.JobStore.GetJob(ctx, job.Id); found && current.IsTerminal() {
		return current, nil
	}

	job.Status = status
	if err := s.JobStore.SaveJob(ctx, job); err != nil {
		return job, err
	}
	s.Watcher.Notify(job)
	return job, nil
}
