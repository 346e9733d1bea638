package store_test

import (
	"context"
	"testing"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/config"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/data/redisStore"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/data/store"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/jobModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisJobStore_Lifecycle(t *testing.T) {
	// 1. Start miniredis
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	internalStore := redisStore.NewTestStore(client)
	jobStore := store.TestJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:        jobID,
		Status:    jobModel.JobStatusRunning,
		Prompt:    "How do I mock Redis?",
		WordCount: 42,
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		// Test Save
		err := jobStore.SaveJob(ctx, testJob)
		if err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		// Test Get
		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}

		if retrievedJob.Prompt != testJob.Prompt {
			t.Errorf("Data mismatch! Got %s, want %s", retrievedJob.Prompt, testJob.Prompt)
		}
		if retrievedJob.WordCount != testJob.WordCount {
			t.Errorf("Word count got %d, want %d", retrievedJob.WordCount, testJob.WordCount)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		_, found := jobStore.GetJob(ctx, "ghost-id")
		if found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)

		// Verify it's gone from miniredis
		if mr.Exists(jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisJobStore_Race(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	jobStore := store.TestJobStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	job := jobModel.Job{Id: "race-job"}

	const workers = 50
	for i := 0; i < workers; i++ {
		go func() {
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
}

func TestInMemoryJobStore_TerminalRecordsAreImmutable(t *testing.T) {
	jobStore := store.InitInMemoryJobStore()
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	finished := jobModel.Job{Id: "done-job", Status: jobModel.JobStatusSucceeded, Result: "the answer"}
	if err := jobStore.SaveJob(ctx, finished); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	// a late writer trying to drag the job back to Running must lose
	stale := jobModel.Job{Id: "done-job", Status: jobModel.JobStatusRunning}
	if err := jobStore.SaveJob(ctx, stale); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	current, found := jobStore.GetJob(ctx, "done-job")
	if !found {
		t.Fatal("Job vanished")
	}
	if current.Status != jobModel.JobStatusSucceeded {
		t.Errorf("Status got %v, terminal state was overwritten", current.Status)
	}
	if current.Result != "the answer" {
		t.Errorf("Result got %q, want the original answer", current.Result)
	}
}

func TestRedisMessageStore_ChatLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	messageStore := store.TestMessageStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "chat-trace")
	chatID := "chat_xyz"

	if messageStore.ValidateChatId(ctx, chatID) {
		t.Error("Chat validated before it was created")
	}

	if err := messageStore.InitNewChat(ctx, chatID); err != nil {
		t.Fatalf("InitNewChat failed: %v", err)
	}
	if !messageStore.ValidateChatId(ctx, chatID) {
		t.Error("Chat not found after InitNewChat")
	}

	message := jobModel.ChatMessage{Question: "what is chapter 2 about", Answer: "thermodynamics", WordCount: 812}
	if err := messageStore.TrySaveChat(ctx, chatID, message); err != nil {
		t.Fatalf("TrySaveChat failed: %v", err)
	}

	err, history := messageStore.GetMessageHistory(ctx, chatID)
	if err != nil {
		t.Fatalf("GetMessageHistory failed: %v", err)
	}
	if len(history) == 0 {
		t.Fatal("Expected saved history entries")
	}

	if err := messageStore.TrySaveChat(ctx, "never-created", message); err == nil {
		t.Error("Saving to an unknown chat must fail")
	}
}

func TestInMemoryMessageStore_ChatLifecycle(t *testing.T) {
	messageStore := store.InitMessageStore()
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "chat-trace")
	chatID := "chat_mem"

	message := jobModel.ChatMessage{Question: "q", Answer: "a", WordCount: 3}

	// the fallback store honours the same contract as the redis one:
	// an unknown chat is an error, not a silent drop
	if err := messageStore.TrySaveChat(ctx, chatID, message); err == nil {
		t.Error("Saving to an unknown chat must fail")
	}

	if err := messageStore.InitNewChat(ctx, chatID); err != nil {
		t.Fatalf("InitNewChat failed: %v", err)
	}
	if !messageStore.ValidateChatId(ctx, chatID) {
		t.Error("Chat not found after InitNewChat")
	}

	if err := messageStore.TrySaveChat(ctx, chatID, message); err != nil {
		t.Fatalf("TrySaveChat failed: %v", err)
	}

	err, history := messageStore.GetMessageHistory(ctx, chatID)
	if err != nil {
		t.Fatalf("GetMessageHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("Expected 1 history entry, got %d", len(history))
	}
}
