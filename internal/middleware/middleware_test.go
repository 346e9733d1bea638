package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/api"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/config"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/data/store"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/jobModel"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/handlers"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/job"
)

func multipartQuery(t *testing.T, fields map[string]string, fileName string, fileBody string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		writer.WriteField(key, value)
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("document", fileName)
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		io.WriteString(part, fileBody)
	}
	writer.Close()
	return &body, writer.FormDataContentType()
}

// The wait=true variant must outlive the server's global write deadline,
// which is tuned for fast handlers. A worker slower than that deadline
// used to get the connection killed under it before the snapshot went out.
func TestQueryHandler_WaitOutlivesServerWriteDeadline(t *testing.T) {
	if testing.Short() {
		t.Skip("waits past the server write deadline")
	}

	svc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          store.InitInMemoryJobStore(),
		MessageStore:      store.InitMessageStore(),
	})
	handlers.InitJobHandler(svc)

	// worker deliberately slower than the write deadline
	jobDuration := config.WriteTimeout + 2*time.Second
	go func() {
		ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
		for j := range svc.JobChannel {
			time.Sleep(jobDuration)
			j.Result = "slow answer"
			svc.TransitionJob(ctx, j, jobModel.JobStatusSucceeded)
		}
	}()

	router := chi.NewRouter()
	router.Post("/query", QueryHandler)

	// a real server with the exact timeouts CreateServer installs
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	srv := &http.Server{
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	go srv.Serve(listener)
	defer srv.Close()

	body, contentType := multipartQuery(t,
		map[string]string{"prompt": "summarize", "wait": "true"},
		"notes.txt", "some document content")

	client := &http.Client{Timeout: jobDuration + 30*time.Second}
	res, err := client.Post("http://"+listener.Addr().String()+"/query", contentType, body)
	if err != nil {
		t.Fatalf("Waiting request died under the server write deadline: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("Status got %d, want 200", res.StatusCode)
	}

	var jobRes api.JobResponse
	if err := json.NewDecoder(res.Body).Decode(&jobRes); err != nil {
		t.Fatalf("Could not decode response: %v", err)
	}
	if jobRes.Result.Status != string(jobModel.JobStatusSucceeded) {
		t.Errorf("Result status got %q, want %q", jobRes.Result.Status, jobModel.JobStatusSucceeded)
	}
	if jobRes.Result.Answer == nil || jobRes.Result.Answer.Answer != "slow answer" {
		t.Errorf("Answer got %+v, want the worker output", jobRes.Result.Answer)
	}
}

// A rejected request must produce exactly one JSON error body, not one
// per layer that noticed the failure.
func TestRateLimiter_RejectionWritesOneResponse(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/", GetHandler)

	var limited *httptest.ResponseRecorder
	for i := 0; i < config.BURST_RATE_LIMIT_PER_SECOND+5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:4242"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = rec
			break
		}
	}
	if limited == nil {
		t.Fatal("Rate limiter never tripped")
	}

	// a duplicated body would not parse as a single JSON document
	var res api.JobResponse
	if err := json.Unmarshal(limited.Body.Bytes(), &res); err != nil {
		t.Fatalf("429 body is not a single JSON document: %v\nbody: %s", err, limited.Body.String())
	}
	if res.Error == nil || res.Error.Code != http.StatusTooManyRequests {
		t.Errorf("Error got %+v, want code 429", res.Error)
	}
}
