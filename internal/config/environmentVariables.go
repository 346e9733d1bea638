package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, it falls back to an internal in-memory store
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5

	//auth - the api normally sits behind a gateway that owns real identity,
	//this token only guards direct access
	NoAuthBypass = true
	AuthToken    = ""

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//chunking
	MaxChunkSize    = 1500 //characters per chunk sent to the model
	NoContentMarker = "No text found in the document."

	//completion provider
	GroqBaseURL           = "https://api.groq.com/openai/v1"
	GroqModelName         = "llama3-8b-8192"
	GeminiModelName       = "gemini-2.5-flash-lite-preview-09-2025"
	CompletionTimeout     = 30 * time.Second
	MaxCompletionAttempts = 3
	RetryBackoffStart     = 2 * time.Second
	RetryBackoffCap       = 10 * time.Second

	//fan-out - cap on in-flight completion calls per job so a big
	//document doesn't trip the provider rate limits
	MaxChunkConcurrency = 8
	JobExecutionTimeout = 5 * time.Minute

	//synchronous callers wait at most this long before getting a
	//non-terminal snapshot back
	SyncWaitTimeout = 180 * time.Second

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost     = "127.0.0.1"
	redisPort     = "6379"
	RedisAddr     = redisHost + ":" + redisPort
	RedisPassword = ""

	//redis has 16 DB we can use
	RedisJobStore     = 0
	RedisMessageStore = 1

	//redis timeouts - the job TTL doubles as the retention window for
	//completed jobs, nothing else garbage-collects them
	RedisJobStoreTTL     = 24 * time.Hour
	RedisMessageStoreTTL = 24 * time.Hour
)
