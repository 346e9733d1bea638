// @title           AI Textbook Query API
// @version         1.0
// @description     Upload a textbook or notes and ask questions about it, answers are produced asynchronously
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/config"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/data/store"
	jobmodel "github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/domain/jobModel"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/handlers"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/job"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/pipeline"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/pipeline/llm"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/pipeline/llm/gemini"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/pipeline/llm/groq"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/server"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/worker"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using process environment")
	}
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}

	//assign concrete pointers before the interface fields so a nil redis
	//store stays a nil check, not a typed-nil interface
	redisJobStore := store.GetRedisJobStore(serviceContext)
	redisMessageStore := store.GetRedisMessageStore(serviceContext)
	if redisJobStore == nil || redisMessageStore == nil {
		logger.Error("Redis stores are offline")
		if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
			return
		}
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.MessageStore = store.InitMessageStore()
	} else {
		serviceConfig.JobStore = redisJobStore
		serviceConfig.MessageStore = redisMessageStore
	}

	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	llmProvider := selectProvider(serviceContext, logger)
	if llmProvider == nil {
		logger.Error("No completion provider could be initialized. Shutting down.")
		return
	}

	pipelineService := pipeline.NewService(llmProvider)

	handlers.InitJobHandler(service)

	//init worker pool
	worker.InitServices(service, pipelineService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

// selectProvider prefers Groq when its key is present, Gemini otherwise.
func selectProvider(ctx context.Context, logger *logger_i.Logger) llm.Provider {
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		logger.Info("Using Groq completion provider", "model", config.GroqModelName)
		return groq.GetGroqClient(ctx, config.GroqModelName, key)
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		logger.Info("Using Gemini completion provider", "model", config.GeminiModelName)
		return gemini.GetGeminiClient(ctx, config.GeminiModelName, key)
	}
	return nil
}
