package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/config"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/customHttpClient"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/pipeline/llm"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Groq speaks the OpenAI chat-completions wire format, so the openai client
// pointed at the Groq base URL is the whole integration.
type llmClient struct {
	client    openai.Client
	modelName string
}

var logger *logger_i.Logger
var groqClient *llmClient
var once sync.Once

func GetGroqClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_groq")
		newGroqClient(modelName, apikey)
	})

	if groqClient == nil {
		return nil
	}
	return &llmClient{client: groqClient.client, modelName: groqClient.modelName}
}

func newGroqClient(modelName string, apikey string) {
	if apikey == "" {
		logger.Error("Groq api key is missing")
		return
	}

	baseURL := os.Getenv("GROQ_BASE_URL")
	if baseURL == "" {
		baseURL = config.GroqBaseURL
	}

	//MaxRetries is 0 on purpose: the retry policy lives in llm.CompleteWithRetry
	//and every Complete call must map to exactly one request
	c := openai.NewClient(
		option.WithAPIKey(apikey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(customHttpClient.PooledClient()),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(config.CompletionTimeout),
	)
	groqClient = &llmClient{client: c, modelName: modelName}
	logger.Info("Groq client created")
}

// NewTestClient points the provider at a stand-in completion endpoint.
func NewTestClient(baseURL string, modelName string) llm.Provider {
	if logger == nil {
		logger = logger_i.NewLogger("llm_groq")
	}
	c := openai.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	)
	return &llmClient{client: c, modelName: modelName}
}

func (c *llmClient) Complete(ctx context.Context, prompt string, chunkText string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	}
	if chunkText != "" {
		messages = append(messages, openai.SystemMessage("Here is the content of the uploaded file:\n"+chunkText))
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    openai.ChatModel(c.modelName),
	})
	if err != nil {
		return "", classify(ctx, err)
	}
	if len(completion.Choices) == 0 {
		return "", llm.Permanent("completion response had no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

func classify(ctx context.Context, err error) *llm.CompletionError {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return llm.Transient("timeout")
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode >= http.StatusInternalServerError:
			return llm.Transient(fmt.Sprintf("provider returned %d", apiErr.StatusCode))
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return llm.Transient("provider rate limit hit")
		default:
			return llm.Permanent(fmt.Sprintf("provider rejected request with %d", apiErr.StatusCode))
		}
	}

	//anything that never produced an http status is connection trouble
	return llm.Transient(err.Error())
}
