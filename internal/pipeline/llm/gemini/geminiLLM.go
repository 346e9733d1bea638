package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/internal/pipeline/llm"
	"github.com/Internet-Technologies-bmb/AI-TextBook-Query-System/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Alternate completion provider for deployments without a Groq key.
type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName}
		logger.Info("Gemini client created")
		go closeClient(ctx, geminiClient)
	}
}

func (c *llmClient) Complete(ctx context.Context, prompt string, chunkText string) (string, error) {
	var contentConfig *genai.GenerateContentConfig
	if chunkText != "" {
		contentConfig = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{
					{Text: "Here is the content of the uploaded file:\n" + chunkText},
				},
			},
		}
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(prompt),
		contentConfig,
	)
	if err != nil {
		return "", classify(ctx, err)
	}
	text := result.Text()
	if text == "" {
		return "", llm.Permanent("gemini response carried no text")
	}
	return text, nil
}

func classify(ctx context.Context, err error) *llm.CompletionError {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return llm.Transient("timeout")
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code >= http.StatusInternalServerError:
			return llm.Transient(fmt.Sprintf("gemini returned %d", apiErr.Code))
		case apiErr.Code == http.StatusTooManyRequests:
			return llm.Transient("gemini rate limit hit")
		default:
			return llm.Permanent(fmt.Sprintf("gemini rejected request with %d", apiErr.Code))
		}
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded:
			return llm.Transient(s.Message())
		}
	}

	return llm.Transient(err.Error())
}

func closeClient(ctx context.Context, client *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	client.client = nil
	client.modelName = ""
}
