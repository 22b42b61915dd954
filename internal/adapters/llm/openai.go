package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/proximalabs/tradepulse/internal/core/domain"
)

const (
	// Short, low-creativity completions: the reply only needs to contain
	// BUY or HOLD.
	decisionTemperature = 0.2
	decisionMaxTokens   = 50

	// fallbackDecision is returned when the model yields no content.
	fallbackDecision = string(domain.DecisionHold)
)

// completionClient is the slice of the OpenAI client we use, extracted so
// tests can substitute a stub.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIEngine asks an OpenAI chat model for a BUY/HOLD recommendation.
// It implements domain.DecisionEngine.
type OpenAIEngine struct {
	client completionClient
	model  string
	prompt string
}

// NewOpenAIEngine creates a decision engine with the given API key, model
// and strategy prompt.
func NewOpenAIEngine(apiKey, model, strategyPrompt string) *OpenAIEngine {
	return &OpenAIEngine{
		client: openai.NewClient(apiKey),
		model:  model,
		prompt: strategyPrompt,
	}
}

// Decide sends the strategy prompt plus the current price and returns the
// raw completion text. An empty completion degrades to "HOLD"; a transport
// failure is returned to the caller and ends the cycle.
func (e *OpenAIEngine) Decide(ctx context.Context, price float64) (string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: decisionTemperature,
		MaxTokens:   decisionMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: e.prompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("The current price is %.4f. Should I BUY or HOLD?", price),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		log.Printf("[llm] model returned no choices, defaulting to %s", fallbackDecision)
		return fallbackDecision, nil
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		log.Printf("[llm] model returned empty content, defaulting to %s", fallbackDecision)
		return fallbackDecision, nil
	}

	return text, nil
}
