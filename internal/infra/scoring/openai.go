package scoring

import (
	"context"
	"fmt"

	"assessment-quiz-service/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = openai.GPT3Dot5Turbo

// OpenAIScorer scores answers with the OpenAI chat completions API.
type OpenAIScorer struct {
	client *openai.Client
	model  string
}

func NewOpenAIScorer(apiKey, model string) *OpenAIScorer {
	return NewOpenAIScorerWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewOpenAIScorerWithConfig allows pointing the client at another base URL or HTTP client.
func NewOpenAIScorerWithConfig(cfg openai.ClientConfig, model string) *OpenAIScorer {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIScorer{client: openai.NewClientWithConfig(cfg), model: model}
}

func (s *OpenAIScorer) Score(ctx context.Context, question, answer string) (int, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: userMessage(question, answer)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("%w: openai: %w", domain.ErrScoring, err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("%w: openai returned no choices", domain.ErrScoring)
	}
	return ParseScore(resp.Choices[0].Message.Content)
}

func (s *OpenAIScorer) Close() error {
	return nil
}
