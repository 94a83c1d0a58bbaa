package scoring

import (
	"context"
	"fmt"
	"strings"

	"assessment-quiz-service/internal/domain"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiScorer scores answers with a Gemini model in JSON response mode.
type GeminiScorer struct {
	client *genai.Client
	model  string
}

func NewGeminiScorer(ctx context.Context, apiKey, model string) (*GeminiScorer, error) {
	return NewGeminiScorerWithOptions(ctx, model, option.WithAPIKey(apiKey))
}

// NewGeminiScorerWithOptions passes client options through, e.g. a custom HTTP client.
func NewGeminiScorerWithOptions(ctx context.Context, model string, opts ...option.ClientOption) (*GeminiScorer, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiScorer{client: client, model: model}, nil
}

func (s *GeminiScorer) Score(ctx context.Context, question, answer string) (int, error) {
	m := s.client.GenerativeModel(s.model)
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}

	resp, err := m.GenerateContent(ctx, genai.Text(userMessage(question, answer)))
	if err != nil {
		return 0, fmt.Errorf("%w: gemini: %w", domain.ErrScoring, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return 0, fmt.Errorf("%w: gemini returned no content", domain.ErrScoring)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return ParseScore(b.String())
}

func (s *GeminiScorer) Close() error {
	return s.client.Close()
}
