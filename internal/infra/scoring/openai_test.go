package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"assessment-quiz-service/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

func TestOpenAIScorerSendsQuestionAndParsesScore(t *testing.T) {
	var seen openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&seen); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"score\": 8, \"feedback\": \"good\"}"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	scorer := newTestScorer(server.URL)
	score, err := scorer.Score(context.Background(), "What is a JVM?", "A virtual machine running bytecode.")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if score != 8 {
		t.Fatalf("expected 8, got %d", score)
	}
	if len(seen.Messages) != 2 || seen.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("expected system + user messages, got %+v", seen.Messages)
	}
	if want := "Question: What is a JVM?\nAnswer: A virtual machine running bytecode."; seen.Messages[1].Content != want {
		t.Fatalf("unexpected user message %q", seen.Messages[1].Content)
	}
	if seen.Model != DefaultOpenAIModel {
		t.Fatalf("expected default model, got %q", seen.Model)
	}
}

func TestOpenAIScorerPropagatesServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
	}))
	defer server.Close()

	_, err := newTestScorer(server.URL).Score(context.Background(), "q", "a")
	if !errors.Is(err, domain.ErrScoring) {
		t.Fatalf("expected scoring error, got %v", err)
	}
}

func TestOpenAIScorerRejectsFreeText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"I would rate this highly."},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	_, err := newTestScorer(server.URL).Score(context.Background(), "q", "a")
	if !errors.Is(err, domain.ErrScoring) {
		t.Fatalf("expected scoring error, got %v", err)
	}
}

func newTestScorer(baseURL string) *OpenAIScorer {
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = baseURL + "/v1"
	return NewOpenAIScorerWithConfig(cfg, "")
}
