package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/plancours/internal/model"
)

func completionHandler(t *testing.T, content string, inspect func(body map[string]any)) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}
		if inspect != nil {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("Failed to decode request body: %v", err)
			}
			inspect(body)
		}

		resp := openai.ChatCompletionResponse{
			ID:      "chatcmpl-123",
			Object:  "chat.completion",
			Created: 1677652288,
			Model:   "gpt-4o-mini-2024-07-18",
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: content,
					},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{
				TotalTokens: 120,
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func newTestProvider(t *testing.T, url string) *OpenAIProvider {
	t.Helper()
	config := DefaultConfig()
	config.APIKey = "test-key"
	config.BaseURL = url
	config.Timeout = 5 * time.Second
	provider, err := NewOpenAIProvider(config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	return provider
}

func testRequest() EvaluateRequest {
	return EvaluateRequest{
		Question: "Décrivez les préalables du cours.",
		Rule:     "Mentionner les préalables",
		Response: "Le cours s'appuie sur les acquis de première session.",
	}
}

func TestOpenAIProvider_Evaluate_Success(t *testing.T) {
	reply := "```json\n{\"status\": \"À améliorer\", \"feedback\": \"Précisez les préalables.\", \"highlights\": [\"préalables\"]}\n```"

	server := httptest.NewServer(completionHandler(t, reply, func(body map[string]any) {
		if body["model"] != "gpt-4o-mini" {
			t.Errorf("Expected model gpt-4o-mini, got %v", body["model"])
		}
		if body["temperature"] != 0.2 {
			t.Errorf("Expected temperature 0.2, got %v", body["temperature"])
		}
		if body["max_tokens"] != float64(350) {
			t.Errorf("Expected max_tokens 350, got %v", body["max_tokens"])
		}
		messages, _ := body["messages"].([]any)
		if len(messages) != 2 {
			t.Fatalf("Expected system and user messages, got %d", len(messages))
		}
		user, _ := messages[1].(map[string]any)
		content, _ := user["content"].(string)
		if !strings.Contains(content, "Règle IA : Mentionner les préalables") {
			t.Errorf("User message does not carry the rule: %q", content)
		}
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	resp, err := provider.Evaluate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if resp.Status != model.StatusAmeliorer {
		t.Errorf("Expected status %q, got %q", model.StatusAmeliorer, resp.Status)
	}
	if resp.Feedback != "Précisez les préalables." {
		t.Errorf("Unexpected feedback: %s", resp.Feedback)
	}
	if len(resp.Highlights) != 1 || resp.Highlights[0] != "préalables" {
		t.Errorf("Unexpected highlights: %v", resp.Highlights)
	}
	if resp.Model != "gpt-4o-mini-2024-07-18" {
		t.Errorf("Expected model reported by the API, got %s", resp.Model)
	}
	if resp.TokensUsed != 120 {
		t.Errorf("Expected 120 tokens, got %d", resp.TokensUsed)
	}
}

func TestOpenAIProvider_Evaluate_AlternateKeys(t *testing.T) {
	reply := `{"aiStatus": "conforme", "aiFeedback": "Réponse complète."}`

	server := httptest.NewServer(completionHandler(t, reply, nil))
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	resp, err := provider.Evaluate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if resp.Status != model.StatusConforme {
		t.Errorf("Expected Conforme, got %q", resp.Status)
	}
	if resp.Highlights == nil || len(resp.Highlights) != 0 {
		t.Errorf("Expected empty highlights, got %v", resp.Highlights)
	}
}

func TestOpenAIProvider_Evaluate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	_, err := provider.Evaluate(context.Background(), testRequest())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("Expected EvaluationError, got %T", err)
	}
	if evalErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", evalErr.StatusCode)
	}
	if !strings.Contains(evalErr.Body, "Internal Server Error") {
		t.Errorf("Expected body excerpt, got %q", evalErr.Body)
	}
}

func TestOpenAIProvider_Evaluate_PlainTextErrorIsTruncated(t *testing.T) {
	long := strings.Repeat("é", 500)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(long))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	_, err := provider.Evaluate(context.Background(), testRequest())
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("Expected EvaluationError, got %v", err)
	}
	if evalErr.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", evalErr.StatusCode)
	}
	if n := len([]rune(evalErr.Body)); n > maxBodyExcerpt {
		t.Errorf("Body excerpt has %d characters, want at most %d", n, maxBodyExcerpt)
	}
}

func TestOpenAIProvider_Evaluate_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	_, err := provider.Evaluate(context.Background(), testRequest())
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) || evalErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("Expected EvaluationError with status 429, got %v", err)
	}
}

func TestOpenAIProvider_Evaluate_MalformedReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"not json", "La réponse semble correcte."},
		{"missing feedback", `{"status": "Conforme"}`},
		{"unknown status", `{"status": "Excellent", "feedback": "Bravo."}`},
		{"highlights wrong type", `{"status": "Conforme", "feedback": "Bien.", "highlights": "aucun"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(completionHandler(t, tt.reply, nil))
			defer server.Close()

			provider := newTestProvider(t, server.URL)

			_, err := provider.Evaluate(context.Background(), testRequest())
			var evalErr *EvaluationError
			if !errors.As(err, &evalErr) {
				t.Fatalf("Expected EvaluationError, got %v", err)
			}
			if evalErr.StatusCode != 0 {
				t.Errorf("Expected no status code for a parse failure, got %d", evalErr.StatusCode)
			}
		})
	}
}

func TestOpenAIProvider_Evaluate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := provider.Evaluate(ctx, testRequest())
	if err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("Expected EvaluationError, got %T", err)
	}
}

func TestOpenAIProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"data": [{"id": "gpt-4o-mini"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be false on error")
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Fatal("Expected error without API key")
	}
}
