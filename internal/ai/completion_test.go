package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"answerbridge/internal/config"
)

func chatCompletionServer(t *testing.T, gotBody *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		if gotBody != nil {
			*gotBody = string(raw)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-3.5-turbo",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": "  \n4\n  "},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]int{"prompt_tokens": 3, "completion_tokens": 1, "total_tokens": 4},
		})
	}))
}

func TestOpenAICompatible_Complete(t *testing.T) {
	var body string
	server := chatCompletionServer(t, &body)
	defer server.Close()

	client, err := New(context.Background(), config.LLMConfig{
		Provider: config.ProviderOpenAI,
		BaseURL:  server.URL + "/",
		APIKey:   "sk-test",
		Model:    "gpt-3.5-turbo",
	})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}

	answer, err := client.Complete(context.Background(), "What is 2+2?")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if answer != "4" {
		t.Errorf("answer should be trimmed, got %q", answer)
	}
	if !strings.Contains(body, `"gpt-3.5-turbo"`) {
		t.Errorf("request should carry the configured model: %s", body)
	}
	if !strings.Contains(body, "What is 2+2?") {
		t.Errorf("request should carry the question: %s", body)
	}
}

func TestOpenAICompatible_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client, err := NewOpenAICompatibleClient(config.LLMConfig{BaseURL: server.URL, APIKey: "sk-test", Model: "gpt-3.5-turbo"})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}

	_, err = client.Complete(context.Background(), "Hello")
	var remoteErr *RemoteCallError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteCallError, got %T: %v", err, err)
	}
	if remoteErr.Provider != config.ProviderOpenAI {
		t.Errorf("provider = %q", remoteErr.Provider)
	}
	if !strings.HasPrefix(remoteErr.Message(), "Completion API error: ") {
		t.Errorf("message = %q", remoteErr.Message())
	}
	if !strings.Contains(remoteErr.Message(), "Incorrect API key") {
		t.Errorf("message should embed the upstream error: %q", remoteErr.Message())
	}
}

func TestOpenAICompatible_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewOpenAICompatibleClient(config.LLMConfig{BaseURL: url, APIKey: "sk-test", Model: "gpt-3.5-turbo"})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}

	_, err = client.Complete(context.Background(), "Hello")
	var remoteErr *RemoteCallError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteCallError, got %T: %v", err, err)
	}
}

func TestGemini_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash") {
			t.Errorf("path should name the model: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"  Paris \n"}]}}]}`))
	}))
	defer server.Close()

	client, err := New(context.Background(), config.LLMConfig{
		Provider: config.ProviderGemini,
		BaseURL:  server.URL,
		APIKey:   "g-key",
		Model:    "gemini-2.5-flash",
	})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}

	answer, err := client.Complete(context.Background(), "Capital of France?")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if answer != "Paris" {
		t.Errorf("answer = %q", answer)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(context.Background(), config.LLMConfig{Provider: config.ProviderOpenAI}); !errors.Is(err, config.ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := New(context.Background(), config.LLMConfig{Provider: "bard", APIKey: "k"}); !errors.Is(err, config.ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}
