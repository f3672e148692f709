package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/forsa/assistant/config"
)

func TestNewClientUnknownProvider(t *testing.T) {
	cfg := &config.Config{LLM: config.Model{Provider: "mystery"}}
	if _, err := NewClient(cfg); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewClientOpenAIRequiresKey(t *testing.T) {
	cfg := &config.Config{LLM: config.Model{Provider: config.ProviderOpenAI}}
	if _, err := NewClient(cfg); err == nil {
		t.Fatal("expected error when API key is missing")
	}
}

func TestNewClientOllama(t *testing.T) {
	cfg := &config.Config{
		OllamaHost: "http://localhost:11434",
		LLM:        config.Model{Provider: config.ProviderOllama, Name: "llama3"},
	}
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c == nil {
		t.Fatal("expected client")
	}
}

func TestOllamaComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("streaming must be disabled")
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.Options.NumPredict != 256 {
			t.Errorf("unexpected num_predict: %d", req.Options.NumPredict)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaChatMessage{Role: "assistant", Content: "Here are some internships."},
		})
	}))
	defer srv.Close()

	c := newOllamaClient(srv.URL, config.Model{Name: "llama3", MaxTokens: 256, Temperature: 0.2})
	answer, err := c.Complete(context.Background(), "You are a matching assistant.", "Find me an internship.")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if answer != "Here are some internships." {
		t.Fatalf("unexpected answer: %q", answer)
	}
}

func TestOllamaCompleteModelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaChatResponse{Error: "model is overloaded"})
	}))
	defer srv.Close()

	c := newOllamaClient(srv.URL, config.Model{Name: "llama3"})
	_, err := c.Complete(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("expected model error")
	}
	if !strings.Contains(err.Error(), "model is overloaded") {
		t.Fatalf("error should carry model message, got %v", err)
	}
}

func TestOllamaCompleteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newOllamaClient(srv.URL, config.Model{Name: "llama3"})
	if _, err := c.Complete(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected HTTP error")
	}
}

func TestOllamaCompleteUnreachable(t *testing.T) {
	c := newOllamaClient("http://127.0.0.1:1", config.Model{Name: "llama3"})
	if _, err := c.Complete(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected connection error")
	}
}
