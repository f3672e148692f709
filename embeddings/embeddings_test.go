package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/forsa/assistant/config"
)

func TestNewEmbedderUnknownProvider(t *testing.T) {
	cfg := &config.Config{Embeddings: config.Model{Provider: "mystery"}}
	if _, err := NewEmbedder(cfg); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewEmbedderOpenAIRequiresKey(t *testing.T) {
	cfg := &config.Config{Embeddings: config.Model{Provider: config.ProviderOpenAI}}
	if _, err := NewEmbedder(cfg); err == nil {
		t.Fatal("expected error when API key is missing")
	}
}

func TestNewEmbedderOllama(t *testing.T) {
	cfg := &config.Config{
		OllamaHost: "http://localhost:11434",
		Embeddings: config.Model{Provider: config.ProviderOllama, Name: "nomic-embed-text"},
	}
	e, err := NewEmbedder(cfg)
	if err != nil {
		t.Fatalf("new embedder: %v", err)
	}
	if e == nil {
		t.Fatal("expected embedder")
	}
}

func TestOllamaEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "nomic-embed-text" {
			t.Errorf("unexpected model %q", req.Model)
		}
		vectors := make([][]float32, len(req.Input))
		for i := range vectors {
			vectors[i] = []float32{float32(i), 1, 2}
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: vectors})
	}))
	defer srv.Close()

	e := newOllamaEmbedder(srv.URL, config.Model{Name: "nomic-embed-text", Dimension: 3})
	vectors, err := e.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[1][0] != 1 {
		t.Fatalf("vectors out of order: %v", vectors)
	}
}

func TestOllamaEmbedDimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{1, 2}}})
	}))
	defer srv.Close()

	e := newOllamaEmbedder(srv.URL, config.Model{Name: "m", Dimension: 3})
	if _, err := e.Embed(context.Background(), []string{"text"}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestOllamaEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{1}}})
	}))
	defer srv.Close()

	e := newOllamaEmbedder(srv.URL, config.Model{Name: "m"})
	if _, err := e.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected count mismatch error")
	}
}

func TestOllamaEmbedAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer srv.Close()

	e := newOllamaEmbedder(srv.URL, config.Model{Name: "m"})
	_, err := e.Embed(context.Background(), []string{"text"})
	if err == nil {
		t.Fatal("expected API error")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("error should carry API message, got %v", err)
	}
}

func TestOllamaEmbedEmptyInput(t *testing.T) {
	e := newOllamaEmbedder("http://localhost:11434", config.Model{Name: "m"})
	vectors, err := e.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if vectors != nil {
		t.Fatalf("expected nil vectors, got %v", vectors)
	}
}

func TestEmbedOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{0.5, 0.5}}})
	}))
	defer srv.Close()

	e := newOllamaEmbedder(srv.URL, config.Model{Name: "m"})
	vec, err := EmbedOne(context.Background(), e, "query")
	if err != nil {
		t.Fatalf("embed one: %v", err)
	}
	if len(vec) != 2 {
		t.Fatalf("unexpected vector: %v", vec)
	}
}
