package rag

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mwiater/ragmill/internal/ollama"
)

func TestEmbedReturnsServiceVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embedding":[0.5,0.25,0.125]}`))
	}))
	defer srv.Close()

	e := NewEmbedder(ollama.New(srv.URL, 5*time.Second), "embed", 3)
	vec := e.Embed(context.Background(), "hello")
	if len(vec) != 3 || vec[0] != 0.5 {
		t.Fatalf("unexpected vector: %v", vec)
	}
}

func TestEmbedFallsBackOnServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewEmbedder(ollama.New(srv.URL, 5*time.Second), "embed", 1024)
	vec := e.Embed(context.Background(), "hello")
	if len(vec) != 1024 {
		t.Fatalf("expected dimension-correct fallback, got %d components", len(vec))
	}
	if !isZeroVector(vec) {
		t.Fatalf("expected zero vector fallback")
	}
}

func TestEmbedFallsBackOnDimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embedding":[0.1,0.2]}`))
	}))
	defer srv.Close()

	e := NewEmbedder(ollama.New(srv.URL, 5*time.Second), "embed", 768)
	vec := e.Embed(context.Background(), "hello")
	if len(vec) != 768 || !isZeroVector(vec) {
		t.Fatalf("expected 768-dim zero vector, got %d components", len(vec))
	}
}

func TestEmbedFallsBackOnUnreachableHost(t *testing.T) {
	e := NewEmbedder(ollama.New("http://127.0.0.1:1", 100*time.Millisecond), "embed", 512)
	vec := e.Embed(context.Background(), "hello")
	if len(vec) != 512 || !isZeroVector(vec) {
		t.Fatalf("expected 512-dim zero vector, got %d components", len(vec))
	}
}

func TestIsZeroVector(t *testing.T) {
	if !isZeroVector(make([]float64, 4)) {
		t.Fatalf("expected all-zero vector to be detected")
	}
	if isZeroVector([]float64{0, 0, 0.001}) {
		t.Fatalf("expected non-zero vector not to be flagged")
	}
}
