package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestEmbeddingsParsesVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"embedding":[0.1,0.2,0.3]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	vec, err := c.Embeddings(context.Background(), "embed-model", "hello")
	if err != nil {
		t.Fatalf("Embeddings error: %v", err)
	}
	if len(vec) != 3 || vec[1] != 0.2 {
		t.Fatalf("unexpected vector: %v", vec)
	}
}

func TestEmbeddingsRejectsEmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embedding":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	if _, err := c.Embeddings(context.Background(), "embed-model", "hello"); err == nil {
		t.Fatalf("expected error for empty vector")
	}
}

func TestCompletionReturnsTrimmedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"choices":[{"text":"  an answer \n"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	text, err := c.Completion(context.Background(), "llm", "prompt")
	if err != nil {
		t.Fatalf("Completion error: %v", err)
	}
	if text != "an answer" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestChatCompletionSurfacesServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	if _, err := c.ChatCompletion(context.Background(), "llm", []ChatMessage{{Role: "user", Content: "hi"}}); err == nil {
		t.Fatalf("expected error from non-200 response")
	}
}

const sampleStream = `data: {"choices":[{"delta":{"content":"Hel"}}]}

data: {"choices":[{"delta":{"content":"lo"}}]}

data: {"choices":[{"delta":{"content":" world"}}]}

data: [DONE]
`

func TestDecodeStreamAssemblesFragments(t *testing.T) {
	var b strings.Builder
	if err := DecodeStream(strings.NewReader(sampleStream), func(delta string) { b.WriteString(delta) }); err != nil {
		t.Fatalf("DecodeStream error: %v", err)
	}
	if b.String() != "Hello world" {
		t.Fatalf("unexpected assembly %q", b.String())
	}
}

func TestDecodeStreamIsIdempotentOverReplay(t *testing.T) {
	assemble := func() string {
		var b strings.Builder
		if err := DecodeStream(strings.NewReader(sampleStream), func(delta string) { b.WriteString(delta) }); err != nil {
			t.Fatalf("DecodeStream error: %v", err)
		}
		return b.String()
	}
	first, second := assemble(), assemble()
	if first != second {
		t.Fatalf("replayed stream assembled differently: %q vs %q", first, second)
	}
}

func TestDecodeStreamSkipsMalformedFrames(t *testing.T) {
	stream := "data: {not json}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n" +
		"data: [DONE]\n"
	var b strings.Builder
	if err := DecodeStream(strings.NewReader(stream), func(delta string) { b.WriteString(delta) }); err != nil {
		t.Fatalf("DecodeStream error: %v", err)
	}
	if b.String() != "ok" {
		t.Fatalf("expected malformed frame skipped, got %q", b.String())
	}
}

func TestDecodeStreamStopsAtSentinel(t *testing.T) {
	stream := "data: {\"choices\":[{\"delta\":{\"content\":\"before\"}}]}\n" +
		"data: [DONE]\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"after\"}}]}\n"
	var b strings.Builder
	if err := DecodeStream(strings.NewReader(stream), func(delta string) { b.WriteString(delta) }); err != nil {
		t.Fatalf("DecodeStream error: %v", err)
	}
	if b.String() != "before" {
		t.Fatalf("expected content after sentinel ignored, got %q", b.String())
	}
}

func TestChatStreamForwardsDeltas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(sampleStream))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	var b strings.Builder
	err := c.ChatStream(context.Background(), "llm", []ChatMessage{{Role: "user", Content: "hi"}}, func(delta string) {
		b.WriteString(delta)
	})
	if err != nil {
		t.Fatalf("ChatStream error: %v", err)
	}
	if b.String() != "Hello world" {
		t.Fatalf("unexpected assembly %q", b.String())
	}
}
