package rag

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeModel serves the three Ollama endpoints the core talks to and records
// every call so tests can assert on request shapes and counts.
type fakeModel struct {
	t *testing.T

	// embed maps a prompt to its vector; returning ok=false yields a 500.
	embed func(prompt string) ([]float64, bool)
	// completion answers /v1/completions; returning ok=false yields a 500.
	completion func(prompt string) (string, bool)
	// chat answers /v1/chat/completions with streamed fragments; returning
	// ok=false yields a 500.
	chat func(body string) ([]string, bool)

	mu              sync.Mutex
	chatCalls       int
	chatBodies      []string
	completionCalls int
	embedCalls      int
}

func (f *fakeModel) server() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Prompt   string `json:"prompt"`
			Stream   bool   `json:"stream"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			f.t.Fatalf("fake model: read body: %v", err)
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			f.t.Fatalf("fake model: bad request body: %v", err)
		}

		switch r.URL.Path {
		case "/api/embeddings":
			f.mu.Lock()
			f.embedCalls++
			f.mu.Unlock()
			vec, ok := f.embed(body.Prompt)
			if !ok {
				http.Error(w, "embedding unavailable", http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"embedding": vec})
		case "/v1/completions":
			f.mu.Lock()
			f.completionCalls++
			f.mu.Unlock()
			text, ok := f.completion(body.Prompt)
			if !ok {
				http.Error(w, "completion unavailable", http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"text": text}},
			})
		case "/v1/chat/completions":
			f.mu.Lock()
			f.chatCalls++
			f.chatBodies = append(f.chatBodies, string(raw))
			f.mu.Unlock()
			fragments, ok := f.chat(string(raw))
			if !ok {
				http.Error(w, "generation unavailable", http.StatusInternalServerError)
				return
			}
			if !body.Stream {
				json.NewEncoder(w).Encode(map[string]any{
					"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": strings.Join(fragments, "")}}},
				})
				return
			}
			w.Header().Set("Content-Type", "text/event-stream")
			for _, fragment := range fragments {
				fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", fragment)
			}
			fmt.Fprint(w, "data: [DONE]\n\n")
		default:
			f.t.Fatalf("fake model: unexpected path %s", r.URL.Path)
		}
	}))
}

func (f *fakeModel) stats() (chatCalls, completionCalls, embedCalls int, chatBodies []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chatCalls, f.completionCalls, f.embedCalls, append([]string(nil), f.chatBodies...)
}

// fakeStore serves the Milvus search and insert endpoints.
type fakeStore struct {
	t *testing.T

	// hits answers a search given the query vectors; returning ok=false
	// yields a non-zero store error code.
	hits func(vectors [][]float64) ([]map[string]any, bool)
	// failInsert makes every insert return a store error.
	failInsert bool

	mu       sync.Mutex
	searches [][][]float64
	inserted []string
}

func (f *fakeStore) server() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/vectordb/entities/search":
			var req struct {
				Data [][]float64 `json:"data"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				f.t.Fatalf("fake store: bad search body: %v", err)
			}
			f.mu.Lock()
			f.searches = append(f.searches, req.Data)
			f.mu.Unlock()

			hits, ok := f.hits(req.Data)
			if !ok {
				json.NewEncoder(w).Encode(map[string]any{"code": 1100, "message": "search failed"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"code": 0, "data": hits})
		case "/v2/vectordb/entities/insert":
			var req struct {
				Data []struct {
					Text string `json:"text_segment"`
				} `json:"data"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				f.t.Fatalf("fake store: bad insert body: %v", err)
			}
			if f.failInsert {
				json.NewEncoder(w).Encode(map[string]any{"code": 1200, "message": "insert failed"})
				return
			}
			f.mu.Lock()
			for _, row := range req.Data {
				f.inserted = append(f.inserted, row.Text)
			}
			f.mu.Unlock()
			json.NewEncoder(w).Encode(map[string]any{"code": 0, "data": map[string]any{"insertCount": len(req.Data)}})
		default:
			f.t.Fatalf("fake store: unexpected path %s", r.URL.Path)
		}
	}))
}

func (f *fakeStore) state() (searches [][][]float64, inserted []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][][]float64(nil), f.searches...), append([]string(nil), f.inserted...)
}

func hit(text string, distance float64) map[string]any {
	return map[string]any{"distance": distance, "text_segment": text}
}
