// internal/rag/retriever.go
package rag

import (
	"context"
	"fmt"

	"github.com/k0kubun/pp"

	"github.com/mwiater/ragmill/internal/logging"
	"github.com/mwiater/ragmill/internal/milvus"
	"github.com/mwiater/ragmill/internal/ollama"
)

// hydeTemplate asks the generative model for a hypothetical answer whose
// embedding broadens the similarity search alongside the query's own vector.
const hydeTemplate = "Generate a hypothetical answer to the following question:\n\n%s"

// Retriever embeds a user message and returns the most similar stored
// segments. In HyDE mode it additionally embeds a model-generated
// hypothetical answer and searches with both vectors.
type Retriever struct {
	embedder *Embedder
	llm      *ollama.Client
	llmModel string
	store    *milvus.Client
	metric   string
	nprobe   int
	limit    int
	hyde     bool
	debug    bool
}

// RetrieverConfig wires a Retriever.
type RetrieverConfig struct {
	Embedder *Embedder
	LLM      *ollama.Client
	LLMModel string
	Store    *milvus.Client
	Metric   string
	NProbe   int
	Limit    int
	Hyde     bool
	// Debug dumps the ranked hits for each search to the console.
	Debug bool
}

// NewRetriever constructs a Retriever.
func NewRetriever(cfg RetrieverConfig) *Retriever {
	return &Retriever{
		embedder: cfg.Embedder,
		llm:      cfg.LLM,
		llmModel: cfg.LLMModel,
		store:    cfg.Store,
		metric:   cfg.Metric,
		nprobe:   cfg.NProbe,
		limit:    cfg.Limit,
		hyde:     cfg.Hyde,
		debug:    cfg.Debug,
	}
}

// Retrieve returns up to the configured limit of ranked text segments for
// userMessage. Failures degrade rather than abort: embedding falls back to
// zero vectors, a failed hypothetical-answer generation drops back to
// single-vector search, and a store failure yields an empty result.
func (r *Retriever) Retrieve(ctx context.Context, userMessage string) []string {
	queryVectors := [][]float64{r.embedder.Embed(ctx, userMessage)}

	if r.hyde {
		if vec, ok := r.hypotheticalVector(ctx, userMessage); ok {
			queryVectors = append(queryVectors, vec)
		}
	}

	hits, err := r.store.Search(ctx, queryVectors, milvus.SearchParams{
		Metric: r.metric,
		NProbe: r.nprobe,
		Limit:  r.limit,
	})
	if err != nil {
		logging.LogEvent("vector search failed, returning no context: %v", err)
		return nil
	}
	if r.debug {
		pp.Println(hits)
	}

	contexts := make([]string, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, hit := range hits {
		if _, ok := seen[hit.Text]; ok {
			continue
		}
		seen[hit.Text] = struct{}{}
		contexts = append(contexts, hit.Text)
		if len(contexts) == r.limit {
			break
		}
	}
	return contexts
}

// hypotheticalVector generates and embeds a hypothetical answer for the HyDE
// query set. Generation failure is logged and the variant is skipped.
func (r *Retriever) hypotheticalVector(ctx context.Context, userMessage string) ([]float64, bool) {
	answer, err := r.llm.Completion(ctx, r.llmModel, fmt.Sprintf(hydeTemplate, userMessage))
	if err != nil {
		logging.LogEvent("hypothetical answer generation failed, searching with query vector only: %v", err)
		return nil, false
	}
	return r.embedder.Embed(ctx, answer), true
}
