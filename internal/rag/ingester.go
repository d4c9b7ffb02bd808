// internal/rag/ingester.go
package rag

import (
	"context"

	"github.com/mwiater/ragmill/internal/extract"
	"github.com/mwiater/ragmill/internal/logging"
	"github.com/mwiater/ragmill/internal/milvus"
	"github.com/mwiater/ragmill/internal/ollama"
)

// Ingester turns one document at a time into stored (embedding, text)
// records: extract, segment, optionally summarize, embed, insert. Segments
// are processed sequentially. A failing segment is logged and skipped; the
// rest of the document continues.
type Ingester struct {
	llm           *ollama.Client
	llmModel      string
	embedder      *Embedder
	store         *milvus.Client
	segmentLength int
	summarize     bool
	summaryPrompt string
}

// IngesterConfig wires an Ingester.
type IngesterConfig struct {
	LLM           *ollama.Client
	LLMModel      string
	Embedder      *Embedder
	Store         *milvus.Client
	SegmentLength int
	Summarize     bool
	SummaryPrompt string
}

// NewIngester constructs an Ingester.
func NewIngester(cfg IngesterConfig) *Ingester {
	return &Ingester{
		llm:           cfg.LLM,
		llmModel:      cfg.LLMModel,
		embedder:      cfg.Embedder,
		store:         cfg.Store,
		segmentLength: cfg.SegmentLength,
		summarize:     cfg.Summarize,
		summaryPrompt: cfg.SummaryPrompt,
	}
}

// IngestFile extracts text from the document at path and ingests it. It
// returns the number of records inserted. Extraction failures (including
// unsupported formats) are returned to the caller; everything past
// extraction degrades per segment instead of failing.
func (ing *Ingester) IngestFile(ctx context.Context, path string) (int, error) {
	text, err := extract.Text(path)
	if err != nil {
		return 0, err
	}
	logging.LogEvent("ingesting %s (%d characters)", path, len(text))
	return ing.IngestText(ctx, text), nil
}

// IngestText segments raw document text and persists one record per segment.
func (ing *Ingester) IngestText(ctx context.Context, text string) int {
	segments := SegmentText(text, ing.segmentLength)
	inserted := 0

	for i, segment := range segments {
		content := segment
		if ing.summarize {
			content = ing.summarizeSegment(ctx, segment)
		}

		vector := ing.embedder.Embed(ctx, content)
		if isZeroVector(vector) {
			logging.LogEvent("segment %d/%d produced a degraded embedding, skipping insert: %s",
				i+1, len(segments), head(content))
			continue
		}

		if err := ing.store.Insert(ctx, [][]float64{vector}, []string{content}); err != nil {
			logging.LogEvent("segment %d/%d insert failed, skipping: %v", i+1, len(segments), err)
			continue
		}
		inserted++
		logging.LogEvent("inserted segment %d/%d: %s", i+1, len(segments), head(content))
	}
	return inserted
}

// summarizeSegment rewrites a segment through the generative model before
// indexing. Summarization is a quality enhancement, not a correctness
// requirement: any failure degrades to the original segment text.
func (ing *Ingester) summarizeSegment(ctx context.Context, segment string) string {
	summary, err := ing.llm.ChatCompletion(ctx, ing.llmModel, []ollama.ChatMessage{
		{Role: "system", Content: ing.summaryPrompt},
		{Role: "user", Content: segment},
	})
	if err != nil || summary == "" {
		logging.LogEvent("summarization failed, keeping original segment: %v", err)
		return segment
	}
	return summary
}

// head returns a short prefix of s for log lines.
func head(s string) string {
	runes := []rune(s)
	if len(runes) <= 50 {
		return s
	}
	return string(runes[:50])
}
