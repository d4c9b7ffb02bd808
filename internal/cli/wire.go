// internal/cli/wire.go
package ragmill

import (
	"github.com/mwiater/ragmill/internal/appconfig"
	"github.com/mwiater/ragmill/internal/milvus"
	"github.com/mwiater/ragmill/internal/ollama"
	"github.com/mwiater/ragmill/internal/rag"
)

// newStore builds the vector store client from the merged configuration.
func newStore(cfg *appconfig.Config) *milvus.Client {
	return milvus.NewClient(milvus.Config{
		URL:        cfg.MilvusURL,
		Collection: cfg.Collection,
		Timeout:    cfg.RequestTimeout(),
	})
}

// newIngester assembles the document ingestion pipeline.
func newIngester(cfg *appconfig.Config) *rag.Ingester {
	llm := ollama.New(cfg.OllamaURL, cfg.RequestTimeout())
	return rag.NewIngester(rag.IngesterConfig{
		LLM:           llm,
		LLMModel:      cfg.LLMModel,
		Embedder:      rag.NewEmbedder(llm, cfg.EmbeddingModel, cfg.EmbeddingDim),
		Store:         newStore(cfg),
		SegmentLength: cfg.SegmentLength,
		Summarize:     cfg.Summarize,
		SummaryPrompt: cfg.SummaryPrompt,
	})
}

// newPipeline assembles the query pipeline.
func newPipeline(cfg *appconfig.Config) *rag.Pipeline {
	llm := ollama.New(cfg.OllamaURL, cfg.RequestTimeout())
	retriever := rag.NewRetriever(rag.RetrieverConfig{
		Embedder: rag.NewEmbedder(llm, cfg.EmbeddingModel, cfg.EmbeddingDim),
		LLM:      llm,
		LLMModel: cfg.LLMModel,
		Store:    newStore(cfg),
		Metric:   cfg.Metric,
		NProbe:   cfg.NProbe,
		Limit:    cfg.ResultLimit,
		Hyde:     cfg.HydeMode,
		Debug:    cfg.Debug,
	})
	return rag.NewPipeline(rag.PipelineConfig{
		Retriever:         retriever,
		LLM:               llm,
		LLMModel:          cfg.LLMModel,
		Persona:           cfg.PersonaPrompt,
		Supervised:        cfg.Supervised,
		SupervisionPrompt: cfg.SupervisionPrompt,
		MaxRetries:        cfg.MaxRetries,
	})
}
