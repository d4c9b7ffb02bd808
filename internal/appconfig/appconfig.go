// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultRequestTimeout is the default timeout for HTTP requests to model and store services.
	defaultRequestTimeout = 600 * time.Second
	// defaultReadyTimeout caps how long the watcher waits for a new file to finish writing.
	defaultReadyTimeout = 60 * time.Second
)

// DefaultPersonaPrompt is the instruction text prepended to every augmented prompt.
const DefaultPersonaPrompt = "You are a knowledgeable assistant backed by a curated document store. " +
	"Answer only what the user asked, in the same language as the question, without mentioning " +
	"templates, prompts, or any reference material you were given. If you do not know the answer, " +
	"say that the information is not yet available."

// DefaultSummaryPrompt is the instruction used when segments are summarized before indexing.
const DefaultSummaryPrompt = "The following passage will be stored in a retrieval knowledge base. " +
	"Rewrite it so that every fact from the original is preserved with nothing added, lost, or " +
	"confused. Reply with the rewritten passage only."

// DefaultSupervisionPrompt is the instruction used to validate a generated answer.
const DefaultSupervisionPrompt = "Judge whether the answer below actually satisfies the user's question."

// Config represents the top-level application configuration. It is built once
// at startup and treated as immutable by every component that receives it.
type Config struct {
	MilvusURL           string `json:"milvusURL"`
	Collection          string `json:"collection"`
	OllamaURL           string `json:"ollamaURL"`
	EmbeddingModel      string `json:"embeddingModel"`
	LLMModel            string `json:"llmModel"`
	EmbeddingDim        int    `json:"embeddingDim"`
	Metric              string `json:"metric"`
	NProbe              int    `json:"nprobe"`
	ResultLimit         int    `json:"resultLimit"`
	SegmentLength       int    `json:"segmentLength"`
	MaxRetries          int    `json:"maxRetries"`
	PersonaPrompt       string `json:"personaPrompt"`
	SummaryPrompt       string `json:"summaryPrompt"`
	Summarize           bool   `json:"summarize"`
	HydeMode            bool   `json:"hydeMode"`
	Supervised          bool   `json:"supervised"`
	SupervisionPrompt   string `json:"supervisionPrompt"`
	WatchDir            string `json:"watchDir,omitempty"`
	ReadyTimeoutSeconds int    `json:"readyTimeout,omitempty" mapstructure:"readyTimeout"`
	TimeoutSeconds      int    `json:"timeout,omitempty" mapstructure:"timeout"`
	LogFile             string `json:"logFile,omitempty"`
	Debug               bool   `json:"debug"`
	ConfigPath          string `json:"-"`
}

// supportedDims lists the embedding dimensions the deployed models can produce.
var supportedDims = map[int]struct{}{512: {}, 768: {}, 1024: {}}

// supportedMetrics lists the distance metrics the vector store accepts.
var supportedMetrics = map[string]struct{}{"IP": {}, "L2": {}, "COSINE": {}}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ReadyTimeout returns how long the watcher waits for a new file's size to stabilize.
func (c Config) ReadyTimeout() time.Duration {
	if c.ReadyTimeoutSeconds <= 0 {
		return defaultReadyTimeout
	}
	return time.Duration(c.ReadyTimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "ragmill.log"
}

// Validate checks the fields the pipelines depend on. Every embedding persisted
// or searched against the collection must match EmbeddingDim, so an unsupported
// dimension is rejected up front rather than discovered as degraded vectors.
func (c Config) Validate() error {
	if strings.TrimSpace(c.MilvusURL) == "" {
		return fmt.Errorf("milvusURL is required")
	}
	if strings.TrimSpace(c.Collection) == "" {
		return fmt.Errorf("collection is required")
	}
	if strings.TrimSpace(c.OllamaURL) == "" {
		return fmt.Errorf("ollamaURL is required")
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		return fmt.Errorf("embeddingModel is required")
	}
	if strings.TrimSpace(c.LLMModel) == "" {
		return fmt.Errorf("llmModel is required")
	}
	if _, ok := supportedDims[c.EmbeddingDim]; !ok {
		return fmt.Errorf("embeddingDim must be 512, 768, or 1024; got %d", c.EmbeddingDim)
	}
	if _, ok := supportedMetrics[strings.ToUpper(c.Metric)]; !ok {
		return fmt.Errorf("metric must be IP, L2, or COSINE; got %q", c.Metric)
	}
	if c.NProbe <= 0 {
		return fmt.Errorf("nprobe must be greater than zero")
	}
	if c.ResultLimit <= 0 {
		return fmt.Errorf("resultLimit must be greater than zero")
	}
	if c.SegmentLength <= 0 {
		return fmt.Errorf("segmentLength must be greater than zero")
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("maxRetries must be greater than zero")
	}
	return nil
}
