// internal/rag/pipeline.go
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwiater/ragmill/internal/logging"
	"github.com/mwiater/ragmill/internal/ollama"
)

// ExhaustedMessage is returned when every supervised attempt was rejected.
// Unvalidated content is never surfaced in its place.
const ExhaustedMessage = "The assistant is still learning about this topic. " +
	"Please consult the official documentation or contact an administrator for the information you need."

// RequestErrorMessage is returned when generation could not be completed at all.
const RequestErrorMessage = "Request error: the answer could not be generated. Please try again later."

// supervisionTemplate wraps the configured supervision instruction with the
// exchange under review and the verdict format the model must reply with.
const supervisionTemplate = "%s\nUser question: %s\nModel answer: %s\n" +
	`Reply with a JSON object of the form {"approved": true} or {"approved": false} and nothing else.`

// Conversation is the caller-supplied request context the pipeline augments
// in place. Prior turns are discarded before each generation call; no
// conversational memory persists across calls.
type Conversation struct {
	Messages []ollama.ChatMessage
	User     *User
}

// User identifies the requesting user, when the front end supplies one.
type User struct {
	ID   string
	Name string
}

// Pipeline drives the query path from retrieval through generation. The
// supervised variant validates each answer and retries under a bounded policy.
type Pipeline struct {
	retriever         *Retriever
	llm               *ollama.Client
	llmModel          string
	persona           string
	supervised        bool
	supervisionPrompt string
	maxRetries        int
}

// PipelineConfig wires a Pipeline.
type PipelineConfig struct {
	Retriever         *Retriever
	LLM               *ollama.Client
	LLMModel          string
	Persona           string
	Supervised        bool
	SupervisionPrompt string
	MaxRetries        int
}

// NewPipeline constructs a Pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &Pipeline{
		retriever:         cfg.Retriever,
		llm:               cfg.LLM,
		llmModel:          cfg.LLMModel,
		persona:           cfg.Persona,
		supervised:        cfg.Supervised,
		supervisionPrompt: cfg.SupervisionPrompt,
		maxRetries:        maxRetries,
	}
}

// PipeRequest is one query through the pipeline.
type PipeRequest struct {
	UserMessage string
	// Conversation is optional; when present its prior turns are replaced by
	// the synthesized augmented turn.
	Conversation *Conversation
	// OnDelta receives incremental answer fragments. It is only invoked in
	// the non-supervised variant, where the first assembly is always
	// accepted; supervised answers are withheld until validated.
	OnDelta func(string)
}

// Pipe runs one query: retrieval, prompt assembly, generation, and optional
// supervision. It never returns an error. A failing stage degrades the
// answer, and the two terminal failures map to fixed user-facing strings.
func (p *Pipeline) Pipe(ctx context.Context, req PipeRequest) string {
	contexts := p.retriever.Retrieve(ctx, req.UserMessage)
	augmented := BuildPrompt(p.persona, req.UserMessage, contexts)

	messages := []ollama.ChatMessage{{Role: "user", Content: augmented}}
	if req.Conversation != nil {
		req.Conversation.Messages = messages
		if u := req.Conversation.User; u != nil {
			logging.LogEvent("query from %s (%s): %s", u.Name, u.ID, req.UserMessage)
		}
	}

	onDelta := req.OnDelta
	if p.supervised {
		onDelta = nil
	}

	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		answer, err := p.generate(ctx, messages, onDelta)
		if err != nil {
			logging.LogEvent("generation failed: %v", err)
			return RequestErrorMessage
		}

		if !p.supervised {
			return answer
		}

		if p.supervise(ctx, req.UserMessage, answer) {
			return answer
		}
		logging.LogEvent("supervision rejected answer, regenerating (attempt %d of %d)", attempt, p.maxRetries)
	}
	return ExhaustedMessage
}

// generate streams one completion for the augmented conversation and
// assembles the fragments into the full answer.
func (p *Pipeline) generate(ctx context.Context, messages []ollama.ChatMessage, onDelta func(string)) (string, error) {
	var answer strings.Builder
	err := p.llm.ChatStream(ctx, p.llmModel, messages, func(delta string) {
		answer.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	})
	if err != nil {
		return "", err
	}
	return answer.String(), nil
}

// supervise asks the model to validate the assembled answer against the
// original question. Any transport failure or unparseable verdict counts as
// a rejection.
func (p *Pipeline) supervise(ctx context.Context, userMessage, answer string) bool {
	prompt := fmt.Sprintf(supervisionTemplate, p.supervisionPrompt, userMessage, answer)
	raw, err := p.llm.Completion(ctx, p.llmModel, prompt)
	if err != nil {
		logging.LogEvent("supervision call failed, rejecting answer: %v", err)
		return false
	}
	return ParseVerdict(raw)
}
