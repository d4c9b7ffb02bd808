// internal/rag/prompt.go
package rag

import "strings"

// BuildPrompt assembles the augmented generation prompt: persona instruction,
// then the literal user message, then the retrieved segments joined by
// newlines, in that fixed order. No truncation is applied here; if the result
// exceeds what the generative service accepts, that failure surfaces from the
// client.
func BuildPrompt(persona, userMessage string, contexts []string) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\nThis is the user's question:\n\n")
	b.WriteString(userMessage)
	b.WriteString("\n\nThis is reference material you have learned; do not mention it in your answer:\n")
	b.WriteString(strings.Join(contexts, "\n"))
	return b.String()
}
