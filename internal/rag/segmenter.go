// internal/rag/segmenter.go
// Package rag implements the retrieval-augmentation-generation core: document
// ingestion into the vector store and the query-time retrieve/augment/generate
// pipeline with optional supervision.
package rag

import "strings"

// SegmentText slices text into consecutive, non-overlapping segments of at
// most maxLen runes, in document order, dropping segments that are empty
// after trimming whitespace. Slicing is purely positional; there is no
// sentence or paragraph awareness.
func SegmentText(text string, maxLen int) []string {
	if maxLen <= 0 {
		return nil
	}
	segments := sliceSegments(text, maxLen)
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		out = append(out, segment)
	}
	return out
}

// sliceSegments produces the raw positional slices; concatenating them
// reconstructs text exactly.
func sliceSegments(text string, maxLen int) []string {
	if maxLen <= 0 {
		return nil
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	segments := make([]string, 0, (len(runes)+maxLen-1)/maxLen)
	for i := 0; i < len(runes); i += maxLen {
		end := i + maxLen
		if end > len(runes) {
			end = len(runes)
		}
		segments = append(segments, string(runes[i:end]))
	}
	return segments
}
