// internal/ollama/stream.go
package ollama

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/mwiater/ragmill/internal/logging"
)

const (
	frameMarker    = "data: "
	streamSentinel = "[DONE]"
)

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// DecodeStream reads server-sent frames from r until the terminal sentinel or
// EOF. Each frame carries a JSON payload with an incremental content fragment,
// which is forwarded to onDelta. A frame that fails to parse is logged and
// skipped; it never aborts the rest of the stream.
func DecodeStream(r io.Reader, onDelta func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, frameMarker) {
			continue
		}
		payload := strings.TrimSpace(line[len(frameMarker):])
		if payload == streamSentinel {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			logging.LogEvent("skipping malformed stream frame: %v (frame: %s)", err, payload)
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" && onDelta != nil {
			onDelta(delta)
		}
	}
	return scanner.Err()
}
