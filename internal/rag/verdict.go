// internal/rag/verdict.go
package rag

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// verdictSchema describes the JSON verdict the supervision call is asked to
// return: {"approved": true} or {"approved": false}.
const verdictSchema = `{
	"type": "object",
	"properties": {
		"approved": {"type": "boolean"}
	},
	"required": ["approved"],
	"additionalProperties": false
}`

type verdict struct {
	Approved bool `json:"approved"`
}

// ParseVerdict interprets the supervision model's response text as an
// approval decision. It accepts either the schema-validated JSON verdict or
// the bare token "true". Anything else (malformed JSON, extra fields, an
// unexpected token) is treated as a rejection, so supervision fails closed.
func ParseVerdict(raw string) bool {
	text := strings.TrimSpace(raw)
	if text == "" {
		return false
	}

	if strings.HasPrefix(text, "{") {
		result, err := gojsonschema.Validate(
			gojsonschema.NewStringLoader(verdictSchema),
			gojsonschema.NewStringLoader(text),
		)
		if err != nil || !result.Valid() {
			return false
		}
		var v verdict
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return false
		}
		return v.Approved
	}

	return strings.EqualFold(strings.Trim(text, `"'.`), "true")
}
