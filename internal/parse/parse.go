// Package parse extracts structured JSON from generated model text, which
// may arrive wrapped in markdown code fences.
package parse

import (
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"
)

// StripFences removes a leading ``` fence line (with an optional language
// tag) and a trailing fence line. Text without fences is returned trimmed.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Decode strips fences from raw and unmarshals the remainder into v. A
// structural failure is logged and leaves v untouched, so callers holding
// an empty slice or struct see "nothing usable" rather than an error.
// An empty model response and a malformed one are indistinguishable here.
func Decode(raw string, v any, log logrus.FieldLogger) {
	text := StripFences(raw)
	if text == "" {
		return
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		log.Warnf("discarding unparseable model output: %v", err)
	}
}
