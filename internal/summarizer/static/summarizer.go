// Package static implements a canned Summarizer for development and tests.
package static

import (
	"context"
	"encoding/json"
)

// Summarizer returns fixed responses regardless of the prompt.
type Summarizer struct {
	summary    string
	structured json.RawMessage
}

// New returns a Summarizer with the given canned outputs. Zero values fall
// back to generic placeholders.
func New(summary string, structured json.RawMessage) *Summarizer {
	if summary == "" {
		summary = "A placeholder brand overview generated without a language model."
	}
	if len(structured) == 0 {
		structured = json.RawMessage(`{"name":"","tagline":"","industry":"","products_and_services":[],"target_audience":"","tone_of_voice":"","key_differentiators":[]}`)
	}
	return &Summarizer{summary: summary, structured: structured}
}

// Summarize returns the canned summary.
func (s *Summarizer) Summarize(_ context.Context, _ string) (string, error) {
	return s.summary, nil
}

// StructureProfile returns the canned structured profile.
func (s *Summarizer) StructureProfile(_ context.Context, _ string) (json.RawMessage, error) {
	return append(json.RawMessage(nil), s.structured...), nil
}
