// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON decodes a JSON object from free-form model output into v.
// The chat API is not guaranteed to return strictly valid JSON, so the
// parse falls back through a fixed chain: strict decode of the whole
// text, then the contents of the first fenced code block, then the span
// from the first '{' to the last '}'. When every layer fails the
// returned error carries a prefix of the offending text.
func ExtractJSON(text string, v any) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return fmt.Errorf("empty model output")
	}

	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}

	if block, ok := fencedBlock(trimmed); ok {
		if err := json.Unmarshal([]byte(block), v); err == nil {
			return nil
		}
	}

	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), v); err == nil {
			return nil
		}
	}

	return fmt.Errorf("no JSON object in model output: %q", truncate(trimmed, 120))
}

// fencedBlock returns the contents of the first ``` code block, skipping
// a language tag such as "json" on the opening fence line.
func fencedBlock(text string) (string, bool) {
	const fence = "```"
	start := strings.Index(text, fence)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(fence):]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return "", false
	}
	rest = rest[nl+1:]
	end := strings.Index(rest, fence)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
