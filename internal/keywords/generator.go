// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keywords turns a book title into an ordered list of search
// strings for the reading platform, using the chat API with a
// deterministic fallback when the call fails.
package keywords

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/bookwatch/internal/llm"
	"github.com/pdiddy/bookwatch/pkg/types"
)

// maxKeywords caps the candidate list; priority order is generation order.
const maxKeywords = 5

const systemPrompt = `You are a book search assistant for a Chinese reading platform. Given a book title (and optionally its author), produce search keywords that maximize the chance of finding the book.

Rules:
1. Correct likely misspellings in the title and author.
2. If the title is in English or another foreign language, propose the Chinese translated title(s) commonly used for published editions, since the platform predominantly carries translated editions.
3. Always keep the original title as one of the candidates, as a fallback.
4. Return 3 to 5 candidates, ranked most promising first.

Respond with a JSON object containing these fields:
- corrected_title: string, the corrected title
- corrected_author: string, the corrected author (empty if unknown)
- keywords: array of 3-5 strings, ranked search candidates
- reasoning: string, a short explanation of the choices

Example:
{"corrected_title": "Sapiens", "corrected_author": "Yuval Noah Harari", "keywords": ["人类简史", "人类简史 赫拉利", "Sapiens"], "reasoning": "The book is sold on the platform under its Chinese edition title."}`

var userPromptTmpl = template.Must(template.New("keywords").Parse(`Target title: {{.Title}}
{{- if .Author}}
Author: {{.Author}}
{{- end}}

Generate the search keywords and respond with the JSON object only.`))

// Generator produces a KeywordSet per book via the chat backend.
type Generator struct {
	backend llm.ChatBackend
	cfg     types.LLMConfig
}

// NewGenerator builds a Generator using the given chat backend.
func NewGenerator(backend llm.ChatBackend, cfg types.LLMConfig) *Generator {
	return &Generator{backend: backend, cfg: cfg}
}

// response mirrors the JSON shape requested in the system prompt.
type response struct {
	CorrectedTitle  string   `json:"corrected_title"`
	CorrectedAuthor string   `json:"corrected_author"`
	Keywords        []string `json:"keywords"`
	Reasoning       string   `json:"reasoning"`
}

// Generate returns search keywords for the query. It never fails: on
// exhausted retries or an unusable response it returns the degenerate
// set (title, then "title author") with Error recording the cause.
// Transient API failures are retried with exponential backoff; a
// response without extractable JSON aborts straight to the fallback.
func (g *Generator) Generate(ctx context.Context, q types.BookQuery) types.KeywordSet {
	user, err := renderPrompt(q)
	if err != nil {
		return Fallback(q, fmt.Errorf("rendering prompt: %w", err))
	}

	var resp response
	err = llm.CallWithRetry(ctx, g.cfg.MaxRetries, func() error {
		text, callErr := g.backend.Chat(ctx, systemPrompt, user)
		if callErr != nil {
			return callErr
		}
		var r response
		if parseErr := llm.ExtractJSON(text, &r); parseErr != nil {
			return fmt.Errorf("keyword response: %w", parseErr)
		}
		resp = r
		return nil
	})
	if err != nil {
		return Fallback(q, err)
	}

	kws := sanitize(resp.Keywords)
	if len(kws) == 0 {
		return Fallback(q, fmt.Errorf("model returned no usable keywords"))
	}
	kws = ensureTitle(kws, q.Title)

	return types.KeywordSet{
		Keywords:        kws,
		CorrectedTitle:  strings.TrimSpace(resp.CorrectedTitle),
		CorrectedAuthor: strings.TrimSpace(resp.CorrectedAuthor),
		Reasoning:       strings.TrimSpace(resp.Reasoning),
	}
}

// Fallback returns the degenerate keyword set for q. The set is never
// empty; cause, when non-nil, is recorded on the Error field.
func Fallback(q types.BookQuery, cause error) types.KeywordSet {
	kws := []string{q.Title}
	if q.Author != "" {
		kws = append(kws, q.Title+" "+q.Author)
	}
	ks := types.KeywordSet{Keywords: kws}
	if cause != nil {
		ks.Error = cause.Error()
	}
	return ks
}

func renderPrompt(q types.BookQuery) (string, error) {
	var buf bytes.Buffer
	if err := userPromptTmpl.Execute(&buf, q); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// sanitize trims entries, drops empties and duplicates, and caps the list.
func sanitize(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var kws []string
	for _, kw := range raw {
		kw = strings.TrimSpace(kw)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		kws = append(kws, kw)
		if len(kws) == maxKeywords {
			break
		}
	}
	return kws
}

// ensureTitle guarantees the original title appears as a fallback
// candidate. It goes last: the model's ranked suggestions keep priority.
func ensureTitle(kws []string, title string) []string {
	for _, kw := range kws {
		if kw == title {
			return kws
		}
	}
	if len(kws) == maxKeywords {
		kws[len(kws)-1] = title
		return kws
	}
	return append(kws, title)
}
