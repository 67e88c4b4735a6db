// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze judges whether search candidates actually contain the
// target book, producing a verdict with a calibrated confidence score.
package analyze

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/bookwatch/internal/llm"
	"github.com/pdiddy/bookwatch/pkg/types"
)

const systemPrompt = `You are a book matching assistant for a Chinese reading platform. You are given a target book and the candidates a platform search returned. Decide whether the target book is actually available on the platform.

Judgment policy:
1. Only a candidate whose status is "published and readable" counts as available. A candidate that is pending release is NOT available; if the best match is pending release, say so and mention "pending release" in your reasoning.
2. The platform mostly carries Chinese translated editions. A candidate whose title is the recognized Chinese translation of the target counts as a match even though the strings differ.
3. Match on the work, not the exact string: ignore subtitle, edition and punctuation differences. A different book that merely shares words with the title is not a match.
4. If you cannot tell which candidate, if any, is the target, report low confidence and enumerate the plausible candidates in your reasoning.
5. When the match failed or is doubtful, suggest alternative search keywords that might find the book.

Respond with a JSON object containing these fields:
- is_available: boolean, whether the target is readable on the platform
- confidence: number between 0 and 1
- matched_title: string, the matching candidate's title (empty if none)
- matched_author: string, the matching candidate's author (empty if none)
- reasoning: string, a short justification
- recommended_keywords: array of strings, alternative searches to try (empty if the match is confident)`

var judgePromptTmpl = template.Must(template.New("judge").Funcs(template.FuncMap{
	"add":   func(a, b int) int { return a + b },
	"trunc": truncIntro,
}).Parse(`Target book: {{.Query.Title}}{{if .Query.Author}} by {{.Query.Author}}{{end}}
Search keyword used: {{.Outcome.Keyword}}

Candidates:
{{- range $i, $c := .Outcome.Candidates}}
{{add $i 1}}. {{$c.Title}}{{if $c.Author}} / {{$c.Author}}{{end}}{{if $c.Publisher}} ({{$c.Publisher}}){{end}} [{{$c.State.Describe}}]
{{- if $c.Intro}}
   {{trunc $c.Intro}}
{{- end}}
{{- end}}

Judge whether the target book is available and respond with the JSON object only.`))

// Analyzer judges search outcomes via the chat backend.
type Analyzer struct {
	backend llm.ChatBackend
	cfg     types.LLMConfig
}

// NewAnalyzer builds an Analyzer using the given chat backend.
func NewAnalyzer(backend llm.ChatBackend, cfg types.LLMConfig) *Analyzer {
	return &Analyzer{backend: backend, cfg: cfg}
}

// response mirrors the JSON shape requested in the system prompt.
type response struct {
	IsAvailable         bool     `json:"is_available"`
	Confidence          float64  `json:"confidence"`
	MatchedTitle        string   `json:"matched_title"`
	MatchedAuthor       string   `json:"matched_author"`
	Reasoning           string   `json:"reasoning"`
	RecommendedKeywords []string `json:"recommended_keywords"`
}

// Analyze produces a verdict for the query given its search outcome.
// Outcomes with no candidates never reach the model: the verdict is
// deterministically unavailable with zero confidence. Verdict.Error is
// reserved for genuine pipeline failures; a search that answered
// cleanly with zero candidates means the book is not listed, which is
// an ordinary unavailable verdict. A verdict with a non-empty Error
// always reports Available false and Confidence 0.
func (a *Analyzer) Analyze(ctx context.Context, q types.BookQuery, out types.SearchOutcome) types.Verdict {
	if out.Failed {
		return types.Verdict{
			Reasoning: "search failed: " + out.Error,
			Error:     out.Error,
		}
	}
	if !out.HasResults() {
		reason := out.Error
		if reason == "" {
			reason = fmt.Sprintf("no search results for %q", out.Keyword)
		}
		return types.Verdict{Reasoning: reason}
	}

	user, err := renderPrompt(q, out)
	if err != nil {
		return errVerdict(fmt.Errorf("rendering prompt: %w", err))
	}

	var resp response
	err = llm.CallWithRetry(ctx, a.cfg.MaxRetries, func() error {
		text, callErr := a.backend.Chat(ctx, systemPrompt, user)
		if callErr != nil {
			return callErr
		}
		var r response
		if parseErr := llm.ExtractJSON(text, &r); parseErr != nil {
			return fmt.Errorf("judgment response: %w", parseErr)
		}
		resp = r
		return nil
	})
	if err != nil {
		return errVerdict(err)
	}

	v := types.Verdict{
		Available:           resp.IsAvailable,
		Confidence:          clamp01(resp.Confidence),
		MatchedTitle:        strings.TrimSpace(resp.MatchedTitle),
		MatchedAuthor:       strings.TrimSpace(resp.MatchedAuthor),
		Reasoning:           strings.TrimSpace(resp.Reasoning),
		RecommendedKeywords: resp.RecommendedKeywords,
	}
	return v
}

// errVerdict wraps an analysis failure as an unavailable verdict.
func errVerdict(err error) types.Verdict {
	return types.Verdict{
		Reasoning: "analysis failed: " + err.Error(),
		Error:     err.Error(),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

const maxIntroLen = 200

// truncIntro shortens a candidate blurb so long marketing copy does not
// dominate the prompt. Cuts on rune boundaries.
func truncIntro(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxIntroLen {
		return s
	}
	return string(runes[:maxIntroLen]) + "..."
}

func renderPrompt(q types.BookQuery, out types.SearchOutcome) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Query   types.BookQuery
		Outcome types.SearchOutcome
	}{q, out}
	if err := judgePromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
