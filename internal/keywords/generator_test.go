package keywords

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/bookwatch/internal/llm"
	"github.com/pdiddy/bookwatch/pkg/types"
)

func init() {
	llm.RetryBaseDelay = time.Millisecond
}

// mockChat scripts the chat backend: each call returns the next reply.
type mockChat struct {
	replies []string
	errs    []error
	calls   int
	lastSys string
	lastUsr string
}

func (m *mockChat) Chat(_ context.Context, system, user string) (string, error) {
	i := m.calls
	m.calls++
	m.lastSys = system
	m.lastUsr = user
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	var reply string
	if i < len(m.replies) {
		reply = m.replies[i]
	}
	return reply, err
}

func testLLMCfg() types.LLMConfig {
	return types.LLMConfig{Model: "test-model", MaxRetries: 3}
}

func TestGenerateSuccess(t *testing.T) {
	backend := &mockChat{replies: []string{
		`{"corrected_title": "Sapiens", "corrected_author": "Yuval Noah Harari", "keywords": ["人类简史", "人类简史 赫拉利", "Sapiens"], "reasoning": "translated edition"}`,
	}}
	g := NewGenerator(backend, testLLMCfg())

	ks := g.Generate(context.Background(), types.BookQuery{Title: "Sapiens", Author: "Yuval Noah Harari"})

	if ks.Error != "" {
		t.Fatalf("unexpected error: %s", ks.Error)
	}
	want := []string{"人类简史", "人类简史 赫拉利", "Sapiens"}
	if len(ks.Keywords) != len(want) {
		t.Fatalf("Keywords = %v, want %v", ks.Keywords, want)
	}
	for i := range want {
		if ks.Keywords[i] != want[i] {
			t.Errorf("Keywords[%d] = %q, want %q", i, ks.Keywords[i], want[i])
		}
	}
	if ks.CorrectedTitle != "Sapiens" {
		t.Errorf("CorrectedTitle = %q", ks.CorrectedTitle)
	}
	if !strings.Contains(backend.lastUsr, "Yuval Noah Harari") {
		t.Error("user prompt should include the author")
	}
}

func TestGenerateAppendsOriginalTitle(t *testing.T) {
	backend := &mockChat{replies: []string{
		`{"keywords": ["人类简史", "人类简史 赫拉利"], "reasoning": "r"}`,
	}}
	g := NewGenerator(backend, testLLMCfg())

	ks := g.Generate(context.Background(), types.BookQuery{Title: "Sapiens"})

	last := ks.Keywords[len(ks.Keywords)-1]
	if last != "Sapiens" {
		t.Errorf("original title should be the final fallback candidate, got %v", ks.Keywords)
	}
}

func TestGenerateNeverEmpty(t *testing.T) {
	transient := &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}
	backend := &mockChat{errs: []error{transient, transient, transient}}
	g := NewGenerator(backend, testLLMCfg())

	ks := g.Generate(context.Background(), types.BookQuery{Title: "Sapiens", Author: "Harari"})

	if len(ks.Keywords) != 2 {
		t.Fatalf("Keywords = %v, want degenerate [title, title+author]", ks.Keywords)
	}
	if ks.Keywords[0] != "Sapiens" || ks.Keywords[1] != "Sapiens Harari" {
		t.Errorf("Keywords = %v", ks.Keywords)
	}
	if ks.Error == "" {
		t.Error("Error should record the last failure")
	}
	if backend.calls != 3 {
		t.Errorf("calls = %d, want 3 (transient failures consume the retry budget)", backend.calls)
	}
}

func TestGenerateFallbackWithoutAuthor(t *testing.T) {
	backend := &mockChat{errs: []error{&openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable}}}
	g := NewGenerator(backend, types.LLMConfig{MaxRetries: 1})

	ks := g.Generate(context.Background(), types.BookQuery{Title: "Dune"})

	if len(ks.Keywords) != 1 || ks.Keywords[0] != "Dune" {
		t.Errorf("Keywords = %v, want [Dune]", ks.Keywords)
	}
}

func TestGenerateParseFailureDoesNotRetry(t *testing.T) {
	backend := &mockChat{replies: []string{"I cannot help with that."}}
	g := NewGenerator(backend, testLLMCfg())

	ks := g.Generate(context.Background(), types.BookQuery{Title: "Sapiens"})

	if backend.calls != 1 {
		t.Errorf("calls = %d, want 1 (parse failures skip straight to the fallback)", backend.calls)
	}
	if ks.Error == "" || len(ks.Keywords) == 0 {
		t.Errorf("fallback set expected, got %+v", ks)
	}
}

func TestGenerateSanitizesKeywords(t *testing.T) {
	backend := &mockChat{replies: []string{
		`{"keywords": ["  Sapiens ", "", "Sapiens", "a", "b", "c", "d", "e"], "reasoning": "r"}`,
	}}
	g := NewGenerator(backend, testLLMCfg())

	ks := g.Generate(context.Background(), types.BookQuery{Title: "Sapiens"})

	if len(ks.Keywords) > 5 {
		t.Errorf("keyword list should be capped at 5, got %v", ks.Keywords)
	}
	for i, kw := range ks.Keywords {
		if strings.TrimSpace(kw) != kw || kw == "" {
			t.Errorf("Keywords[%d] = %q not sanitized", i, kw)
		}
	}
	if ks.Keywords[0] != "Sapiens" {
		t.Errorf("Keywords[0] = %q, want trimmed Sapiens", ks.Keywords[0])
	}
}
