package analyze

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

type mockChat struct {
	replies []string
	errs    []error
	calls   int
	lastUsr string
}

func (m *mockChat) Chat(_ context.Context, _, user string) (string, error) {
	i := m.calls
	m.calls++
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

func sapiensQuery() types.BookQuery {
	return types.BookQuery{Title: "Sapiens", Author: "Yuval Noah Harari"}
}

func outcomeWith(candidates ...types.Candidate) types.SearchOutcome {
	return types.SearchOutcome{
		Keyword:    "人类简史",
		Candidates: candidates,
		TotalCount: len(candidates),
	}
}

func TestAnalyzeMatch(t *testing.T) {
	backend := &mockChat{replies: []string{
		`{"is_available": true, "confidence": 0.95, "matched_title": "人类简史", "matched_author": "尤瓦尔·赫拉利", "reasoning": "Chinese translated edition of the target."}`,
	}}
	a := NewAnalyzer(backend, testLLMCfg())

	v := a.Analyze(context.Background(), sapiensQuery(), outcomeWith(types.Candidate{
		Title:  "人类简史",
		Author: "尤瓦尔·赫拉利",
		State:  types.StateReadable,
	}))

	if !v.Available || v.Confidence != 0.95 {
		t.Fatalf("verdict = %+v", v)
	}
	if v.MatchedTitle != "人类简史" {
		t.Errorf("MatchedTitle = %q", v.MatchedTitle)
	}
	if v.Error != "" {
		t.Errorf("Error = %q, want empty", v.Error)
	}
}

func TestAnalyzeEmptyOutcomeSkipsBackend(t *testing.T) {
	backend := &mockChat{}
	a := NewAnalyzer(backend, testLLMCfg())

	v := a.Analyze(context.Background(), sapiensQuery(), types.SearchOutcome{Keyword: "Sapiens"})

	if backend.calls != 0 {
		t.Errorf("calls = %d, empty outcomes must not reach the model", backend.calls)
	}
	if v.Available || v.Confidence != 0.0 {
		t.Errorf("verdict = %+v, want unavailable with zero confidence", v)
	}
	if !strings.Contains(v.Reasoning, "no search results") {
		t.Errorf("Reasoning = %q", v.Reasoning)
	}
}

func TestAnalyzeSearchErrorSkipsBackend(t *testing.T) {
	backend := &mockChat{}
	a := NewAnalyzer(backend, testLLMCfg())

	v := a.Analyze(context.Background(), sapiensQuery(), types.SearchOutcome{
		Keyword: "Sapiens",
		Error:   "keyword \"Sapiens\": search API returned HTTP 502",
		Failed:  true,
	})

	if backend.calls != 0 {
		t.Errorf("calls = %d, failed searches must not reach the model", backend.calls)
	}
	if v.Available || v.Confidence != 0.0 || v.Error == "" {
		t.Errorf("verdict = %+v", v)
	}
}

func TestAnalyzeAbsentBookIsUnavailableNotFailed(t *testing.T) {
	backend := &mockChat{}
	a := NewAnalyzer(backend, testLLMCfg())

	// Every keyword searched cleanly and found nothing: the book is not
	// on the platform. That is a plain unavailable verdict, not an error.
	v := a.Analyze(context.Background(), sapiensQuery(), types.SearchOutcome{
		Keyword:           "Sapiens",
		AttemptedKeywords: []string{"人类简史", "Sapiens"},
		Error:             "no results for any of 2 keywords",
	})

	if backend.calls != 0 {
		t.Errorf("calls = %d, empty outcomes must not reach the model", backend.calls)
	}
	if v.Failed() {
		t.Fatalf("Verdict.Error = %q, an absent book must not count as a failed check", v.Error)
	}
	if v.Available || v.Confidence != 0.0 {
		t.Errorf("verdict = %+v, want unavailable with zero confidence", v)
	}
	if !strings.Contains(v.Reasoning, "no results") {
		t.Errorf("Reasoning = %q, should note the empty search", v.Reasoning)
	}
}

func TestAnalyzeBackendFailureYieldsErrorVerdict(t *testing.T) {
	transient := &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable}
	backend := &mockChat{errs: []error{transient, transient, transient}}
	a := NewAnalyzer(backend, testLLMCfg())

	v := a.Analyze(context.Background(), sapiensQuery(), outcomeWith(types.Candidate{
		Title: "人类简史", State: types.StateReadable,
	}))

	if v.Error == "" {
		t.Fatal("Error should record the failure")
	}
	if v.Available {
		t.Error("Available must be false when Error is set")
	}
	if v.Confidence != 0.0 {
		t.Errorf("Confidence = %v, must be zero when Error is set", v.Confidence)
	}
	if backend.calls != 3 {
		t.Errorf("calls = %d, want 3", backend.calls)
	}
}

func TestAnalyzeClampsConfidence(t *testing.T) {
	backend := &mockChat{replies: []string{
		`{"is_available": true, "confidence": 1.7, "reasoning": "r"}`,
	}}
	a := NewAnalyzer(backend, testLLMCfg())

	v := a.Analyze(context.Background(), sapiensQuery(), outcomeWith(types.Candidate{
		Title: "人类简史", State: types.StateReadable,
	}))

	if v.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want clamped to 1.0", v.Confidence)
	}
}

func TestAnalyzePendingRelease(t *testing.T) {
	backend := &mockChat{replies: []string{
		`{"is_available": false, "confidence": 0.9, "matched_title": "人类简史", "reasoning": "The matching edition is pending release on the platform.", "recommended_keywords": ["人类简史 新版"]}`,
	}}
	a := NewAnalyzer(backend, testLLMCfg())

	v := a.Analyze(context.Background(), sapiensQuery(), outcomeWith(types.Candidate{
		Title: "人类简史", State: types.StatePendingRelease,
	}))

	if v.Available {
		t.Error("pending-release candidates must not count as available")
	}
	if !strings.Contains(v.Reasoning, "pending release") {
		t.Errorf("Reasoning = %q", v.Reasoning)
	}
	if len(v.RecommendedKeywords) != 1 {
		t.Errorf("RecommendedKeywords = %v", v.RecommendedKeywords)
	}
	if !strings.Contains(backend.lastUsr, "pending release") {
		t.Error("prompt should describe the candidate state")
	}
}

func TestAnalyzePromptListsCandidates(t *testing.T) {
	backend := &mockChat{replies: []string{
		`{"is_available": true, "confidence": 0.8, "reasoning": "r"}`,
	}}
	a := NewAnalyzer(backend, testLLMCfg())

	longIntro := strings.Repeat("简", 500)
	a.Analyze(context.Background(), sapiensQuery(), outcomeWith(
		types.Candidate{Title: "人类简史", Author: "赫拉利", Publisher: "中信出版社", Intro: longIntro, State: types.StateReadable},
		types.Candidate{Title: "人类简史（少儿版）", State: types.StateUnknown},
	))

	usr := backend.lastUsr
	for _, want := range []string{"Sapiens", "Yuval Noah Harari", "人类简史", "中信出版社", "2. 人类简史（少儿版）", "unknown status"} {
		if !strings.Contains(usr, want) {
			t.Errorf("prompt missing %q:\n%s", want, usr)
		}
	}
	if strings.Contains(usr, longIntro) {
		t.Error("long intros should be truncated in the prompt")
	}
}
