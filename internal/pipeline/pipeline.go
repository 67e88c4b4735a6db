// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the per-book availability check end to end:
// keyword generation, platform search, then match analysis. Books are
// processed sequentially and failures in one book never abort the run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/bookwatch/pkg/types"
)

// KeywordGenerator produces ranked search keywords for a book.
type KeywordGenerator interface {
	Generate(ctx context.Context, q types.BookQuery) types.KeywordSet
}

// Searcher resolves keywords into platform candidates.
type Searcher interface {
	Search(ctx context.Context, keywords []string) types.SearchOutcome
}

// Analyzer judges whether the candidates contain the target book.
type Analyzer interface {
	Analyze(ctx context.Context, q types.BookQuery, out types.SearchOutcome) types.Verdict
}

// Pipeline wires the three stages together.
type Pipeline struct {
	Keywords KeywordGenerator
	Searcher Searcher
	Analyzer Analyzer
	cfg      types.PipelineConfig
}

// New builds a Pipeline from the stages and configuration.
func New(kw KeywordGenerator, s Searcher, a Analyzer, cfg types.PipelineConfig) *Pipeline {
	return &Pipeline{Keywords: kw, Searcher: s, Analyzer: a, cfg: cfg}
}

// RunOne checks a single book. Keyword generation cannot fail (it falls
// back to the raw title) so the stages always run in full; search
// failures surface through the verdict's Error field.
func (p *Pipeline) RunOne(ctx context.Context, q types.BookQuery) (types.SearchOutcome, types.Verdict) {
	ks := p.Keywords.Generate(ctx, q)
	out := p.Searcher.Search(ctx, ks.Keywords)
	v := p.Analyzer.Analyze(ctx, q, out)
	return out, v
}

// Run checks every query sequentially and aggregates a RunSummary. The
// summary always covers all inputs, including failed ones. A fixed
// delay separates consecutive books to stay polite to the search API;
// no delay follows the last book. Progress lines go to w. When the
// context is cancelled mid-run the summary covers only the completed
// books, so Total always equals Available plus Unavailable.
func (p *Pipeline) Run(ctx context.Context, queries []types.BookQuery, w io.Writer) types.RunSummary {
	if w == nil {
		w = io.Discard
	}
	summary := types.RunSummary{
		Total:     len(queries),
		Timestamp: time.Now().UTC(),
	}

	for i, q := range queries {
		fmt.Fprintf(w, "[%d/%d] checking %s\n", i+1, len(queries), q)

		out, v := p.RunOne(ctx, q)
		bv := types.BookVerdict{Query: q, Outcome: out, Verdict: v}
		summary.Results = append(summary.Results, bv)

		switch {
		case v.Failed():
			summary.Unavailable++
			summary.Failed = append(summary.Failed, bv)
			fmt.Fprintf(w, "  check failed: %s\n", v.Error)
		case v.Available:
			summary.Available++
			fmt.Fprintf(w, "  available (confidence %.2f): %s\n", v.Confidence, v.MatchedTitle)
			if v.Confidence > p.cfg.AvailableThreshold {
				summary.NewlyAvailable = append(summary.NewlyAvailable, bv)
			}
		default:
			summary.Unavailable++
			fmt.Fprintf(w, "  not available (confidence %.2f)\n", v.Confidence)
		}

		if i < len(queries)-1 && p.cfg.InterBookDelay > 0 {
			select {
			case <-ctx.Done():
				fmt.Fprintf(w, "run cancelled after %d of %d books: %v\n", i+1, len(queries), ctx.Err())
				summary.Total = len(summary.Results)
				return summary
			case <-time.After(p.cfg.InterBookDelay):
			}
		}
	}

	fmt.Fprintf(w, "checked %d books: %d available, %d not, %d failed\n",
		summary.Total, summary.Available, summary.Unavailable, len(summary.Failed))
	return summary
}
