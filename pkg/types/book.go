// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the bookwatch pipeline:
// the book query and keyword inputs, normalized search candidates, the
// availability verdict, the run summary, and the configuration structs
// each stage consumes.
package types

import "time"

// BookQuery identifies one book to check. The (Title, Author) pair is the
// identity for a run; no deduplication is performed across a batch.
type BookQuery struct {
	// Title is the book title as recorded by the caller. Must be non-empty.
	Title string `json:"title" yaml:"title"`

	// Author is the author name, if known. Optional.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`
}

// String returns "Title" or "Title (Author)" for progress output.
func (q BookQuery) String() string {
	if q.Author == "" {
		return q.Title
	}
	return q.Title + " (" + q.Author + ")"
}

// KeywordSet is an ordered list of candidate search strings for one book,
// highest-confidence guess first. It is never empty: when generation fails
// it degenerates to the raw title (plus "title author" when the author is
// known) and Error records the failure.
type KeywordSet struct {
	// Keywords holds 1-5 candidate search strings in priority order.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// CorrectedTitle is the model's spelling-corrected title, if any.
	CorrectedTitle string `json:"corrected_title,omitempty" yaml:"corrected_title,omitempty"`

	// CorrectedAuthor is the model's spelling-corrected author, if any.
	CorrectedAuthor string `json:"corrected_author,omitempty" yaml:"corrected_author,omitempty"`

	// Reasoning is the model's explanation of its keyword choices.
	Reasoning string `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`

	// Error describes why generation fell back to the degenerate set.
	// Empty when the remote call succeeded.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Verdict is the final availability decision for one book.
// Invariant: when Error is non-empty, Available is false and Confidence
// is zero.
type Verdict struct {
	// Available reports whether the book is published and readable on the
	// platform. A pending-release match does not count as available.
	Available bool `json:"available" yaml:"available"`

	// Confidence is the match confidence in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// MatchedTitle is the candidate title the verdict is based on, if any.
	MatchedTitle string `json:"matched_title,omitempty" yaml:"matched_title,omitempty"`

	// MatchedAuthor is the candidate author the verdict is based on, if any.
	MatchedAuthor string `json:"matched_author,omitempty" yaml:"matched_author,omitempty"`

	// Reasoning explains the decision. It must explain any confidence
	// below the newly-available threshold and enumerate candidates when
	// the match is ambiguous.
	Reasoning string `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`

	// RecommendedKeywords are search strings suggested for a future retry.
	RecommendedKeywords []string `json:"recommended_keywords,omitempty" yaml:"recommended_keywords,omitempty"`

	// Error is set when the analysis failed permanently for this book.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the check failed rather than concluding.
func (v Verdict) Failed() bool {
	return v.Error != ""
}

// BookVerdict pairs a query with its search outcome and verdict.
type BookVerdict struct {
	Query   BookQuery     `json:"query" yaml:"query"`
	Outcome SearchOutcome `json:"outcome" yaml:"outcome"`
	Verdict Verdict       `json:"verdict" yaml:"verdict"`
}

// RunSummary aggregates the outcome of one batch run. Per-book failures
// are recorded, never dropped, and Total always equals Available plus
// Unavailable; a run cancelled mid-batch covers the completed books.
type RunSummary struct {
	// Total is the number of books processed.
	Total int `json:"total" yaml:"total"`

	// Available counts verdicts with Available set.
	Available int `json:"available" yaml:"available"`

	// Unavailable counts verdicts with Available unset.
	Unavailable int `json:"unavailable" yaml:"unavailable"`

	// NewlyAvailable lists books judged available with confidence above
	// the configured threshold.
	NewlyAvailable []BookVerdict `json:"newly_available,omitempty" yaml:"newly_available,omitempty"`

	// Failed lists books whose check ended with a verdict error.
	Failed []BookVerdict `json:"failed,omitempty" yaml:"failed,omitempty"`

	// Results holds every per-book outcome in input order.
	Results []BookVerdict `json:"results" yaml:"results"`

	// Timestamp is when the run started.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// HasFailures reports whether any book failed during the run.
func (s RunSummary) HasFailures() bool {
	return len(s.Failed) > 0
}
