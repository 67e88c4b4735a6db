// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AvailabilityState classifies a provider book record: readable now,
// announced but not yet readable, or unknown.
type AvailabilityState string

const (
	StateReadable       AvailabilityState = "readable"
	StatePendingRelease AvailabilityState = "pending_release"
	StateUnknown        AvailabilityState = "unknown"
)

// Describe returns the human-readable form used in analysis prompts and
// progress output.
func (s AvailabilityState) Describe() string {
	switch s {
	case StateReadable:
		return "published and readable"
	case StatePendingRelease:
		return "pending release (listed but not yet readable)"
	default:
		return "unknown status"
	}
}

// Candidate is one provider search result normalized from the raw record.
type Candidate struct {
	// Title is the listed title, usually the Chinese edition title.
	Title string `json:"title" yaml:"title"`

	// Author is the listed author, usually transliterated.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// BookID is the provider's identifier for the record.
	BookID string `json:"book_id,omitempty" yaml:"book_id,omitempty"`

	// Publisher is the listed publisher, if any.
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`

	// Intro is the provider's description blurb, if any.
	Intro string `json:"intro,omitempty" yaml:"intro,omitempty"`

	// State is the normalized availability classification.
	State AvailabilityState `json:"state" yaml:"state"`

	// StatusCode and Soldout are the raw provider flags the State was
	// derived from, kept for audit.
	StatusCode int `json:"status_code" yaml:"status_code"`
	Soldout    int `json:"soldout" yaml:"soldout"`
}

// SearchOutcome is the result of the keyword-fallback search for one book.
// Error is set only when every keyword exhausted its retries without a
// non-empty result; HasResults is always equivalent to a non-empty
// candidate list.
type SearchOutcome struct {
	// Keyword is the search string that produced the candidates, or the
	// first attempted keyword when nothing did.
	Keyword string `json:"keyword" yaml:"keyword"`

	// Candidates holds at most the configured cap of normalized records,
	// in provider order.
	Candidates []Candidate `json:"candidates,omitempty" yaml:"candidates,omitempty"`

	// AttemptedKeywords lists every keyword tried, in order, for audit.
	AttemptedKeywords []string `json:"attempted_keywords" yaml:"attempted_keywords"`

	// TotalCount is the provider's reported total for the winning keyword.
	TotalCount int `json:"total_count,omitempty" yaml:"total_count,omitempty"`

	// Error describes why no keyword produced candidates: the last
	// transport failure, or a no-results note when every keyword
	// searched cleanly and found nothing.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Failed distinguishes the two empty cases: true when the search
	// ended in a terminal failure (retries exhausted), false when the
	// platform answered and the book simply is not listed.
	Failed bool `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// HasResults reports whether the search found any candidates.
func (o SearchOutcome) HasResults() bool {
	return len(o.Candidates) > 0
}
