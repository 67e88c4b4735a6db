// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package weread

import (
	"context"
	"fmt"

	"github.com/pdiddy/bookwatch/pkg/types"
)

const defaultMaxRetries = 3

// Search tries each keyword in priority order until one returns at
// least one candidate. A keyword that succeeds with zero candidates is
// not an error; the next keyword is tried. Transient failures on a
// keyword are retried up to MaxRetries with a randomized delay before
// moving on. When every keyword is exhausted the outcome carries the
// first attempted keyword and either the last failure or a no-results
// note.
func (c *Client) Search(ctx context.Context, keywords []string) types.SearchOutcome {
	if len(keywords) == 0 {
		return types.SearchOutcome{Error: "no keywords to search", Failed: true}
	}

	maxRetries := c.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	outcome := types.SearchOutcome{Keyword: keywords[0]}
	var lastErr error
	for _, kw := range keywords {
		outcome.AttemptedKeywords = append(outcome.AttemptedKeywords, kw)
		for attempt := 1; attempt <= maxRetries; attempt++ {
			candidates, total, err := c.searchOnce(ctx, kw)
			if err != nil {
				lastErr = fmt.Errorf("keyword %q: %w", kw, err)
				if ctx.Err() != nil {
					outcome.Error = lastErr.Error()
					outcome.Failed = true
					return outcome
				}
				if attempt < maxRetries {
					if sleepErr := sleep(ctx, c.retryDelay()); sleepErr != nil {
						outcome.Error = lastErr.Error()
						outcome.Failed = true
						return outcome
					}
				}
				continue
			}
			if len(candidates) > 0 {
				outcome.Keyword = kw
				outcome.Candidates = candidates
				outcome.TotalCount = total
				return outcome
			}
			// Empty result set is a definitive answer for this
			// keyword; fall through to the next one.
			break
		}
	}

	if lastErr != nil {
		outcome.Error = lastErr.Error()
		outcome.Failed = true
	} else {
		// A clean search that found nothing is an answer, not a failure.
		outcome.Error = fmt.Sprintf("no results for any of %d keywords", len(keywords))
	}
	return outcome
}
