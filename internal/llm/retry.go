// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

// RetryBaseDelay is the first backoff interval for transient chat API
// failures; it doubles on each subsequent attempt. Tests override this
// to avoid real sleeps.
var RetryBaseDelay = time.Second

const defaultMaxAttempts = 3

// CallWithRetry runs fn with exponential backoff on transient errors.
// Permanent errors (per IsTransient) stop the loop immediately, so a
// malformed model response does not consume the remote-call budget.
// When maxAttempts is 0 the default (3) is used.
func CallWithRetry(ctx context.Context, maxAttempts int, fn func() error) error {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(uint(maxAttempts)),
		retry.Delay(RetryBaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsTransient),
		retry.LastErrorOnly(true),
	)
}
