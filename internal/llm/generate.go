package llm

import (
	"context"
	"errors"
	"time"
)

// DefaultRetryBackoff is the pause before the single rate-limit retry.
const DefaultRetryBackoff = 2 * time.Second

// GenerateWithRetry invokes the client and retries exactly once, with backoff,
// when the model service reports rate limiting. Other failures are surfaced
// immediately: an unavailable model will not become available within one backoff.
func GenerateWithRetry(ctx context.Context, client Client, prompt string, backoff time.Duration) (string, error) {
	if backoff == 0 {
		backoff = DefaultRetryBackoff
	}

	text, err := client.GenerateMessage(ctx, prompt)
	if err == nil {
		return text, nil
	}

	var gerr *GenerationError
	if !errors.As(err, &gerr) || gerr.Kind != RateLimited {
		return "", err
	}

	select {
	case <-time.After(backoff):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return client.GenerateMessage(ctx, prompt)
}
