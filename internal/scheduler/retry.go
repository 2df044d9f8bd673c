package scheduler

import "time"

// RetryConfig controls exponential backoff for a failed scheduled job run.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig matches the teacher's cron defaults: 3 retries,
// 2s base backoff doubling up to 30s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// Backoff returns the delay before retry attempt n (1-indexed).
func (c RetryConfig) Backoff(attempt int) time.Duration {
	d := c.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d > c.MaxDelay {
			return c.MaxDelay
		}
	}
	if d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}
