package ratelimit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/kenmoini/go-unifi-facts/internal/ratelimit"
)

func TestNewRateLimiter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		requestsPerMinute int
		wantLimit         rate.Limit
		wantBurst         int
	}{
		{
			name:              "default controller limit",
			requestsPerMinute: 1000,
			wantLimit:         rate.Limit(1000.0 / 60.0),
			wantBurst:         1000,
		},
		{
			name:              "one per minute",
			requestsPerMinute: 1,
			wantLimit:         rate.Limit(1.0 / 60.0),
			wantBurst:         1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			limiter := ratelimit.NewRateLimiter(tt.requestsPerMinute)
			require.NotNil(t, limiter)
			assert.InDelta(t, float64(tt.wantLimit), float64(limiter.Limit()), 1e-9)
			assert.Equal(t, tt.wantBurst, limiter.Burst())
		})
	}
}
