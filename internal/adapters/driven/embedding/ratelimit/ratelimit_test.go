package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	l := New(0, 5)

	assert.Nil(t, l)
	require.NoError(t, l.Wait(context.Background()))
	l.Backoff("10")
	assert.True(t, l.RetryAt().IsZero())
}

func TestWait_Burst(t *testing.T) {
	l := New(1000, 3)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		name       string
		retryAfter string
		want       time.Duration
	}{
		{name: "seconds", retryAfter: "12", want: 12 * time.Second},
		{name: "empty", retryAfter: "", want: DefaultBackoff},
		{name: "http date", retryAfter: "Wed, 21 Oct 2015 07:28:00 GMT", want: DefaultBackoff},
		{name: "negative", retryAfter: "-3", want: DefaultBackoff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(10, 1)
			before := time.Now()

			l.Backoff(tt.retryAfter)

			assert.WithinDuration(t, before.Add(tt.want), l.RetryAt(), time.Second)
		})
	}
}

func TestWait_CancelledDuringBackoff(t *testing.T) {
	l := New(10, 1)
	l.Backoff("60")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
