package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllowsBurst(t *testing.T) {
	// 600/min gives a burst of 60; the first calls must pass immediately.
	l := NewLimiter(ProviderNameOpenAI, 600)

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(), "call %d should be within burst", i)
	}
}

func TestLimiterThrottles(t *testing.T) {
	// 10/min gives a burst of exactly one.
	l := NewLimiter(ProviderNameGemini, 10)

	assert.True(t, l.Allow())
	assert.False(t, l.Allow(), "second immediate call exceeds the burst")
}

func TestLimiterNilIsNoop(t *testing.T) {
	var l *Limiter
	assert.True(t, l.Allow())
	assert.NoError(t, l.Wait(context.Background()))
}
