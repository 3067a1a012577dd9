package enrichment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(3, time.Minute)
	cb.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		cb.RecordFailure()
		assert.True(t, cb.CanProceed())
	}
	cb.RecordFailure()
	assert.Equal(t, "open", cb.GetState())
	assert.False(t, cb.CanProceed())

	now = now.Add(time.Minute + time.Second)
	assert.True(t, cb.CanProceed())
	assert.Equal(t, "half-open", cb.GetState())

	cb.RecordSuccess()
	assert.Equal(t, "closed", cb.GetState())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, time.Second)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	now = now.Add(2 * time.Second)
	assert.True(t, cb.CanProceed())

	cb.RecordFailure()
	assert.Equal(t, "open", cb.GetState())
	assert.False(t, cb.CanProceed())
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(2, 0)

	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	assert.Equal(t, "closed", cb.GetState())
}
