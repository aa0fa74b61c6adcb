package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRaiseInvariant(t *testing.T) {
	invariantsMetric.Reset() // Reset the metric to ensure a clean state for the test.
	assert.Zero(t, GetMetricValue("invariant" /*module*/, "test" /*invariantType*/))

	RaiseInvariant("invariant", "test", "This is a test invariant violation.", "attempt", 1)
	RaiseInvariant("invariant", "test", "This is a test invariant violation.", "attempt", 2)
	assert.Equal(t, 2, GetMetricValue("invariant" /*module*/, "test" /*invariantType*/))
	assert.Zero(t, GetMetricValue("invariant" /*module*/, "other" /*invariantType*/))
}

func TestRaiseInvariant_TestModePanics(t *testing.T) {
	prevTestMode := IsTestMode
	t.Cleanup(func() { IsTestMode = prevTestMode })

	IsTestMode = true
	assert.PanicsWithValue(t, "invariant violated: boom", func() {
		RaiseInvariant("invariant", "boom", "This invariant should panic.")
	})
}
