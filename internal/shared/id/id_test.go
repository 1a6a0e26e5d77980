package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedIDs(t *testing.T) {
	gen := NewGenerationID()
	region := NewRegionID()
	handle := NewHandleID()

	assert.True(t, IsValid(gen.String(), GenerationPrefix))
	assert.True(t, IsValid(region.String(), RegionPrefix))
	assert.True(t, IsValid(handle.String(), HandlePrefix))

	assert.False(t, IsValid(gen.String(), RegionPrefix))
	assert.False(t, IsValid("region_notanulid", RegionPrefix))
}

func TestUniqueness(t *testing.T) {
	seen := make(map[RegionID]bool)
	for i := 0; i < 1000; i++ {
		r := NewRegionID()
		assert.False(t, seen[r], "duplicate region id %s", r)
		seen[r] = true
	}
}

func TestRequestID(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
