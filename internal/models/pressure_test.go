package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMmHg(t *testing.T) {
	assert.Equal(t, 0.0, ToMmHg(0))

	// Standard sea-level pressure.
	assert.Equal(t, 760.0, math.Round(ToMmHg(1013.25)*100)/100)
	assert.Equal(t, 759.81, math.Round(ToMmHg(1013)*100)/100)
}

func TestToMmHgLinearity(t *testing.T) {
	for _, hpa := range []float64{1.0, 500.0, 1000.0, 1040.5} {
		assert.InDelta(t, 2*ToMmHg(hpa), ToMmHg(2*hpa), 1e-9)
		assert.InDelta(t, ToMmHg(hpa)+ToMmHg(1), ToMmHg(hpa+1), 1e-9)
	}
}
