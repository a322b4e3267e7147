package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMetersZeroDistance(t *testing.T) {
	assert.Zero(t, HaversineMeters(-1.2864, 36.8172, -1.2864, 36.8172))
}

func TestHaversineMetersLatitudeDegree(t *testing.T) {
	// 0.01 degrees of latitude is ~1111.95m regardless of longitude.
	d := HaversineMeters(-1.2864, 36.8172, -1.2764, 36.8172)
	assert.InDelta(t, 1111.95, d, 0.1)
}

func TestHaversineMetersLongitudeShrinksWithLatitude(t *testing.T) {
	atEquator := HaversineMeters(0, 36.0, 0, 36.01)
	at60 := HaversineMeters(60, 36.0, 60, 36.01)

	assert.InDelta(t, 1111.95, atEquator, 0.1)
	assert.InDelta(t, atEquator/2, at60, 0.5)
}

func TestHaversineMetersSymmetric(t *testing.T) {
	a := HaversineMeters(-1.2864, 36.8172, -1.3032, 36.7073)
	b := HaversineMeters(-1.3032, 36.7073, -1.2864, 36.8172)
	assert.InDelta(t, a, b, 1e-9)
}
