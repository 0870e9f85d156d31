package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "zero distance",
			lat1: -6.2, lon1: 106.8, lat2: -6.2, lon2: 106.8,
			want: 0, tolerance: 0.001,
		},
		{
			// One degree of latitude is ~111.2 km everywhere.
			name: "one degree of latitude",
			lat1: 0, lon1: 0, lat2: 1, lon2: 0,
			want: 111195, tolerance: 50,
		},
		{
			name: "0.0003 degrees north of origin is about 33m",
			lat1: 0.0003, lon1: 0, lat2: 0, lon2: 0,
			want: 33.4, tolerance: 0.5,
		},
		{
			name: "0.001 degrees north of origin is about 111m",
			lat1: 0.001, lon1: 0, lat2: 0, lon2: 0,
			want: 111.2, tolerance: 0.5,
		},
		{
			name: "symmetric in arguments",
			lat1: -6.175392, lon1: 106.827153, lat2: -6.121435, lon2: 106.774124,
			want: Haversine(-6.121435, 106.774124, -6.175392, 106.827153), tolerance: 1e-9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.want, got, tt.tolerance)
		})
	}
}

func TestHaversinePropagatesNaN(t *testing.T) {
	got := Haversine(math.NaN(), 0, 0, 0)
	assert.True(t, math.IsNaN(got))

	// NaN never satisfies a radius comparison, so a corrupt coordinate can
	// never land inside a zone.
	assert.False(t, got <= 100)
}

func TestValidCoordinate(t *testing.T) {
	assert.True(t, ValidCoordinate(0, 0))
	assert.True(t, ValidCoordinate(-90, 180))
	assert.False(t, ValidCoordinate(91, 0))
	assert.False(t, ValidCoordinate(0, -181))
	assert.False(t, ValidCoordinate(math.NaN(), 0))
	assert.False(t, ValidCoordinate(0, math.NaN()))
}
