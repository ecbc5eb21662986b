package mathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/go-sound-bath/internal/testutil"
)

func TestBesselI0(t *testing.T) {
	tests := []struct {
		name      string
		x         float64
		expected  float64
		tolerance float64
	}{
		{"Zero", 0.0, 1.0, 1e-15},
		{"One", 1.0, 1.266065848, 1e-7},
		{"Boundary 3.75", 3.75, 9.118945994, 1e-7},
		{"Five", 5.0, 27.23987183, 1e-7},
		{"Ten", 10.0, 2815.716628, 1e-6},
		{"Negative one", -1.0, 1.266065848, 1e-7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertRelativeError(t, tt.expected, BesselI0(tt.x), tt.tolerance)
		})
	}
}

func TestKaiserBeta(t *testing.T) {
	assert.InDelta(t, 0.1102*(90-8.7), KaiserBeta(90), 1e-12)
	assert.Zero(t, KaiserBeta(10))
	assert.Greater(t, KaiserBeta(40), 0.0)
}

func TestKaiserWindow(t *testing.T) {
	w := KaiserWindow(65, KaiserBeta(90))

	assert.Len(t, w, 65)
	testutil.AssertSymmetric(t, w, testutil.WindowTolerance)
	testutil.AssertCenterIsMax(t, w)
	testutil.AssertAllInRange(t, w, 0, 1)
	assert.InDelta(t, 1.0, w[32], 1e-12)

	assert.Equal(t, []float64{1}, KaiserWindow(1, 5))
	assert.Empty(t, KaiserWindow(0, 5))
}

func TestMagnitudeDB(t *testing.T) {
	assert.InDelta(t, 0.0, MagnitudeDB(1), testutil.DBTolerance)
	assert.InDelta(t, -20.0, MagnitudeDB(0.1), testutil.DBTolerance)
	assert.InDelta(t, -240.0, MagnitudeDB(0), testutil.DBTolerance)
}
