package lib

import (
	"math"
	"testing"
)

func TestMeanLuminance(t *testing.T) {
	im := NewImage(8, 8)
	for idx := range im.Bytes {
		im.Bytes[idx] = 50
	}
	// On a uniform gray frame the BT.601 weights sum to 1.
	if got := MeanLuminance(im); math.Abs(got-50) > 1e-9 {
		t.Errorf("got %v, want 50", got)
	}

	white := NewImage(8, 8)
	for idx := range white.Bytes {
		white.Bytes[idx] = 255
	}
	if got := MeanLuminance(white); math.Abs(got-255) > 1e-9 {
		t.Errorf("got %v, want 255", got)
	}
}

func TestFlickerScore(t *testing.T) {
	if got := FlickerScore([]float64{100}); got != 0 {
		t.Errorf("single frame score = %v, want 0", got)
	}
	if got := FlickerScore([]float64{100, 100, 100}); got != 0 {
		t.Errorf("steady series score = %v, want 0", got)
	}
	if got := FlickerScore([]float64{100, 110, 100}); math.Abs(got-10) > 1e-9 {
		t.Errorf("got %v, want 10", got)
	}
}

func TestLuminanceStats(t *testing.T) {
	mean, stddev := LuminanceStats([]float64{90, 100, 110})
	if math.Abs(mean-100) > 1e-9 {
		t.Errorf("mean = %v, want 100", mean)
	}
	if math.Abs(stddev-10) > 1e-9 {
		t.Errorf("stddev = %v, want 10", stddev)
	}
}

func TestHistogramDistance(t *testing.T) {
	a := randomImage(32, 32, 11)
	if got := HistogramDistance(a, a.Copy()); got != 0 {
		t.Errorf("identical frames distance = %v, want 0", got)
	}

	black := NewImage(32, 32)
	white := NewImage(32, 32)
	for idx := range white.Bytes {
		white.Bytes[idx] = 255
	}
	got := HistogramDistance(black, white)
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("disjoint histograms distance = %v, want 1", got)
	}
	if HistogramDistance(a, white) <= 0 {
		t.Error("different frames should have positive distance")
	}
}
