package lib

import (
	"errors"
	"math/rand"
	"testing"
)

// lowChromaGradient builds a frame whose per-pixel channel spread stays small
// so that hue quantization in the 8-bit HSV encoding cannot move any channel
// by more than a couple of levels on the way back.
func lowChromaGradient(width, height int) Image {
	im := NewImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			im.SetBGR(x, y, [3]uint8{
				uint8(115 + (x+y)%10),
				uint8(110 + y%15),
				uint8(100 + x%20),
			})
		}
	}
	return im
}

func randomImage(width, height int, seed int64) Image {
	rng := rand.New(rand.NewSource(seed))
	im := NewImage(width, height)
	for idx := range im.Bytes {
		im.Bytes[idx] = uint8(rng.Intn(256))
	}
	return im
}

func maxAbsDiff(a, b Image) int {
	worst := 0
	for idx := range a.Bytes {
		d := int(a.Bytes[idx]) - int(b.Bytes[idx])
		if d < 0 {
			d = -d
		}
		if d > worst {
			worst = d
		}
	}
	return worst
}

func TestLabRoundTrip(t *testing.T) {
	im := lowChromaGradient(64, 48)
	back := ToBgrFromLab(ToLab(im))
	if d := maxAbsDiff(im, back); d > 2 {
		t.Errorf("LAB round trip drifted by %d levels, want <= 2", d)
	}
}

func TestHsvRoundTrip(t *testing.T) {
	im := lowChromaGradient(64, 48)
	back := ToBgrFromHsv(ToHsv(im))
	if d := maxAbsDiff(im, back); d > 2 {
		t.Errorf("HSV round trip drifted by %d levels, want <= 2", d)
	}
}

func TestWeightedSumEndpoints(t *testing.T) {
	a := randomImage(32, 32, 1)
	b := randomImage(32, 32, 2)

	got, err := WeightedSum(a, b, 1)
	if err != nil {
		t.Fatal(err)
	}
	if maxAbsDiff(got, a) != 0 {
		t.Error("weight 1 did not reproduce the first image exactly")
	}

	got, err = WeightedSum(a, b, 0)
	if err != nil {
		t.Fatal(err)
	}
	if maxAbsDiff(got, b) != 0 {
		t.Error("weight 0 did not reproduce the second image exactly")
	}
}

func TestWeightedSumDimensionMismatch(t *testing.T) {
	a := NewImage(32, 32)
	b := NewImage(32, 16)
	if _, err := WeightedSum(a, b, 0.5); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestScaleChannelClamps(t *testing.T) {
	im := NewImage(4, 4)
	for idx := range im.Bytes {
		im.Bytes[idx] = 200
	}

	doubled := ScaleChannel(im, 1, 2)
	for idx := 1; idx < len(doubled.Bytes); idx += 3 {
		if doubled.Bytes[idx] != 255 {
			t.Fatalf("byte %d = %d, want clamped 255", idx, doubled.Bytes[idx])
		}
	}
	// Other channels untouched.
	for idx := 0; idx < len(doubled.Bytes); idx += 3 {
		if doubled.Bytes[idx] != 200 || doubled.Bytes[idx+2] != 200 {
			t.Fatal("scaling channel 1 modified another channel")
		}
	}

	halved := ScaleChannel(im, 1, 0.5)
	for idx := 1; idx < len(halved.Bytes); idx += 3 {
		if halved.Bytes[idx] != 100 {
			t.Fatalf("byte %d = %d, want 100", idx, halved.Bytes[idx])
		}
	}
}
