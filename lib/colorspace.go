package lib

import (
	"fmt"
	"math"
)

// Conversions follow the 8-bit BGR<->LAB and BGR<->HSV conventions used by
// the usual imaging libraries: L is rescaled to 0..255, a and b are offset by
// 128, H is halved into 0..180, S and V span 0..255. All conversions allocate
// a new buffer; inputs are never mutated.

const (
	labT0   = 0.008856
	labXn   = 0.950456
	labZn   = 1.088754
	lab116  = 16.0 / 116.0
	lab7787 = 7.787
)

func clampU8(x float64) uint8 {
	x = math.Round(x)
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x)
}

func labF(t float64) float64 {
	if t > labT0 {
		return math.Cbrt(t)
	}
	return lab7787*t + lab116
}

func labFInv(t float64) float64 {
	t3 := t * t * t
	if t3 > labT0 {
		return t3
	}
	return (t - lab116) / lab7787
}

// ToLab converts a BGR frame to LAB.
func ToLab(im Image) Image {
	out := NewImage(im.Width, im.Height)
	for idx := 0; idx < len(im.Bytes); idx += 3 {
		b := float64(im.Bytes[idx]) / 255
		g := float64(im.Bytes[idx+1]) / 255
		r := float64(im.Bytes[idx+2]) / 255

		x := 0.412453*r + 0.357580*g + 0.180423*b
		y := 0.212671*r + 0.715160*g + 0.072169*b
		z := 0.019334*r + 0.119193*g + 0.950227*b
		x /= labXn
		z /= labZn

		var l float64
		if y > labT0 {
			l = 116*math.Cbrt(y) - 16
		} else {
			l = 903.3 * y
		}
		fy := labF(y)
		a := 500 * (labF(x) - fy)
		bb := 200 * (fy - labF(z))

		out.Bytes[idx] = clampU8(l * 255 / 100)
		out.Bytes[idx+1] = clampU8(a + 128)
		out.Bytes[idx+2] = clampU8(bb + 128)
	}
	return out
}

// ToBgrFromLab converts a LAB frame back to BGR.
func ToBgrFromLab(im Image) Image {
	out := NewImage(im.Width, im.Height)
	for idx := 0; idx < len(im.Bytes); idx += 3 {
		l := float64(im.Bytes[idx]) * 100 / 255
		a := float64(im.Bytes[idx+1]) - 128
		bb := float64(im.Bytes[idx+2]) - 128

		fy := (l + 16) / 116
		fx := fy + a/500
		fz := fy - bb/200

		var y float64
		if l > 903.3*labT0 {
			y = fy * fy * fy
		} else {
			y = l / 903.3
		}
		x := labFInv(fx) * labXn
		z := labFInv(fz) * labZn

		r := 3.240479*x - 1.537150*y - 0.498535*z
		g := -0.969256*x + 1.875992*y + 0.041556*z
		b := 0.055648*x - 0.204043*y + 1.057311*z

		out.Bytes[idx] = clampU8(b * 255)
		out.Bytes[idx+1] = clampU8(g * 255)
		out.Bytes[idx+2] = clampU8(r * 255)
	}
	return out
}

// ToHsv converts a BGR frame to HSV.
func ToHsv(im Image) Image {
	out := NewImage(im.Width, im.Height)
	for idx := 0; idx < len(im.Bytes); idx += 3 {
		b := float64(im.Bytes[idx])
		g := float64(im.Bytes[idx+1])
		r := float64(im.Bytes[idx+2])

		v := math.Max(r, math.Max(g, b))
		mn := math.Min(r, math.Min(g, b))
		diff := v - mn

		var s float64
		if v != 0 {
			s = diff / v * 255
		}

		var h float64
		if diff != 0 {
			switch v {
			case r:
				h = 60 * (g - b) / diff
			case g:
				h = 120 + 60*(b-r)/diff
			default:
				h = 240 + 60*(r-g)/diff
			}
			if h < 0 {
				h += 360
			}
		}

		out.Bytes[idx] = clampU8(h / 2)
		out.Bytes[idx+1] = clampU8(s)
		out.Bytes[idx+2] = clampU8(v)
	}
	return out
}

// ToBgrFromHsv converts an HSV frame back to BGR.
func ToBgrFromHsv(im Image) Image {
	out := NewImage(im.Width, im.Height)
	for idx := 0; idx < len(im.Bytes); idx += 3 {
		h := float64(im.Bytes[idx]) * 2
		s := float64(im.Bytes[idx+1]) / 255
		v := float64(im.Bytes[idx+2]) / 255

		sector := math.Mod(h/60, 6)
		i := math.Floor(sector)
		f := sector - i
		p := v * (1 - s)
		q := v * (1 - s*f)
		t := v * (1 - s*(1-f))

		var r, g, b float64
		switch int(i) {
		case 0:
			r, g, b = v, t, p
		case 1:
			r, g, b = q, v, p
		case 2:
			r, g, b = p, v, t
		case 3:
			r, g, b = p, q, v
		case 4:
			r, g, b = t, p, v
		default:
			r, g, b = v, p, q
		}

		out.Bytes[idx] = clampU8(b * 255)
		out.Bytes[idx+1] = clampU8(g * 255)
		out.Bytes[idx+2] = clampU8(r * 255)
	}
	return out
}

// ScaleChannel multiplies one channel of a frame by factor, clamping the
// result to 0..255.
func ScaleChannel(im Image, channel int, factor float64) Image {
	out := im.Copy()
	for idx := channel; idx < len(out.Bytes); idx += 3 {
		out.Bytes[idx] = clampU8(float64(out.Bytes[idx]) * factor)
	}
	return out
}

// WeightedSum computes weightA*a + (1-weightA)*b per pixel per channel. The
// endpoints are exact: weightA of 1 reproduces a, 0 reproduces b.
func WeightedSum(a, b Image, weightA float64) (Image, error) {
	if !a.SameSize(b) {
		return Image{}, fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrDimensionMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	out := NewImage(a.Width, a.Height)
	wb := 1 - weightA
	for idx := range out.Bytes {
		out.Bytes[idx] = clampU8(weightA*float64(a.Bytes[idx]) + wb*float64(b.Bytes[idx]))
	}
	return out, nil
}
