package lib

// SaturationScaler rescales a frame's global saturation. The model tends to
// over-saturate individual frames; scaling S below 1 pulls them back.
type SaturationScaler struct{}

// Scale converts to HSV, multiplies the S channel by factor (clamped to
// 0..255), and converts back to BGR.
func (s SaturationScaler) Scale(im Image, factor float64) Image {
	hsv := ToHsv(im)
	hsv = ScaleChannel(hsv, 1, factor)
	return ToBgrFromHsv(hsv)
}
