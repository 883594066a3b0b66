package lib

// Blender mixes the post-processed frame back with the raw model output.
// blendFactor weights the post-processed frame: 0 reproduces the model output
// exactly, 1 keeps only the post-processed result.
type Blender struct{}

func (bl Blender) Blend(processed, raw Image, blendFactor float64) (Image, error) {
	return WeightedSum(processed, raw, blendFactor)
}
