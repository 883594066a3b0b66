package lib

import "sync"

// MatcherState carries the histogram reference across the frames of one
// video. It is owned by exactly one FrameSequencer and must never be shared
// between videos. Reference is nil only before the first frame; afterwards it
// always holds the most recent fully post-processed output frame.
type MatcherState struct {
	Reference *Image
}

// HistogramMatcher pulls a frame's per-channel intensity distribution toward
// the reference frame's, suppressing frame-to-frame flicker introduced by
// independent per-frame model inference.
type HistogramMatcher struct{}

// Match returns current remapped so that its LAB channel distributions
// approximate the reference's. On the first frame of a video (empty state) it
// returns current unchanged and installs it as the reference.
func (m HistogramMatcher) Match(current Image, state *MatcherState) Image {
	if state.Reference == nil {
		ref := current.Copy()
		state.Reference = &ref
		return current.Copy()
	}

	curLab := ToLab(current)
	refLab := ToLab(*state.Reference)

	out := NewImage(current.Width, current.Height)
	var wg sync.WaitGroup
	for channel := 0; channel < 3; channel++ {
		wg.Add(1)
		go func(channel int) {
			defer wg.Done()
			lut := matchLUT(channelCDF(curLab, channel), channelCDF(refLab, channel))
			for idx := channel; idx < len(out.Bytes); idx += 3 {
				out.Bytes[idx] = lut[curLab.Bytes[idx]]
			}
		}(channel)
	}
	wg.Wait()

	return ToBgrFromLab(out)
}

// channelCDF computes the cumulative distribution of one interleaved channel
// in 256 bins, normalized to 0..1.
func channelCDF(im Image, channel int) [256]float64 {
	var hist [256]int
	for idx := channel; idx < len(im.Bytes); idx += 3 {
		hist[im.Bytes[idx]]++
	}
	total := float64(len(im.Bytes) / 3)
	var cdf [256]float64
	sum := 0
	for i := 0; i < 256; i++ {
		sum += hist[i]
		cdf[i] = float64(sum) / total
	}
	return cdf
}

// matchLUT builds the monotonic non-decreasing lookup table mapping each
// source intensity to the reference intensity whose CDF value is closest.
// Runs in O(256); the two CDFs are already cumulative.
func matchLUT(src, ref [256]float64) [256]uint8 {
	var lut [256]uint8
	j := 0
	for i := 0; i < 256; i++ {
		for j < 255 && ref[j] < src[i] {
			j++
		}
		pick := j
		if j > 0 && src[i]-ref[j-1] <= ref[j]-src[i] {
			pick = j - 1
		}
		if i > 0 && uint8(pick) < lut[i-1] {
			pick = int(lut[i-1])
		}
		lut[i] = uint8(pick)
	}
	return lut
}
