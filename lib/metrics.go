package lib

import (
	"io"
	"math"

	"github.com/anthonynsimon/bild/histogram"
	"gonum.org/v1/gonum/stat"
)

// Luminance and histogram measurements used by the flicker evaluation tool
// and the pipeline tests. Temporal consistency shows up directly in these
// numbers: a flickering video has large frame-to-frame luminance jumps.

// MeanLuminance returns the average BT.601 luma of a BGR frame.
func MeanLuminance(im Image) float64 {
	var sum float64
	for idx := 0; idx < len(im.Bytes); idx += 3 {
		b := float64(im.Bytes[idx])
		g := float64(im.Bytes[idx+1])
		r := float64(im.Bytes[idx+2])
		sum += 0.299*r + 0.587*g + 0.114*b
	}
	return sum / float64(len(im.Bytes)/3)
}

// LuminanceSeries decodes a video and returns its per-frame mean luminance.
func LuminanceSeries(fname string) ([]float64, error) {
	meta, err := ProbeVideo(fname)
	if err != nil {
		return nil, err
	}
	vreader, err := ReadFfmpeg(fname, meta.Width, meta.Height)
	if err != nil {
		return nil, err
	}
	defer vreader.Close()

	var series []float64
	im := NewImage(meta.Width, meta.Height)
	for {
		err := vreader.ReadInto(im)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		series = append(series, MeanLuminance(im))
	}
	return series, nil
}

// FlickerScore is the mean absolute frame-to-frame luminance change; lower
// means steadier output.
func FlickerScore(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	diffs := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		diffs[i-1] = math.Abs(series[i] - series[i-1])
	}
	return stat.Mean(diffs, nil)
}

// LuminanceStats returns the mean and standard deviation of a series.
func LuminanceStats(series []float64) (mean, stddev float64) {
	return stat.MeanStdDev(series, nil)
}

// HistogramDistance is the normalized L1 distance between the RGB channel
// histograms of two frames, in 0..1 per channel averaged over channels.
func HistogramDistance(a, b Image) float64 {
	ha := histogram.NewRGBAHistogram(ImageToNRGBA(a))
	hb := histogram.NewRGBAHistogram(ImageToNRGBA(b))

	pixelsA := float64(a.Width * a.Height)
	pixelsB := float64(b.Width * b.Height)

	var total float64
	channels := [][2]histogram.Histogram{
		{ha.R, hb.R},
		{ha.G, hb.G},
		{ha.B, hb.B},
	}
	for _, pair := range channels {
		for i := range pair[0].Bins {
			total += math.Abs(float64(pair[0].Bins[i])/pixelsA - float64(pair[1].Bins[i])/pixelsB)
		}
	}
	return total / 6 // L1 distance between distributions is at most 2 per channel
}
