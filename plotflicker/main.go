package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"colorizevideo/lib"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Compares the temporal stability of a raw colorized video against its
// post-processed counterpart: plots per-frame mean luminance, prints flicker
// scores, and dumps the frame pair around the worst luminance jump.
func main() {
	if len(os.Args) < 4 {
		fmt.Fprintf(os.Stderr, "usage: %s color.mp4 final.mp4 save_dir\n", os.Args[0])
		os.Exit(1)
	}
	colorFname := os.Args[1]
	finalFname := os.Args[2]
	saveRoot := os.Args[3]

	if _, err := os.Stat(saveRoot); os.IsNotExist(err) {
		os.Mkdir(saveRoot, 0777)
	}

	colorSeries, err := lib.LuminanceSeries(colorFname)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	finalSeries, err := lib.LuminanceSeries(finalFname)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	p := plot.New()
	p.Title.Text = "Per-frame mean luminance"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Luminance"

	if err := plotutil.AddLinePoints(p,
		"raw", seriesPoints(colorSeries),
		"final", seriesPoints(finalSeries)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	savePath := filepath.Join(saveRoot, "luminance.png")
	if err := p.Save(12*vg.Inch, 10*vg.Inch, savePath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Line graph saved to '%s'.\n", savePath)

	rawMean, rawStd := lib.LuminanceStats(colorSeries)
	finalMean, finalStd := lib.LuminanceStats(finalSeries)
	fmt.Printf("raw:   flicker=%.4f mean=%.2f stddev=%.2f\n",
		lib.FlickerScore(colorSeries), rawMean, rawStd)
	fmt.Printf("final: flicker=%.4f mean=%.2f stddev=%.2f\n",
		lib.FlickerScore(finalSeries), finalMean, finalStd)

	if err := saveWorstJump(colorFname, colorSeries, saveRoot); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func seriesPoints(series []float64) plotter.XYs {
	data := make(plotter.XYs, len(series))
	for i, v := range series {
		data[i].X = float64(i)
		data[i].Y = v
	}
	return data
}

// saveWorstJump writes the two frames around the largest luminance jump in
// the raw video as PNGs for visual inspection.
func saveWorstJump(fname string, series []float64, saveRoot string) error {
	worst := 1
	for i := 2; i < len(series); i++ {
		if math.Abs(series[i]-series[i-1]) > math.Abs(series[worst]-series[worst-1]) {
			worst = i
		}
	}
	if worst >= len(series) {
		return nil
	}

	meta, err := lib.ProbeVideo(fname)
	if err != nil {
		return err
	}
	vreader, err := lib.ReadFfmpeg(fname, meta.Width, meta.Height)
	if err != nil {
		return err
	}
	defer vreader.Close()

	im := lib.NewImage(meta.Width, meta.Height)
	for idx := 0; ; idx++ {
		err := vreader.ReadInto(im)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if idx == worst-1 || idx == worst {
			out := filepath.Join(saveRoot, fmt.Sprintf("jump_frame_%d.png", idx))
			if err := im.Save(out); err != nil {
				return err
			}
			fmt.Printf("Saved %s\n", out)
		}
		if idx > worst {
			break
		}
	}
	return nil
}
