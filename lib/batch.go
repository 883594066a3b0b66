package lib

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	ansi "github.com/k0kubun/go-ansi"
	"github.com/mitchellh/colorstring"
	"github.com/schollz/progressbar/v3"
)

// BatchController walks the discovered input videos one by one, skipping
// anything already completed and isolating per-video failures so one broken
// input never stops the rest of the batch.
type BatchController struct {
	cfg     Config
	tracker *JobTracker
}

func NewBatchController(cfg Config) *BatchController {
	return &BatchController{
		cfg:     cfg,
		tracker: NewJobTracker(),
	}
}

// Tracker exposes job snapshots for progress-polling observers.
func (c *BatchController) Tracker() *JobTracker {
	return c.tracker
}

// DiscoverVideos lists the .mp4 inputs under the input directory, skipping
// files that already look like colorized outputs.
func (c *BatchController) DiscoverVideos() ([]string, error) {
	var fnames []string
	if c.cfg.Recursive {
		err := filepath.WalkDir(c.cfg.InputDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".mp4") {
				fnames = append(fnames, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		fnames, err = filepath.Glob(filepath.Join(c.cfg.InputDir, "*.mp4"))
		if err != nil {
			return nil, err
		}
	}

	var inputs []string
	for _, fname := range fnames {
		if strings.HasSuffix(fname, "_color.mp4") || strings.HasSuffix(fname, "_final.mp4") {
			continue
		}
		inputs = append(inputs, fname)
	}
	sort.Strings(inputs)
	return inputs, nil
}

// Run processes every discovered video. A config error aborts the whole
// batch before any processing; everything after that is per-video.
func (c *BatchController) Run(ctx context.Context) ([]VideoJob, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.cfg.OutputDir, 0755); err != nil {
		return nil, err
	}

	inputs, err := c.DiscoverVideos()
	if err != nil {
		return nil, err
	}
	colorstring.Printf("[cyan]Found %d video(s) to process.\n", len(inputs))

	for _, input := range inputs {
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		job := VideoJob{
			ID:              base,
			InputPath:       input,
			ColorOutputPath: filepath.Join(c.cfg.OutputDir, base+"_color.mp4"),
			FinalOutputPath: filepath.Join(c.cfg.OutputDir, base+"_final.mp4"),
			Status:          StatusPending,
		}

		// Existence of the final output is the sole resume signal.
		if _, err := os.Stat(job.FinalOutputPath); err == nil {
			job.Status = StatusCompleted
			job.ProgressPercent = 100
			c.tracker.Put(job)
			colorstring.Printf("[yellow]Skipping %s -> already completed.\n", input)
			continue
		}

		job.Status = StatusProcessing
		c.tracker.Put(job)

		if err := c.processVideo(ctx, &job); err != nil {
			job.Status = StatusFailed
			job.ErrorMessage = err.Error()
		} else {
			job.Status = StatusCompleted
			job.ProgressPercent = 100
		}
		c.tracker.Put(job)

		if ctx.Err() != nil {
			break
		}
	}

	jobs := c.tracker.Snapshot()
	c.printSummary(jobs)
	return jobs, nil
}

// processVideo runs the model and the post-processing pipeline over one
// video. Outputs are written into a per-video working directory and only
// moved into the output directory once both streams finished cleanly, so an
// aborted job never leaves partial files that would satisfy the resume check.
func (c *BatchController) processVideo(ctx context.Context, job *VideoJob) error {
	meta, err := ProbeVideo(job.InputPath)
	if err != nil {
		return err
	}

	workDir := filepath.Join(filepath.Dir(job.InputPath), "deoldify_"+job.ID)
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	model, err := NewColorizerModel(c.cfg.ModelScript, c.cfg.Pipeline.RenderFactor, c.cfg.DeviceID)
	if err != nil {
		return err
	}
	defer model.Close()

	vreader, err := ReadFfmpeg(job.InputPath, meta.Width, meta.Height)
	if err != nil {
		return err
	}
	defer vreader.Close()

	tmpColor := filepath.Join(workDir, job.ID+"_color.mp4")
	tmpFinal := filepath.Join(workDir, job.ID+"_final.mp4")
	colorWriter, err := WriteFfmpeg(tmpColor, meta.Width, meta.Height, meta.FPS)
	if err != nil {
		return err
	}
	finalWriter, err := WriteFfmpeg(tmpFinal, meta.Width, meta.Height, meta.FPS)
	if err != nil {
		colorWriter.Close()
		return err
	}

	bar := progressbar.NewOptions(meta.Frames,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][%s][reset] Colorizing", job.ID)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	progress := func(done, total int) {
		bar.Add(1)
		if total > 0 {
			job.ProgressPercent = done * 100 / total
		}
		c.tracker.Put(*job)
	}

	bfr := NewBufferedFrameReader(vreader, meta.Width, meta.Height, 64)
	defer bfr.Close()
	src := &colorizeSource{bfr: bfr, model: model}
	sink := &pairSink{color: colorWriter, final: finalWriter}

	seq := NewFrameSequencer(c.cfg.Pipeline, progress)
	runErr := seq.Run(ctx, src, sink, meta.Frames)

	colorErr := colorWriter.Close()
	finalErr := finalWriter.Close()
	fmt.Println()
	if runErr != nil {
		return runErr
	}
	if colorErr != nil {
		return fmt.Errorf("encoding %s: %w", tmpColor, colorErr)
	}
	if finalErr != nil {
		return fmt.Errorf("encoding %s: %w", tmpFinal, finalErr)
	}

	// Color output first: the final output is the resume signal and must
	// appear last.
	if err := os.Rename(tmpColor, job.ColorOutputPath); err != nil {
		return err
	}
	return os.Rename(tmpFinal, job.FinalOutputPath)
}

func (c *BatchController) printSummary(jobs []VideoJob) {
	color.Output = ansi.NewAnsiStdout()
	var completed, failed int
	for _, job := range jobs {
		switch job.Status {
		case StatusCompleted:
			completed++
			colorstring.Printf("[green]%s: completed\n", job.ID)
		case StatusFailed:
			failed++
			colorstring.Printf("[red]%s: failed (%s)\n", job.ID, job.ErrorMessage)
		}
	}
	colorstring.Printf("\nDone: [green]%d completed[reset], [red]%d failed[reset]\n", completed, failed)
}

// colorizeSource feeds decoded grayscale frames through the model, producing
// the raw colorized stream the pipeline consumes.
type colorizeSource struct {
	bfr   *BufferedFrameReader
	model *ColorizerModel
}

func (s *colorizeSource) Read() (Image, error) {
	im, err := s.bfr.Read()
	if err != nil {
		return Image{}, err
	}
	return s.model.Colorize(im)
}

// pairSink writes the two output streams of one video.
type pairSink struct {
	color *FfmpegWriter
	final *FfmpegWriter
}

func (p *pairSink) Write(raw, final Image) error {
	if err := p.color.Write(raw); err != nil {
		return err
	}
	return p.final.Write(final)
}
