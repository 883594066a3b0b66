package lib

import (
	"context"
	"fmt"
	"io"
)

// FrameSource yields the raw colorized frames of one video in order,
// returning io.EOF after the last one.
type FrameSource interface {
	Read() (Image, error)
}

// FrameSink receives, per frame, the unmodified model output and the final
// post-processed frame.
type FrameSink interface {
	Write(raw, final Image) error
}

// FrameSequencer runs the fixed per-frame stage order over one video:
// histogram match, saturation scale, contrast enhance, blend against the raw
// frame. It owns the MatcherState for the lifetime of the video; after each
// frame the reference becomes that frame's final blended result, so the next
// match pulls toward what was actually written rather than toward raw model
// output that could re-introduce drift.
type FrameSequencer struct {
	cfg      PipelineConfig
	matcher  HistogramMatcher
	scaler   SaturationScaler
	enhancer ContrastEnhancer
	blender  Blender
	state    MatcherState
	progress func(done, total int)
}

func NewFrameSequencer(cfg PipelineConfig, progress func(done, total int)) *FrameSequencer {
	return &FrameSequencer{
		cfg:      cfg,
		progress: progress,
	}
}

// ProcessFrame pushes one raw colorized frame through the stage chain and
// commits its result as the next matching reference.
func (s *FrameSequencer) ProcessFrame(raw Image) (Image, error) {
	matched := s.matcher.Match(raw, &s.state)
	saturated := s.scaler.Scale(matched, s.cfg.SaturationScale)
	contrasted := s.enhancer.Enhance(saturated,
		s.cfg.ClaheClipLimit, s.cfg.TileGridSize[0], s.cfg.TileGridSize[1])
	final, err := s.blender.Blend(contrasted, raw, s.cfg.BlendFactor)
	if err != nil {
		return Image{}, err
	}

	ref := final.Copy()
	s.state.Reference = &ref
	return final, nil
}

// Run drains src through the pipeline into sink. Frames are processed
// strictly in arrival order; frame N+1 cannot start until frame N's result is
// committed, so there is no intra-video parallelism to exploit. The context
// is only checked between frames.
func (s *FrameSequencer) Run(ctx context.Context, src FrameSource, sink FrameSink, totalFrames int) error {
	var width, height int
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := src.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}

		if n == 0 {
			width, height = raw.Width, raw.Height
		} else if raw.Width != width || raw.Height != height {
			return fmt.Errorf("frame %d: %w: expected %dx%d, got %dx%d",
				n, ErrDimensionMismatch, width, height, raw.Width, raw.Height)
		}

		final, err := s.ProcessFrame(raw)
		if err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}
		if err := sink.Write(raw, final); err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}

		n++
		if s.progress != nil {
			s.progress(n, totalFrames)
		}
	}
	return nil
}
