package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"colorizevideo/lib"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (flags override it)")
	inputDir := flag.String("input_dir", "", "directory containing input B/W video(s)")
	outputDir := flag.String("output_dir", "", "directory to save colorized videos")
	modelScript := flag.String("model_script", "", "colorizer inference script")
	deviceID := flag.Int("device", 0, "GPU device id for the model")
	renderFactor := flag.Int("render_factor", 0, "color intensity (10-40)")
	saturationScale := flag.Float64("saturation_scale", 0, "saturation scaling factor (0.0-1.0)")
	claheClipLimit := flag.Float64("clahe_clip_limit", 0, "CLAHE clip limit (0.1-4.0)")
	blendFactor := flag.Float64("blend_factor", 0, "blend factor for post-processing (0.0-1.0)")
	recursive := flag.Bool("recursive", false, "recursively scan input_dir for .mp4 files")
	saveConfig := flag.String("save_config", "", "write the effective config to this file and exit")
	flag.Parse()

	cfg := lib.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = lib.GetConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input_dir":
			cfg.InputDir = *inputDir
		case "output_dir":
			cfg.OutputDir = *outputDir
		case "model_script":
			cfg.ModelScript = *modelScript
		case "device":
			cfg.DeviceID = *deviceID
		case "render_factor":
			cfg.Pipeline.RenderFactor = *renderFactor
		case "saturation_scale":
			cfg.Pipeline.SaturationScale = *saturationScale
		case "clahe_clip_limit":
			cfg.Pipeline.ClaheClipLimit = *claheClipLimit
		case "blend_factor":
			cfg.Pipeline.BlendFactor = *blendFactor
		case "recursive":
			cfg.Recursive = *recursive
		}
	})

	if *saveConfig != "" {
		if err := lib.SaveYaml(cfg, *saveConfig); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller := lib.NewBatchController(cfg)
	jobs, err := controller.Run(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for _, job := range jobs {
		if job.Status == lib.StatusFailed {
			os.Exit(1)
		}
	}
}
