package lib

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// PipelineConfig holds the numeric knobs of the post-processing pipeline.
// One immutable instance is shared by every stage of a run; only the values
// are configurable, never the stage order.
type PipelineConfig struct {
	RenderFactor    int     `yaml:"renderfactor"`
	SaturationScale float64 `yaml:"saturationscale"`
	ClaheClipLimit  float64 `yaml:"clahecliplimit"`
	BlendFactor     float64 `yaml:"blendfactor"`
	TileGridSize    [2]int  `yaml:"tilegridsize"`
}

type Config struct {
	InputDir    string         `yaml:"inputdir"`
	OutputDir   string         `yaml:"outputdir"`
	Recursive   bool           `yaml:"recursive"`
	ModelScript string         `yaml:"modelscript"`
	DeviceID    int            `yaml:"deviceid"`
	Pipeline    PipelineConfig `yaml:"pipeline"`
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		RenderFactor:    21,
		SaturationScale: 0.8,
		ClaheClipLimit:  0.5,
		BlendFactor:     0.6,
		TileGridSize:    [2]int{8, 8},
	}
}

func DefaultConfig() Config {
	return Config{
		OutputDir:   "colorized_videos",
		ModelScript: "./pylib/colorize_inference.py",
		Pipeline:    DefaultPipelineConfig(),
	}
}

func GetConfig(configRoot string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(configRoot)
	if err != nil {
		return config, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return config, nil
}

func SaveYaml(config Config, savePath string) error {
	yamlData, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(savePath, yamlData, 0644)
}

// Validate rejects out-of-range parameters before any processing starts.
func (cfg PipelineConfig) Validate() error {
	if cfg.RenderFactor <= 0 {
		return fmt.Errorf("%w: renderfactor %d must be positive", ErrConfig, cfg.RenderFactor)
	}
	if cfg.SaturationScale <= 0 {
		return fmt.Errorf("%w: saturationscale %v must be positive", ErrConfig, cfg.SaturationScale)
	}
	if cfg.ClaheClipLimit <= 0 {
		return fmt.Errorf("%w: clahecliplimit %v must be positive", ErrConfig, cfg.ClaheClipLimit)
	}
	if cfg.BlendFactor < 0 || cfg.BlendFactor > 1 {
		return fmt.Errorf("%w: blendfactor %v must be in [0,1]", ErrConfig, cfg.BlendFactor)
	}
	if cfg.TileGridSize[0] <= 0 || cfg.TileGridSize[1] <= 0 {
		return fmt.Errorf("%w: tilegridsize %v must be positive", ErrConfig, cfg.TileGridSize)
	}
	return nil
}

func (cfg Config) Validate() error {
	if cfg.InputDir == "" {
		return fmt.Errorf("%w: inputdir is required", ErrConfig)
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("%w: outputdir is required", ErrConfig)
	}
	return cfg.Pipeline.Validate()
}
