package lib

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultPipelineConfig(t *testing.T) {
	cfg := DefaultPipelineConfig()
	if cfg.RenderFactor != 21 {
		t.Errorf("renderfactor = %d, want 21", cfg.RenderFactor)
	}
	if cfg.SaturationScale != 0.8 {
		t.Errorf("saturationscale = %v, want 0.8", cfg.SaturationScale)
	}
	if cfg.ClaheClipLimit != 0.5 {
		t.Errorf("clahecliplimit = %v, want 0.5", cfg.ClaheClipLimit)
	}
	if cfg.BlendFactor != 0.6 {
		t.Errorf("blendfactor = %v, want 0.6", cfg.BlendFactor)
	}
	if cfg.TileGridSize != [2]int{8, 8} {
		t.Errorf("tilegridsize = %v, want [8 8]", cfg.TileGridSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default pipeline config invalid: %v", err)
	}
}

func TestPipelineConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*PipelineConfig)
	}{
		{"zero render factor", func(c *PipelineConfig) { c.RenderFactor = 0 }},
		{"negative saturation", func(c *PipelineConfig) { c.SaturationScale = -0.1 }},
		{"zero clip limit", func(c *PipelineConfig) { c.ClaheClipLimit = 0 }},
		{"blend above one", func(c *PipelineConfig) { c.BlendFactor = 1.01 }},
		{"negative blend", func(c *PipelineConfig) { c.BlendFactor = -0.5 }},
		{"zero tile grid", func(c *PipelineConfig) { c.TileGridSize = [2]int{0, 8} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultPipelineConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrConfig) {
				t.Errorf("got %v, want ErrConfig", err)
			}
		})
	}
}

func TestConfigValidateRequiresDirs(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, ErrConfig) {
		t.Errorf("empty inputdir accepted: %v", err)
	}
	cfg.InputDir = "videos"
	cfg.OutputDir = ""
	if err := cfg.Validate(); !errors.Is(err, ErrConfig) {
		t.Errorf("empty outputdir accepted: %v", err)
	}
}

func TestConfigYamlRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InputDir = "/data/bw"
	cfg.OutputDir = "/data/out"
	cfg.Recursive = true
	cfg.DeviceID = 1
	cfg.Pipeline.BlendFactor = 0.4

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := SaveYaml(cfg, path); err != nil {
		t.Fatal(err)
	}
	loaded, err := GetConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != cfg {
		t.Errorf("round trip changed config:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestGetConfigMissingFile(t *testing.T) {
	if _, err := GetConfig(filepath.Join(t.TempDir(), "absent.yaml")); !errors.Is(err, ErrConfig) {
		t.Errorf("got %v, want ErrConfig", err)
	}
}

func TestGetConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	writeTestFile(t, path, "inputdir: /data/bw\npipeline:\n  blendfactor: 0.3\n")

	cfg, err := GetConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.InputDir != "/data/bw" {
		t.Errorf("inputdir = %q", cfg.InputDir)
	}
	if cfg.Pipeline.BlendFactor != 0.3 {
		t.Errorf("blendfactor = %v, want 0.3", cfg.Pipeline.BlendFactor)
	}
	if cfg.Pipeline.RenderFactor != 21 {
		t.Errorf("renderfactor = %d, want default 21", cfg.Pipeline.RenderFactor)
	}
	if cfg.OutputDir != "colorized_videos" {
		t.Errorf("outputdir = %q, want default", cfg.OutputDir)
	}
}
