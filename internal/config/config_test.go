package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"asrprep/internal/config"
)

func TestLoadDefaultConfigUsesEnvTokenAndExpandsPaths(t *testing.T) {
	t.Setenv("HF_TOKEN", "hf-test")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".cache", "asrprep", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if !filepath.IsAbs(cfg.AudioFolder.DataDir) || filepath.Base(cfg.AudioFolder.DataDir) != "dataset" {
		t.Fatalf("expected absolute dataset dir, got %q", cfg.AudioFolder.DataDir)
	}
	if cfg.Fleurs.Dataset != "google/fleurs" || cfg.Fleurs.Config != "tg_tj" {
		t.Fatalf("unexpected corpus defaults: %s %s", cfg.Fleurs.Dataset, cfg.Fleurs.Config)
	}
	if cfg.Fleurs.HFToken != "hf-test" {
		t.Fatalf("expected token from env, got %q", cfg.Fleurs.HFToken)
	}
	if cfg.Audio.SamplingRate != 16000 {
		t.Fatalf("expected 16 kHz default, got %d", cfg.Audio.SamplingRate)
	}
	if cfg.Processing.Workers != 2 {
		t.Fatalf("expected 2 workers by default, got %d", cfg.Processing.Workers)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "asrprep.toml")

	type payload struct {
		Fleurs struct {
			Config  string `toml:"config"`
			BaseURL string `toml:"base_url"`
		} `toml:"fleurs"`
		AudioFolder struct {
			DataDir string `toml:"data_dir"`
		} `toml:"audiofolder"`
		Processing struct {
			Workers int `toml:"workers"`
		} `toml:"processing"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Fleurs.Config = " UZ_UZ "
	custom.Fleurs.BaseURL = "https://mirror.example.com/"
	custom.AudioFolder.DataDir = filepath.Join(tempDir, "assignment")
	custom.Processing.Workers = 4
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Fleurs.Config != "uz_uz" {
		t.Fatalf("expected normalized config code, got %q", cfg.Fleurs.Config)
	}
	if cfg.Fleurs.BaseURL != "https://mirror.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Fleurs.BaseURL)
	}
	if cfg.AudioFolder.DataDir != custom.AudioFolder.DataDir {
		t.Fatalf("unexpected data dir %q", cfg.AudioFolder.DataDir)
	}
	if cfg.Processing.Workers != 4 {
		t.Fatalf("expected 4 workers, got %d", cfg.Processing.Workers)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercased log format, got %q", cfg.Logging.Format)
	}
	if cfg.Fleurs.Dataset != "google/fleurs" {
		t.Fatalf("expected default dataset to survive partial config, got %q", cfg.Fleurs.Dataset)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(configPath, []byte("[processing\nworkers = "), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Fleurs.Config != "tg_tj" {
		t.Fatalf("expected sample to target tg_tj, got %q", cfg.Fleurs.Config)
	}
	if cfg.Processing.Workers != 2 {
		t.Fatalf("expected sample workers 2, got %d", cfg.Processing.Workers)
	}
	if len(cfg.Features.ExtractorCommand) == 0 || len(cfg.Features.TokenizerCommand) == 0 {
		t.Fatal("expected sample feature commands")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"workers":       func(c *config.Config) { c.Processing.Workers = 0 },
		"sampling rate": func(c *config.Config) { c.Audio.SamplingRate = -1 },
		"corpus config": func(c *config.Config) { c.Fleurs.Config = "" },
		"base url":      func(c *config.Config) { c.Fleurs.BaseURL = "ftp://example.com" },
		"timeout":       func(c *config.Config) { c.Fleurs.RequestTimeout = 0 },
		"log format":    func(c *config.Config) { c.Logging.Format = "xml" },
		"log level":     func(c *config.Config) { c.Logging.Level = "trace" },
		"rotation":      func(c *config.Config) { c.Logging.MaxBackups = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for %s", name)
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateFeatureCommands(t *testing.T) {
	cfg := config.Default()
	if err := cfg.ValidateFeatureCommands(); err != nil {
		t.Fatalf("default commands should validate: %v", err)
	}
	cfg.Features.TokenizerCommand = nil
	if err := cfg.ValidateFeatureCommands(); err == nil {
		t.Fatal("expected error for missing tokenizer command")
	}
}
