package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFleurs(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFleurs() error {
	if c.Fleurs.Config == "" {
		return errors.New("fleurs.config must be set (for example tg_tj)")
	}
	if !strings.HasPrefix(c.Fleurs.BaseURL, "http://") && !strings.HasPrefix(c.Fleurs.BaseURL, "https://") {
		return fmt.Errorf("fleurs.base_url must be an http(s) URL, got %q", c.Fleurs.BaseURL)
	}
	if c.Fleurs.RequestTimeout <= 0 {
		return errors.New("fleurs.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SamplingRate <= 0 {
		return errors.New("audio.sampling_rate must be positive")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	if c.Processing.Workers <= 0 {
		return errors.New("processing.workers must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return errors.New("logging rotation settings must not be negative")
	}
	return nil
}

// ValidateFeatureCommands reports whether the external extractor and tokenizer
// commands are configured. Only the CLI needs them.
func (c *Config) ValidateFeatureCommands() error {
	if len(c.Features.ExtractorCommand) == 0 {
		return errors.New("features.extractor_command must be set")
	}
	if len(c.Features.TokenizerCommand) == 0 {
		return errors.New("features.tokenizer_command must be set")
	}
	return nil
}
