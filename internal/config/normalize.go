package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFleurs()
	c.normalizeAudio()
	c.normalizeFeatures()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDB) == "" {
		c.Paths.OutputDB = defaultOutputDB
	}
	if c.Paths.OutputDB, err = expandPath(c.Paths.OutputDB); err != nil {
		return fmt.Errorf("paths.output_db: %w", err)
	}
	if strings.TrimSpace(c.AudioFolder.DataDir) == "" {
		c.AudioFolder.DataDir = defaultAudioFolderDir
	}
	if c.AudioFolder.DataDir, err = expandPath(c.AudioFolder.DataDir); err != nil {
		return fmt.Errorf("audiofolder.data_dir: %w", err)
	}
	if c.Metrics.Textfile != "" {
		if c.Metrics.Textfile, err = expandPath(c.Metrics.Textfile); err != nil {
			return fmt.Errorf("metrics.textfile: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeFleurs() {
	c.Fleurs.BaseURL = strings.TrimRight(strings.TrimSpace(c.Fleurs.BaseURL), "/")
	if c.Fleurs.BaseURL == "" {
		c.Fleurs.BaseURL = defaultFleursBaseURL
	}
	c.Fleurs.Dataset = strings.Trim(strings.TrimSpace(c.Fleurs.Dataset), "/")
	if c.Fleurs.Dataset == "" {
		c.Fleurs.Dataset = defaultFleursDataset
	}
	c.Fleurs.Config = strings.ToLower(strings.TrimSpace(c.Fleurs.Config))
	c.Fleurs.Revision = strings.TrimSpace(c.Fleurs.Revision)
	if c.Fleurs.Revision == "" {
		c.Fleurs.Revision = defaultFleursRevision
	}
	c.Fleurs.HFToken = strings.TrimSpace(c.Fleurs.HFToken)
	if c.Fleurs.HFToken == "" {
		for _, key := range []string{defaultHFTokenEnv, defaultHFTokenEnvLegacy} {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				c.Fleurs.HFToken = strings.TrimSpace(value)
				break
			}
		}
	}
}

func (c *Config) normalizeAudio() {
	c.Audio.FFmpegBinary = strings.TrimSpace(c.Audio.FFmpegBinary)
	if c.Audio.FFmpegBinary == "" {
		c.Audio.FFmpegBinary = defaultFFmpegBinary
	}
	c.Audio.FFprobeBinary = strings.TrimSpace(c.Audio.FFprobeBinary)
	if c.Audio.FFprobeBinary == "" {
		c.Audio.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeFeatures() {
	c.Features.ExtractorCommand = trimCommand(c.Features.ExtractorCommand)
	c.Features.TokenizerCommand = trimCommand(c.Features.TokenizerCommand)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimCommand(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
