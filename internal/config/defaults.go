package config

const (
	defaultWorkDir           = "~/.cache/asrprep/work"
	defaultLogDir            = "~/.local/share/asrprep/logs"
	defaultOutputDB          = "~/.local/share/asrprep/prepared.db"
	defaultFleursBaseURL     = "https://huggingface.co"
	defaultFleursDataset     = "google/fleurs"
	defaultFleursConfig      = "tg_tj"
	defaultFleursRevision    = "main"
	defaultRequestTimeout    = 600
	defaultAudioFolderDir    = "./dataset"
	defaultSamplingRate      = 16000
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultWorkers           = 2
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogMaxSizeMB      = 50
	defaultLogMaxBackups     = 5
	defaultLogMaxAgeDays     = 30
	defaultHFTokenEnv        = "HF_TOKEN"
	defaultHFTokenEnvLegacy  = "HUGGING_FACE_HUB_TOKEN"
	defaultExtractorFallback = "asrprep-extract"
	defaultTokenizerFallback = "asrprep-tokenize"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:  defaultWorkDir,
			LogDir:   defaultLogDir,
			OutputDB: defaultOutputDB,
		},
		Fleurs: Fleurs{
			BaseURL:        defaultFleursBaseURL,
			Dataset:        defaultFleursDataset,
			Config:         defaultFleursConfig,
			Revision:       defaultFleursRevision,
			RequestTimeout: defaultRequestTimeout,
		},
		AudioFolder: AudioFolder{
			DataDir: defaultAudioFolderDir,
		},
		Audio: Audio{
			SamplingRate:  defaultSamplingRate,
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Processing: Processing{
			Workers: defaultWorkers,
		},
		Features: Features{
			ExtractorCommand: []string{defaultExtractorFallback},
			TokenizerCommand: []string{defaultTokenizerFallback},
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
