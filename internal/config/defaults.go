package config

const (
	defaultUploadDir   = "~/.local/share/vidpress/uploads"
	defaultOutputDir   = "~/.local/share/vidpress/outputs"
	defaultAssetsDir   = "~/.local/share/vidpress/assets"
	defaultLogDir      = "~/.local/share/vidpress/logs"
	defaultAPIBind     = "127.0.0.1:7823"
	defaultMaxWorkers  = 2
	defaultQueueBuffer = 64
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir: defaultUploadDir,
			OutputDir: defaultOutputDir,
			AssetsDir: defaultAssetsDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Render: Render{
			MaxWorkers:  defaultMaxWorkers,
			QueueBuffer: defaultQueueBuffer,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
