package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	for name, dir := range map[string]string{
		"paths.upload_dir": c.Paths.UploadDir,
		"paths.output_dir": c.Paths.OutputDir,
		"paths.assets_dir": c.Paths.AssetsDir,
		"paths.log_dir":    c.Paths.LogDir,
	} {
		if dir == "" {
			return fmt.Errorf("%s must be set", name)
		}
	}
	if c.Paths.OutputDir == c.Paths.UploadDir {
		return errors.New("paths.output_dir must differ from paths.upload_dir")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.MaxWorkers < 0 {
		return errors.New("render.max_workers must not be negative")
	}
	if c.Render.QueueBuffer < 0 {
		return errors.New("render.queue_buffer must not be negative")
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
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
