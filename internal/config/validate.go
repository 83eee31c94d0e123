package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDetector(); err != nil {
		return err
	}
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDetector() error {
	if c.Detector.PictureBlackRatio <= 0 || c.Detector.PictureBlackRatio > 1 {
		return errors.New("detector.picture_black_ratio must be in (0, 1]")
	}
	if c.Detector.PixelBlackThreshold < 0 || c.Detector.PixelBlackThreshold > 1 {
		return errors.New("detector.pixel_black_threshold must be between 0 and 1")
	}
	if c.Detector.MinBlackSeconds <= 0 {
		return errors.New("detector.min_black_seconds must be positive")
	}
	if c.Detector.ChunkSeconds <= 0 {
		return errors.New("detector.chunk_seconds must be positive")
	}
	return nil
}

func (c *Config) validateAlignment() error {
	switch c.Alignment.Mode {
	case "none", "drift", "stretch", "full":
	default:
		return fmt.Errorf("alignment.mode must be one of none, drift, stretch, full (got %q)", c.Alignment.Mode)
	}
	if c.Alignment.MinAccuracy < 0 || c.Alignment.MinAccuracy > 100 {
		return errors.New("alignment.min_accuracy must be between 0 and 100")
	}
	if c.Alignment.ReviewAccuracy < c.Alignment.MinAccuracy || c.Alignment.ReviewAccuracy > 100 {
		return errors.New("alignment.review_accuracy must be between min_accuracy and 100")
	}
	if c.Alignment.BootstrapTargetScenes < 1 || c.Alignment.BootstrapInputOffsets < 1 {
		return errors.New("alignment.bootstrap_target_scenes and bootstrap_input_offsets must be at least 1")
	}
	if c.Alignment.KnownRatioMaxErrorSeconds < 0 {
		return errors.New("alignment.known_ratio_max_error_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.SilenceSampleRate <= 0 {
		return errors.New("render.silence_sample_rate must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error (got %q)", c.Logging.Level)
	}
	return nil
}
