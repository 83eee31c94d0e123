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
	c.normalizeAlignment()
	c.normalizeRender()
	c.normalizeFFmpeg()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAlignment() {
	c.Alignment.Mode = strings.ToLower(strings.TrimSpace(c.Alignment.Mode))
	if c.Alignment.Mode == "" {
		c.Alignment.Mode = defaultMode
	}
	if c.Alignment.BootstrapTargetScenes == 0 {
		c.Alignment.BootstrapTargetScenes = defaultBootstrapScenes
	}
	if c.Alignment.BootstrapInputOffsets == 0 {
		c.Alignment.BootstrapInputOffsets = defaultBootstrapOffsets
	}
}

func (c *Config) normalizeRender() {
	c.Render.AudioCodec = strings.TrimSpace(c.Render.AudioCodec)
	if c.Render.AudioCodec == "" {
		c.Render.AudioCodec = defaultAudioCodec
	}
	c.Render.AudioExtension = strings.TrimPrefix(strings.TrimSpace(c.Render.AudioExtension), ".")
	if c.Render.AudioExtension == "" {
		c.Render.AudioExtension = defaultAudioExtension
	}
	if strings.TrimSpace(c.Render.SilenceLayout) == "" {
		c.Render.SilenceLayout = defaultSilenceLayout
	}
}

func (c *Config) normalizeFFmpeg() {
	if value, ok := os.LookupEnv("TRACKALIGN_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.FFmpeg.FFmpegBinary = value
	}
	if value, ok := os.LookupEnv("TRACKALIGN_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.FFmpeg.FFprobeBinary = value
	}
	c.FFmpeg.FFmpegBinary = strings.TrimSpace(c.FFmpeg.FFmpegBinary)
	if c.FFmpeg.FFmpegBinary == "" {
		c.FFmpeg.FFmpegBinary = defaultFFmpegBinary
	}
	c.FFmpeg.FFprobeBinary = strings.TrimSpace(c.FFmpeg.FFprobeBinary)
	if c.FFmpeg.FFprobeBinary == "" {
		c.FFmpeg.FFprobeBinary = defaultFFprobeBinary
	}
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
