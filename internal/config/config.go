package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	CacheDir  string `toml:"cache_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Detector contains black-frame detector thresholds. Changing any value
// partitions the segment cache; results for other thresholds are kept.
type Detector struct {
	PictureBlackRatio   float64 `toml:"picture_black_ratio"`
	PixelBlackThreshold float64 `toml:"pixel_black_threshold"`
	MinBlackSeconds     float64 `toml:"min_black_seconds"`
	// ChunkSeconds is how much of a stream the timeline scans per detector call.
	ChunkSeconds int `toml:"chunk_seconds"`
}

// Alignment contains ratio detection and scene matching settings.
type Alignment struct {
	Mode string `toml:"mode"`
	// MinAccuracy rejects alignments scoring below it (0-100).
	MinAccuracy float64 `toml:"min_accuracy"`
	// ReviewAccuracy flags accepted alignments below it for manual checking.
	ReviewAccuracy            float64 `toml:"review_accuracy"`
	BootstrapTargetScenes     int     `toml:"bootstrap_target_scenes"`
	BootstrapInputOffsets     int     `toml:"bootstrap_input_offsets"`
	KnownRatioMaxErrorSeconds float64 `toml:"known_ratio_max_error_seconds"`
}

// Render contains output settings for adjusted tracks.
type Render struct {
	AudioCodec        string `toml:"audio_codec"`
	AudioExtension    string `toml:"audio_extension"`
	SilenceSampleRate int    `toml:"silence_sample_rate"`
	SilenceLayout     string `toml:"silence_layout"`
}

// FFmpeg names the external binaries.
type FFmpeg struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for trackalign.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Detector  Detector  `toml:"detector"`
	Alignment Alignment `toml:"alignment"`
	Render    Render    `toml:"render"`
	FFmpeg    FFmpeg    `toml:"ffmpeg"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/trackalign/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("trackalign.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the workspace directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.CacheDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "trackalign")
	}
	return "~/.cache/trackalign"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
