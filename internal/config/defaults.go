package config

const (
	defaultWorkDir             = "~/.local/share/trackalign"
	defaultOutputDir           = "~/.local/share/trackalign/output"
	defaultLogDir              = "~/.local/share/trackalign/logs"
	defaultLogFormat           = "auto"
	defaultLogLevel            = "info"
	defaultPictureBlackRatio   = 0.98
	defaultPixelBlackThreshold = 0.10
	defaultMinBlackSeconds     = 0.1
	defaultChunkSeconds        = 300
	defaultMode                = "full"
	defaultMinAccuracy         = 50.0
	defaultReviewAccuracy      = 90.0
	defaultBootstrapScenes     = 3
	defaultBootstrapOffsets    = 3
	defaultKnownRatioMaxError  = 2.0
	defaultAudioCodec          = "flac"
	defaultAudioExtension      = "mka"
	defaultSilenceSampleRate   = 48000
	defaultSilenceLayout       = "stereo"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Detector: Detector{
			PictureBlackRatio:   defaultPictureBlackRatio,
			PixelBlackThreshold: defaultPixelBlackThreshold,
			MinBlackSeconds:     defaultMinBlackSeconds,
			ChunkSeconds:        defaultChunkSeconds,
		},
		Alignment: Alignment{
			Mode:                      defaultMode,
			MinAccuracy:               defaultMinAccuracy,
			ReviewAccuracy:            defaultReviewAccuracy,
			BootstrapTargetScenes:     defaultBootstrapScenes,
			BootstrapInputOffsets:     defaultBootstrapOffsets,
			KnownRatioMaxErrorSeconds: defaultKnownRatioMaxError,
		},
		Render: Render{
			AudioCodec:        defaultAudioCodec,
			AudioExtension:    defaultAudioExtension,
			SilenceSampleRate: defaultSilenceSampleRate,
			SilenceLayout:     defaultSilenceLayout,
		},
		FFmpeg: FFmpeg{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
