package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"trackalign/internal/adjust"
	"trackalign/internal/align"
	"trackalign/internal/config"
	"trackalign/internal/ffmpeg"
	"trackalign/internal/logging"
	"trackalign/internal/matcher"
	"trackalign/internal/media"
	"trackalign/internal/segmentcache"
	"trackalign/internal/span"
	"trackalign/internal/subtitles"
	"trackalign/internal/workspace"
)

// session is the wiring of one command invocation.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	ws      *workspace.Workspace
	library *media.Library
	engine  *align.Engine
	runID   string
}

func (c *commandContext) newSession(ctx context.Context) (*session, context.Context, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, ctx, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, ctx, err
	}
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)

	ws := workspace.New(cfg)
	prober := media.FFprobe{Binary: cfg.FFmpeg.FFprobeBinary}
	detector := ffmpeg.NewBlackDetector(cfg.FFmpeg.FFmpegBinary, logger)
	return &session{
		cfg:     cfg,
		logger:  logger,
		ws:      ws,
		library: media.NewLibrary(prober),
		engine:  align.New(runContext(cfg, ws, prober, logger), detector),
		runID:   runID,
	}, ctx, nil
}

func runContext(cfg *config.Config, ws *workspace.Workspace, prober media.Prober, logger *slog.Logger) align.RunContext {
	audio := ffmpeg.NewAudioRenderer(cfg.FFmpeg.FFmpegBinary, ffmpeg.AudioOptions{
		Codec:      cfg.Render.AudioCodec,
		Extension:  cfg.Render.AudioExtension,
		SampleRate: cfg.Render.SilenceSampleRate,
		Layout:     cfg.Render.SilenceLayout,
	}, prober, logger)
	return align.RunContext{
		OutputDir: cfg.Paths.OutputDir,
		CachePath: ws.SegmentCachePath,
		Detector:  detectorConfig(cfg),
		Chunk:     time.Duration(cfg.Detector.ChunkSeconds) * time.Second,
		Matcher: matcher.Options{
			BootstrapTargetScenes: cfg.Alignment.BootstrapTargetScenes,
			BootstrapInputOffsets: cfg.Alignment.BootstrapInputOffsets,
			MinScore:              cfg.Alignment.MinAccuracy,
		},
		ReviewAccuracy:     cfg.Alignment.ReviewAccuracy,
		KnownRatioMaxError: span.Seconds(cfg.Alignment.KnownRatioMaxErrorSeconds),
		Renderers: map[media.Kind]adjust.Renderer{
			media.Audio:    audio,
			media.Subtitle: subtitles.NewRenderer(cfg.FFmpeg.FFmpegBinary, logger),
		},
		Logger: logger,
	}
}

func detectorConfig(cfg *config.Config) segmentcache.Config {
	return segmentcache.Config{
		PictureBlackRatio:   cfg.Detector.PictureBlackRatio,
		PixelBlackThreshold: cfg.Detector.PixelBlackThreshold,
		MinBlackDuration:    span.Seconds(cfg.Detector.MinBlackSeconds),
	}
}

// resolveMode prefers the flag value over the configured mode.
func resolveMode(flag string, cfg *config.Config) (align.Mode, error) {
	if flag == "" {
		flag = cfg.Alignment.Mode
	}
	return align.ParseMode(flag)
}
