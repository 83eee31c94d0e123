package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"trackalign/internal/adjust"
	"trackalign/internal/cuts"
	"trackalign/internal/logging"
	"trackalign/internal/media"
	"trackalign/internal/ratio"
)

// atempo accepts factors in [0.5, 2] per filter instance.
const (
	minTempo = 0.5
	maxTempo = 2.0
)

// AudioOptions configures rendered audio tracks.
type AudioOptions struct {
	Codec     string
	Extension string
	// SampleRate and Layout describe injected silence when the source
	// track does not report its own.
	SampleRate int
	Layout     string
}

// AudioRenderer renders adjusted audio tracks with ffmpeg. It implements
// adjust.Renderer.
type AudioRenderer struct {
	binary string
	opts   AudioOptions
	prober media.Prober
	logger *slog.Logger
	run    commandRunner
}

// NewAudioRenderer returns a renderer invoking binary. prober is used to
// open rendered files and may be nil.
func NewAudioRenderer(binary string, opts AudioOptions, prober media.Prober, logger *slog.Logger) *AudioRenderer {
	return &AudioRenderer{
		binary: binary,
		opts:   opts,
		prober: prober,
		logger: logging.NewComponentLogger(logger, "audio-render"),
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner replaces the process runner, for tests.
func (r *AudioRenderer) WithCommandRunner(run commandRunner) {
	if r != nil && run != nil {
		r.run = run
	}
}

// Extension implements adjust.Renderer.
func (r *AudioRenderer) Extension(media.Track) string {
	return r.opts.Extension
}

// Render implements adjust.Renderer.
func (r *AudioRenderer) Render(ctx context.Context, track media.Track, data adjust.Data, dest string) error {
	if track.Kind != media.Audio {
		return fmt.Errorf("%w: %s", adjust.ErrUnsupportedTrack, track.Kind)
	}
	args, err := r.args(track, data, dest)
	if err != nil {
		return err
	}
	r.logger.Debug("rendering audio",
		logging.String(logging.FieldTrack, track.String()),
		logging.String("adjustment", data.Key()),
		logging.String("dest", dest),
	)
	if _, err := r.run(ctx, r.binary, args...); err != nil {
		return fmt.Errorf("ffmpeg render: %w", err)
	}
	return nil
}

func (r *AudioRenderer) args(track media.Track, data adjust.Data, dest string) ([]string, error) {
	switch d := data.(type) {
	case adjust.Drift:
		return r.tempoArgs(track, d.Multiplier, dest), nil
	case adjust.Stretch:
		return r.tempoArgs(track, d.Multiplier, dest), nil
	case adjust.CutPlan:
		if offset, ok := d.OptionalOffset(); ok {
			return r.offsetArgs(track, offset.Seconds(), dest), nil
		}
		return r.cutArgs(track, d.Cuts, dest), nil
	default:
		return nil, fmt.Errorf("render audio: unsupported adjustment %T", data)
	}
}

func (r *AudioRenderer) tempoArgs(track media.Track, m ratio.Multiplier, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", track.Path,
		"-map", fmt.Sprintf("0:%d", track.Stream),
		"-vn",
		"-sn",
		"-dn",
		"-af", tempoChain(m.SpeedFloat()),
		"-c:a", r.opts.Codec,
		dest,
	}
}

// offsetArgs re-times the stream at container level without decoding: a
// positive offset delays it, a negative one drops the leading audio.
func (r *AudioRenderer) offsetArgs(track media.Track, offset float64, dest string) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	switch {
	case offset > 0:
		args = append(args, "-itsoffset", formatFloat(offset))
	case offset < 0:
		args = append(args, "-ss", formatFloat(-offset))
	}
	return append(args,
		"-i", track.Path,
		"-map", fmt.Sprintf("0:%d", track.Stream),
		"-vn",
		"-sn",
		"-dn",
		"-c", "copy",
		dest,
	)
}

func (r *AudioRenderer) cutArgs(track media.Track, plan cuts.Cuts, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", track.Path,
		"-filter_complex", r.cutGraph(track, plan),
		"-map", "[out]",
		"-c:a", r.opts.Codec,
		dest,
	}
}

// cutGraph trims every cut out of the input, generates silence for every
// gap and concatenates the pieces in target order.
func (r *AudioRenderer) cutGraph(track media.Track, plan cuts.Cuts) string {
	rate := track.SampleRate
	if rate <= 0 {
		rate = r.opts.SampleRate
	}
	layout := channelLayout(track.Channels, r.opts.Layout)

	var (
		chains []string
		labels strings.Builder
	)
	for i, part := range plan.Parts() {
		label := fmt.Sprintf("[p%d]", i)
		labels.WriteString(label)
		switch p := part.(type) {
		case cuts.Cut:
			trim := "atrim=start=" + seconds(p.Source.Start)
			if !p.Unbounded() {
				trim += ":end=" + seconds(p.Source.End)
			}
			chains = append(chains, fmt.Sprintf("[0:%d]%s,asetpts=PTS-STARTPTS,aresample=%d%s", track.Stream, trim, rate, label))
		case cuts.Empty:
			chains = append(chains, fmt.Sprintf("anullsrc=r=%d:cl=%s,atrim=duration=%s%s", rate, layout, seconds(p.Duration), label))
		}
	}
	n := len(chains)
	chains = append(chains, fmt.Sprintf("%sconcat=n=%d:v=0:a=1[out]", labels.String(), n))
	return strings.Join(chains, ";")
}

// tempoChain splits speed into atempo stages within the filter's range.
func tempoChain(speed float64) string {
	var stages []string
	for speed > maxTempo {
		stages = append(stages, "atempo="+formatFloat(maxTempo))
		speed /= maxTempo
	}
	for speed < minTempo {
		stages = append(stages, "atempo="+formatFloat(minTempo))
		speed /= minTempo
	}
	stages = append(stages, "atempo="+formatFloat(speed))
	return strings.Join(stages, ",")
}

func channelLayout(channels int, fallback string) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	case 6:
		return "5.1"
	case 8:
		return "7.1"
	}
	return fallback
}

// Open implements adjust.Renderer. The rendered file holds a single audio
// stream that inherits the metadata of like.
func (r *AudioRenderer) Open(ctx context.Context, path string, like media.Track) (media.Track, error) {
	out := like
	out.Path = path
	out.Stream = 0
	out.Codec = r.opts.Codec
	if r.prober == nil {
		return out, nil
	}
	probe, err := r.prober.Inspect(ctx, path)
	if err != nil {
		return media.Track{}, fmt.Errorf("probe rendered audio: %w", err)
	}
	file := media.NewInputFile(path, nil, probe)
	audio := file.TracksOf(media.Audio)
	if len(audio) == 0 {
		return media.Track{}, fmt.Errorf("probe rendered audio %s: no audio stream", path)
	}
	got := audio[0]
	got.Language = like.Language
	got.Title = like.Title
	return got, nil
}
