package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"trackalign/internal/language"
	"trackalign/internal/media/ffprobe"
)

// Kind classifies tracks.
type Kind int

const (
	Video Kind = iota
	Audio
	Subtitle
)

func (k Kind) String() string {
	switch k {
	case Video:
		return "video"
	case Audio:
		return "audio"
	case Subtitle:
		return "subtitle"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Track is one stream of a file on disk.
type Track struct {
	Path string
	// Stream is the stream index inside Path. Standalone track files use 0.
	Stream   int
	Kind     Kind
	Codec    string
	Language string // ISO 639-2, "und" when unknown
	Title    string
	Channels int
	// SampleRate is the audio sample rate in Hz, 0 when unknown.
	SampleRate int
	Duration   time.Duration
}

func (t Track) String() string {
	return fmt.Sprintf("%s#%d (%s, %s)", filepath.Base(t.Path), t.Stream, t.Kind, t.Language)
}

// Standalone reports whether the track is the only stream of its file.
func (t Track) Standalone() bool {
	return t.Stream == 0 && t.Kind != Video
}

// InputFile is a probed media container.
type InputFile struct {
	Path    string
	Size    int64
	ModTime time.Time
	Tracks  []Track

	duration  time.Duration
	framerate float64
}

// NewInputFile builds an InputFile from ffprobe output.
func NewInputFile(path string, info os.FileInfo, probe ffprobe.Result) *InputFile {
	f := &InputFile{Path: path, duration: probe.Duration()}
	if info != nil {
		f.Size = info.Size()
		f.ModTime = info.ModTime()
	}
	if rate, ok := probe.VideoFramerate(); ok {
		f.framerate = rate
	}
	for _, stream := range probe.Streams {
		kind, ok := streamKind(stream.CodecType)
		if !ok {
			continue
		}
		f.Tracks = append(f.Tracks, Track{
			Path:       path,
			Stream:     stream.Index,
			Kind:       kind,
			Codec:      stream.CodecName,
			Language:   language.FromTags(stream.Tags),
			Title:      strings.TrimSpace(stream.Tags["title"]),
			Channels:   stream.Channels,
			SampleRate: sampleRate(stream.SampleRate),
			Duration:   f.duration,
		})
	}
	return f
}

func sampleRate(value string) int {
	rate, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || rate < 0 {
		return 0
	}
	return rate
}

func streamKind(codecType string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(codecType)) {
	case "video":
		return Video, true
	case "audio":
		return Audio, true
	case "subtitle":
		return Subtitle, true
	}
	return 0, false
}

// Duration returns the container duration, or 0 when unknown.
func (f *InputFile) Duration() time.Duration {
	return f.duration
}

// Framerate returns the video frame rate when the file has video.
func (f *InputFile) Framerate() (float64, bool) {
	return f.framerate, f.framerate > 0
}

// VideoTrack returns the first video track.
func (f *InputFile) VideoTrack() (Track, bool) {
	for _, t := range f.Tracks {
		if t.Kind == Video {
			return t, true
		}
	}
	return Track{}, false
}

// TracksOf returns the tracks of kind k in stream order.
func (f *InputFile) TracksOf(k Kind) []Track {
	var out []Track
	for _, t := range f.Tracks {
		if t.Kind == k {
			out = append(out, t)
		}
	}
	return out
}

// Identity identifies the file content for cache keys.
func (f *InputFile) Identity() string {
	return fmt.Sprintf("%s|%d|%d", f.Path, f.Size, f.ModTime.UnixNano())
}
