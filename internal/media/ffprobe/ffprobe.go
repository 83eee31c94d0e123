package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
	raw     []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	CodecTag   string `json:"codec_tag_string"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`

	ChannelLayout string            `json:"channel_layout"`
	RFrameRate    string            `json:"r_frame_rate"`
	AvgFrameRate  string            `json:"avg_frame_rate"`
	Tags          map[string]string `json:"tags"`
	Disposition   map[string]int    `json:"disposition"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return Parse(output)
}

// Parse decodes an ffprobe JSON payload.
func Parse(output []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	result.raw = append([]byte(nil), output...)
	return result, nil
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			count++
		}
	}
	return count
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// SubtitleStreamCount returns the number of subtitle streams discovered.
func (r Result) SubtitleStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "subtitle") {
			count++
		}
	}
	return count
}

// Duration returns the container duration, or 0 when unavailable.
func (r Result) Duration() time.Duration {
	seconds := r.DurationSeconds()
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

// VideoFramerate returns the frame rate of the first video stream. The
// average rate is preferred; the real base rate is the fallback.
func (r Result) VideoFramerate() (float64, bool) {
	for _, stream := range r.Streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		if rate, ok := ParseRate(stream.AvgFrameRate); ok {
			return rate, true
		}
		if rate, ok := ParseRate(stream.RFrameRate); ok {
			return rate, true
		}
		return 0, false
	}
	return 0, false
}

// ParseRate parses an ffprobe rate such as "24000/1001" or "25".
func ParseRate(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	num, den, found := strings.Cut(value, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	if !found {
		return n, true
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return 0, false
	}
	return n / d, true
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

// BitRate returns the container bitrate in bits per second, or 0 when unavailable.
func (r Result) BitRate() int64 {
	rate := parseFloat(r.Format.BitRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int64(rate)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
