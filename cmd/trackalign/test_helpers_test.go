package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ffprobeStub answers by file name: .srt files hold one English subtitle
// stream, rendered .mka files one audio stream, "target*" a 23.976 fps
// release, "nodur*" a file without duration and anything else a 25 fps
// release with English and French audio.
const ffprobeStub = `#!/bin/sh
for last; do :; done
case "$(basename "$last")" in
*.srt)
  echo '{"streams":[{"index":0,"codec_name":"subrip","codec_type":"subtitle","tags":{"language":"eng"}}],"format":{"duration":"959.000"}}'
  ;;
*.mka)
  echo '{"streams":[{"index":0,"codec_name":"flac","codec_type":"audio","sample_rate":"48000","channels":6}],"format":{"duration":"1000.000"}}'
  ;;
target*)
  echo '{"streams":[{"index":0,"codec_name":"h264","codec_type":"video","avg_frame_rate":"24000/1001"},{"index":1,"codec_name":"ac3","codec_type":"audio","sample_rate":"48000","channels":6,"tags":{"language":"eng"}}],"format":{"duration":"1000.000"}}'
  ;;
nodur*)
  echo '{"streams":[{"index":0,"codec_name":"h264","codec_type":"video"}],"format":{}}'
  ;;
*)
  echo '{"streams":[{"index":0,"codec_name":"h264","codec_type":"video","avg_frame_rate":"25/1"},{"index":1,"codec_name":"ac3","codec_type":"audio","sample_rate":"48000","channels":6,"tags":{"language":"eng"}},{"index":2,"codec_name":"ac3","codec_type":"audio","sample_rate":"48000","channels":2,"tags":{"language":"fre"}}],"format":{"duration":"959.000"}}'
  ;;
esac
`

// ffmpegStub writes a placeholder to its output argument.
const ffmpegStub = `#!/bin/sh
for last; do :; done
printf 'rendered' > "$last"
`

type cliTestEnv struct {
	base       string
	configPath string
	workDir    string
	cacheDir   string
	outputDir  string
	mediaDir   string
	ffmpeg     string
	ffprobe    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "xdg-cache"))
	t.Setenv("TRACKALIGN_FFMPEG", "")
	t.Setenv("TRACKALIGN_FFPROBE", "")

	env := &cliTestEnv{
		base:       base,
		configPath: filepath.Join(base, "config.toml"),
		workDir:    filepath.Join(base, "work"),
		cacheDir:   filepath.Join(base, "cache"),
		outputDir:  filepath.Join(base, "output"),
		mediaDir:   filepath.Join(base, "media"),
		ffmpeg:     writeScript(t, filepath.Join(base, "bin", "ffmpeg"), ffmpegStub),
		ffprobe:    writeScript(t, filepath.Join(base, "bin", "ffprobe"), ffprobeStub),
	}
	if err := os.MkdirAll(env.mediaDir, 0o755); err != nil {
		t.Fatalf("mkdir media: %v", err)
	}
	env.writeConfig(t, env.ffmpeg)
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T, ffmpegBinary string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
work_dir = %q
cache_dir = %q
output_dir = %q
log_dir = %q

[alignment]
mode = "stretch"

[ffmpeg]
ffmpeg_binary = %q
ffprobe_binary = %q

[logging]
format = "json"
level = "error"
`, e.workDir, e.cacheDir, e.outputDir, filepath.Join(e.base, "logs"), ffmpegBinary, e.ffprobe)
	if err := os.WriteFile(e.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// mediaFile creates a placeholder media file; its streams come from ffprobeStub.
func (e *cliTestEnv) mediaFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.mediaDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write media file: %v", err)
	}
	return path
}

func writeScript(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n%s", needle, haystack)
	}
}
