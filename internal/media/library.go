package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"trackalign/internal/media/ffprobe"
)

// Prober inspects a media file.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// FFprobe runs the ffprobe binary.
type FFprobe struct {
	Binary string
}

// Inspect implements Prober.
func (p FFprobe) Inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	return ffprobe.Inspect(ctx, p.Binary, path)
}

// Library probes files once and memoizes the results.
type Library struct {
	prober Prober
	mu     sync.Mutex
	files  map[string]*InputFile
}

// NewLibrary returns a library backed by prober.
func NewLibrary(prober Prober) *Library {
	return &Library{prober: prober, files: make(map[string]*InputFile)}
}

// Open returns the InputFile for path, probing it on first use.
func (l *Library) Open(ctx context.Context, path string) (*InputFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("open media: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if f, ok := l.files[abs]; ok {
		return f, nil
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat media: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("open media %q: not a regular file", abs)
	}
	probe, err := l.prober.Inspect(ctx, abs)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", filepath.Base(abs), err)
	}
	f := NewInputFile(abs, info, probe)
	l.files[abs] = f
	return f, nil
}

// Forget drops the memoized entry for path so the next Open probes again.
func (l *Library) Forget(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	l.mu.Lock()
	delete(l.files, abs)
	l.mu.Unlock()
}
