package workspace

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"trackalign/internal/config"
)

// Check reports the outcome of a single preflight check.
type Check struct {
	Name   string
	Passed bool
	Detail string
}

// Preflight verifies the directories and binaries a run needs.
func Preflight(cfg *config.Config) []Check {
	if cfg == nil {
		return nil
	}
	return []Check{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckBinary("FFmpeg", cfg.FFmpeg.FFmpegBinary),
		CheckBinary("FFprobe", cfg.FFmpeg.FFprobeBinary),
	}
}

// Failed returns the checks that did not pass.
func Failed(checks []Check) []Check {
	var out []Check
	for _, c := range checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Check {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Check{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Check{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Check{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Check{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Check{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBinary verifies that command resolves on PATH.
func CheckBinary(name, command string) Check {
	command = strings.TrimSpace(command)
	if command == "" {
		return Check{Name: name, Detail: "command not configured"}
	}
	resolved, err := exec.LookPath(command)
	if err != nil {
		return Check{Name: name, Detail: fmt.Sprintf("binary %q not found", command)}
	}
	return Check{Name: name, Passed: true, Detail: resolved}
}
