// Package config loads, normalizes, and validates trackalign configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts and XDG_CACHE_HOME), and reads TOML files. The Config type
// centralizes every knob the CLI needs: workspace directories, black-frame
// detector thresholds, alignment acceptance levels, render settings and the
// ffmpeg binaries to drive.
//
// Core packages never import this package; the CLI translates Config into
// the plain option structs each component accepts.
package config
