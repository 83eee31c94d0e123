package align

import (
	"fmt"
	"strings"
	"time"

	"trackalign/internal/ratio"
)

// Mode selects how much correction is computed.
type Mode string

const (
	// ModeNone leaves tracks untouched.
	ModeNone Mode = "none"
	// ModeDrift corrects a framerate difference.
	ModeDrift Mode = "drift"
	// ModeStretch corrects a measured duration difference.
	ModeStretch Mode = "stretch"
	// ModeFull corrects drift and then cuts from scene alignment.
	ModeFull Mode = "full"
)

// Modes lists every mode.
func Modes() []Mode {
	return []Mode{ModeNone, ModeDrift, ModeStretch, ModeFull}
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(value string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(value)))
	for _, m := range Modes() {
		if m == mode {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown alignment mode %q", value)
}

// strategies returns the ratio detection order for mode.
func (m Mode) strategies(maxError time.Duration) []ratio.Strategy {
	switch m {
	case ModeNone:
		return []ratio.Strategy{ratio.None{}}
	case ModeStretch:
		return []ratio.Strategy{ratio.ByDuration{}}
	default:
		return []ratio.Strategy{
			ratio.ByFramerate{KnownOnly: true},
			ratio.ByDuration{KnownOnly: true, MaxError: maxError},
		}
	}
}
