package timeline

import (
	"fmt"

	"trackalign/internal/span"
)

// Kind distinguishes scenes from black segments.
type Kind int

const (
	Scene Kind = iota
	Black
)

func (k Kind) String() string {
	switch k {
	case Scene:
		return "scene"
	case Black:
		return "black"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText renders the kind for JSON diagnostics.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the form written by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "scene":
		*k = Scene
	case "black":
		*k = Black
	default:
		return fmt.Errorf("unknown part kind %q", text)
	}
	return nil
}

// Part is one scene or black segment of a timeline.
type Part struct {
	Span span.Span `json:"span"`
	Kind Kind      `json:"kind"`
}

func (p Part) String() string {
	return p.Kind.String() + p.Span.String()
}

// Validate checks the timeline invariants over parts: kinds alternate, the
// first part starts at 0 and each part ends where the next begins.
func Validate(parts []Part) error {
	for i, p := range parts {
		if !p.Span.Valid() {
			return fmt.Errorf("part %d %s: %w", i, p, span.ErrInvalidSpan)
		}
		if i == 0 {
			if p.Span.Start != 0 {
				return fmt.Errorf("first part %s does not start at 0", p)
			}
			continue
		}
		prev := parts[i-1]
		if prev.Kind == p.Kind {
			return fmt.Errorf("parts %d and %d are both %s", i-1, i, p.Kind)
		}
		if prev.Span.End != p.Span.Start {
			return fmt.Errorf("gap or overlap between %s and %s", prev, p)
		}
	}
	return nil
}
