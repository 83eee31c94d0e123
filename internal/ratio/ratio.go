package ratio

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places kept by every multiplier.
const Precision = 3

// ErrInvalidMultiplier reports a non-positive multiplier (after rounding).
var ErrInvalidMultiplier = errors.New("multiplier must be positive")

var one = decimal.NewFromInt(1)

// Multiplier is a fixed-point speed/duration pair. The two values are
// multiplicative inverses of each other, each rounded half-up to Precision
// decimal places. Applying a multiplier to a track plays it Speed times as
// fast, which makes every timestamp Duration times as large.
type Multiplier struct {
	speed    decimal.Decimal
	duration decimal.Decimal
}

// Identity leaves timestamps untouched.
var Identity = Multiplier{speed: one, duration: one}

// OfSpeedMultiplier builds a multiplier from a playback speed factor.
func OfSpeedMultiplier(speed decimal.Decimal) (Multiplier, error) {
	speed = speed.Round(Precision)
	if !speed.IsPositive() {
		return Multiplier{}, fmt.Errorf("%w: speed %s", ErrInvalidMultiplier, speed)
	}
	duration := one.DivRound(speed, Precision)
	if !duration.IsPositive() {
		return Multiplier{}, fmt.Errorf("%w: duration for speed %s", ErrInvalidMultiplier, speed)
	}
	return Multiplier{speed: speed, duration: duration}, nil
}

// OfDurationMultiplier builds a multiplier from a timestamp scale factor.
func OfDurationMultiplier(duration decimal.Decimal) (Multiplier, error) {
	duration = duration.Round(Precision)
	if !duration.IsPositive() {
		return Multiplier{}, fmt.Errorf("%w: duration %s", ErrInvalidMultiplier, duration)
	}
	speed := one.DivRound(duration, Precision)
	if !speed.IsPositive() {
		return Multiplier{}, fmt.Errorf("%w: speed for duration %s", ErrInvalidMultiplier, duration)
	}
	return Multiplier{speed: speed, duration: duration}, nil
}

// FromSpeed is OfSpeedMultiplier for float input.
func FromSpeed(speed float64) (Multiplier, error) {
	return OfSpeedMultiplier(decimal.NewFromFloat(speed))
}

// FromDuration is OfDurationMultiplier for float input.
func FromDuration(duration float64) (Multiplier, error) {
	return OfDurationMultiplier(decimal.NewFromFloat(duration))
}

// ParseSpeed parses a decimal speed multiplier such as "1.043".
func ParseSpeed(value string) (Multiplier, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Multiplier{}, fmt.Errorf("parse speed multiplier %q: %w", value, err)
	}
	return OfSpeedMultiplier(d)
}

// Speed returns the playback speed factor.
func (m Multiplier) Speed() decimal.Decimal { return m.normalized().speed }

// Duration returns the timestamp scale factor.
func (m Multiplier) Duration() decimal.Decimal { return m.normalized().duration }

// SpeedFloat returns Speed as a float64.
func (m Multiplier) SpeedFloat() float64 { return m.Speed().InexactFloat64() }

// DurationFloat returns Duration as a float64.
func (m Multiplier) DurationFloat() float64 { return m.Duration().InexactFloat64() }

// Equal compares multipliers by speed only.
func (m Multiplier) Equal(other Multiplier) bool {
	return m.Speed().Equal(other.Speed())
}

// IsIdentity reports whether the multiplier leaves timestamps unchanged.
func (m Multiplier) IsIdentity() bool {
	return m.Equal(Identity)
}

// ScaleDuration maps a timestamp through the multiplier.
func (m Multiplier) ScaleDuration(d time.Duration) time.Duration {
	return time.Duration(decimal.NewFromInt(int64(d)).Mul(m.Duration()).Round(0).IntPart())
}

// String renders the speed factor, e.g. "x1.043".
func (m Multiplier) String() string {
	return "x" + m.Speed().StringFixed(Precision)
}

// normalized maps the zero value to Identity so an unset multiplier is safe.
func (m Multiplier) normalized() Multiplier {
	if m.speed.IsZero() || m.duration.IsZero() {
		return Identity
	}
	return m
}

// LinearDrift compensates differing source framerates.
type LinearDrift struct {
	Multiplier
}

// StretchFactor compensates a differing overall duration.
type StretchFactor struct {
	Multiplier
}
