// file: service/expiry.go

package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DurationUnit is the unit of a token lifetime.
type DurationUnit int

const (
	unitUnset DurationUnit = iota
	Minute
	Hour
	Day
)

func (u DurationUnit) String() string {
	switch u {
	case Minute:
		return "m"
	case Hour:
		return "h"
	case Day:
		return "d"
	}
	return fmt.Sprintf("DurationUnit(%d)", int(u))
}

// Duration is a token lifetime such as 10 minutes or 7 days.
// The zero value means "unspecified" and resolves to DefaultDuration.
type Duration struct {
	Magnitude int
	Unit      DurationUnit
}

// DefaultDuration is used when no lifetime is given.
var DefaultDuration = Duration{Magnitude: 1, Unit: Hour}

var ErrInvalidDuration = errors.New("invalid token duration")

func Minutes(n int) Duration { return Duration{Magnitude: n, Unit: Minute} }
func Hours(n int) Duration   { return Duration{Magnitude: n, Unit: Hour} }
func Days(n int) Duration    { return Duration{Magnitude: n, Unit: Day} }

func (d Duration) String() string {
	return strconv.Itoa(d.Magnitude) + d.Unit.String()
}

// Std converts d into a time.Duration. Unknown units, magnitudes below one and
// lifetimes that do not fit a time.Duration are rejected.
func (d Duration) Std() (time.Duration, error) {
	if d == (Duration{}) {
		d = DefaultDuration
	}
	if d.Magnitude < 1 {
		return 0, fmt.Errorf("%w: magnitude must be positive, got %d", ErrInvalidDuration, d.Magnitude)
	}
	var unit time.Duration
	switch d.Unit {
	case Minute:
		unit = time.Minute
	case Hour:
		unit = time.Hour
	case Day:
		unit = 24 * time.Hour
	default:
		return 0, fmt.Errorf("%w: unknown unit %d", ErrInvalidDuration, int(d.Unit))
	}
	if int64(d.Magnitude) > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("%w: %s is too long", ErrInvalidDuration, d)
	}
	return time.Duration(d.Magnitude) * unit, nil
}

// ExpiresAt returns the absolute instant at which a token issued at now with lifetime d dies.
func ExpiresAt(d Duration, now time.Time) (time.Time, error) {
	std, err := d.Std()
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(std), nil
}

// ParseDuration reads the configuration form "10m", "1h" or "7d".
// An empty string yields the zero Duration.
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Duration{}, nil
	}
	if len(s) < 2 {
		return Duration{}, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	var unit DurationUnit
	switch s[len(s)-1] {
	case 'm':
		unit = Minute
	case 'h':
		unit = Hour
	case 'd':
		unit = Day
	default:
		return Duration{}, fmt.Errorf("%w: unknown unit in %q", ErrInvalidDuration, s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return Duration{}, fmt.Errorf("%w: bad magnitude in %q", ErrInvalidDuration, s)
	}
	d := Duration{Magnitude: n, Unit: unit}
	if _, err := d.Std(); err != nil {
		return Duration{}, err
	}
	return d, nil
}
