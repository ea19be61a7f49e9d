package reservation

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrStartInPast     = errors.New("start time cannot be in the past")
)

// TimeSlot is the half-open interval [start, start+duration). Two slots
// that merely touch at an endpoint do not overlap.
type TimeSlot struct {
	start         time.Time
	durationHours float64
}

func NewTimeSlot(start time.Time, durationHours float64) (TimeSlot, error) {
	if durationHours <= 0 {
		return TimeSlot{}, ErrInvalidDuration
	}
	return TimeSlot{
		start:         start,
		durationHours: durationHours,
	}, nil
}

func (ts TimeSlot) Start() time.Time {
	return ts.start
}

func (ts TimeSlot) DurationHours() float64 {
	return ts.durationHours
}

func (ts TimeSlot) Duration() time.Duration {
	return time.Duration(ts.durationHours * float64(time.Hour))
}

func (ts TimeSlot) End() time.Time {
	return ts.start.Add(ts.Duration())
}

func (ts TimeSlot) Overlaps(other TimeSlot) bool {
	return ts.start.Before(other.End()) && ts.End().After(other.start)
}

// ValidateNotPast rejects slots starting at or before now. Availability is
// always evaluated against a caller-supplied clock so the check stays pure.
func (ts TimeSlot) ValidateNotPast(now time.Time) error {
	if !ts.start.After(now) {
		return ErrStartInPast
	}
	return nil
}

func (ts TimeSlot) ToTstzrange() string {
	return fmt.Sprintf("[%s,%s)", ts.start.Format(time.RFC3339), ts.End().Format(time.RFC3339))
}

type Money struct {
	cents int64
}

func NewMoney(cents int64) Money {
	return Money{cents: cents}
}

func NewNonNegativeMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{cents: cents}, nil
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

func (m Money) IsNegative() bool {
	return m.cents < 0
}

func (m Money) LessThan(other Money) bool {
	return m.cents < other.cents
}

type Note struct {
	value string
}

func NewNote(value string) Note {
	return Note{value: value}
}

func (n Note) String() string {
	return n.value
}

func (n Note) IsEmpty() bool {
	return n.value == ""
}
