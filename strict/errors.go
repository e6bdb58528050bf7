package strict

import (
	"errors"
	"fmt"
)

// Kind classifies a ValidationError.
type Kind int

const (
	MultipleTracks Kind = iota + 1
	MultipleChannels
	MalformedEvent
)

var (
	ErrMultipleTracks   = errors.New("more than one track has notes")
	ErrMultipleChannels = errors.New("notes on more than one channel")
	ErrMalformedEvent   = errors.New("malformed event")
)

func (k Kind) String() string {
	switch k {
	case MultipleTracks:
		return "MultipleTracks"
	case MultipleChannels:
		return "MultipleChannels"
	case MalformedEvent:
		return "MalformedEvent"
	}
	return "Unknown"
}

func (k Kind) sentinel() error {
	switch k {
	case MultipleTracks:
		return ErrMultipleTracks
	case MultipleChannels:
		return ErrMultipleChannels
	}
	return ErrMalformedEvent
}

// ValidationError is returned when a payload is not a strict single-track,
// single-channel payload. Track and Tick locate the offending event when it
// applies; errors.Is matches the ErrXXX sentinel of the Kind.
type ValidationError struct {
	Kind   Kind
	Track  int
	Tick   int64
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Kind.sentinel())
	}
	return fmt.Sprintf("%v: %v (track %d, tick %d): %s", e.Kind, e.Kind.sentinel(), e.Track, e.Tick, e.Detail)
}

func (e *ValidationError) Is(target error) bool { return target == e.Kind.sentinel() }

func malformed(track int, tick int64, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: MalformedEvent, Track: track, Tick: tick, Detail: fmt.Sprintf(format, args...)}
}
