package sequencer

import (
	"fmt"
	"strings"
)

// LoadState is the lifecycle of a frame sequence.
type LoadState int

const (
	Unmounted LoadState = iota
	Loading
	Ready
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Unmounted:
		return "unmounted"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("LoadState(%d)", int(s))
}

// Terminal reports whether no further transition can happen.
func (s LoadState) Terminal() bool {
	return s == Ready || s == Failed
}

// FailurePolicy decides what a single failed frame does to the sequence.
type FailurePolicy int

const (
	// FailStrict fails the whole sequence on the first bad frame.
	FailStrict FailurePolicy = iota
	// FailPlaceholder substitutes a flat placeholder frame and keeps going.
	FailPlaceholder
)

func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return FailStrict, nil
	case "placeholder":
		return FailPlaceholder, nil
	default:
		return FailStrict, fmt.Errorf("unknown failure policy: %s", s)
	}
}

func (p FailurePolicy) String() string {
	if p == FailPlaceholder {
		return "placeholder"
	}
	return "strict"
}
