// Package track models the scroll geometry of a sticky container: the
// sequence plays while the container's top edge travels from the viewport
// top until its bottom edge meets the viewport bottom.
package track

import "github.com/ivlev/scrollseq/internal/sequencer"

type Track struct {
	ContainerHeight float64
	ViewportHeight  float64
	ContainerTop    float64 // page offset of the container's top edge
}

// Length is the scroll distance over which the sequence plays. It is zero
// when the container does not exceed the viewport.
func (t Track) Length() float64 {
	l := t.ContainerHeight - t.ViewportHeight
	if l < 0 {
		return 0
	}
	return l
}

// Offset converts a page scroll position into an offset within the track.
func (t Track) Offset(scrollY float64) float64 {
	return scrollY - t.ContainerTop
}

// Progress is the normalised position in [0,1] for a page scroll position.
func (t Track) Progress(scrollY float64) float64 {
	return sequencer.Progress(t.Offset(scrollY), t.Length())
}

// Frame is the frame index shown at a page scroll position.
func (t Track) Frame(scrollY float64, frameCount int) int {
	return sequencer.ComputeFrame(t.Offset(scrollY), t.Length(), frameCount)
}

// Clamp limits a page scroll position to the track.
func (t Track) Clamp(scrollY float64) float64 {
	if scrollY < t.ContainerTop {
		return t.ContainerTop
	}
	if end := t.ContainerTop + t.Length(); scrollY > end {
		return end
	}
	return scrollY
}

// Steps returns n evenly spaced track offsets from 0 to Length inclusive.
func (t Track) Steps(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{0}
	}
	l := t.Length()
	out := make([]float64, n)
	for i := range out {
		out[i] = l * float64(i) / float64(n-1)
	}
	return out
}
