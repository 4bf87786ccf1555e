package sequencer

import "math"

// ComputeFrame maps a scroll offset within a track of trackLength to a frame
// index in [0, frameCount-1]:
//
//	clamp(round(scrollOffset/trackLength * (frameCount-1)), 0, frameCount-1)
//
// A non-positive track or frame count yields 0. Offsets outside the track
// clamp to the first or last frame. The mapping is monotonic in scrollOffset.
func ComputeFrame(scrollOffset, trackLength float64, frameCount int) int {
	if trackLength <= 0 || frameCount <= 0 || math.IsNaN(scrollOffset) {
		return 0
	}
	last := frameCount - 1
	progress := Progress(scrollOffset, trackLength)
	idx := int(math.Round(progress * float64(last)))
	if idx < 0 {
		return 0
	}
	if idx > last {
		return last
	}
	return idx
}

// Progress normalises a scroll offset to [0,1] within the track.
func Progress(scrollOffset, trackLength float64) float64 {
	if trackLength <= 0 || math.IsNaN(scrollOffset) {
		return 0
	}
	p := scrollOffset / trackLength
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
