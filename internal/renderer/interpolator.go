package renderer

import "sort"

// Stop pins a value at a point of scroll progress.
type Stop struct {
	At    float64 `yaml:"at"`    // Progress in [0,1]
	Value float64 `yaml:"value"` // Value at that progress
}

// Ramp maps scroll progress to a value by interpolating between stops.
// Before the first stop the first value holds, after the last stop the last
// value holds. Stops need not be sorted.
func Ramp(stops []Stop, progress float64) float64 {
	return ramp(stops, progress, nil)
}

// EasedRamp is Ramp with smooth in-out easing inside each segment.
func EasedRamp(stops []Stop, progress float64) float64 {
	return ramp(stops, progress, easeInOutCubic)
}

func ramp(stops []Stop, progress float64, ease func(float64) float64) float64 {
	if len(stops) == 0 {
		return 0
	}
	sorted := stops
	if !sort.SliceIsSorted(stops, func(i, j int) bool { return stops[i].At < stops[j].At }) {
		sorted = make([]Stop, len(stops))
		copy(sorted, stops)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	}

	if progress <= sorted[0].At {
		return sorted[0].Value
	}
	last := sorted[len(sorted)-1]
	if progress >= last.At {
		return last.Value
	}

	// Find surrounding stops
	var prev, next Stop
	for i := 0; i < len(sorted)-1; i++ {
		if progress >= sorted[i].At && progress < sorted[i+1].At {
			prev, next = sorted[i], sorted[i+1]
			break
		}
	}

	span := next.At - prev.At
	if span == 0 {
		return next.Value
	}
	t := (progress - prev.At) / span
	if ease != nil {
		t = ease(t)
	}
	return lerp(prev.Value, next.Value, t)
}

// FadeWindow is the four-stop fade in / hold / fade out timeline used for a
// band of the track: zero outside [start, end], one inside, with linear edges
// of width edge.
func FadeWindow(start, end, edge float64) []Stop {
	return []Stop{
		{At: start, Value: 0},
		{At: start + edge, Value: 1},
		{At: end - edge, Value: 1},
		{At: end, Value: 0},
	}
}

// Window is a FadeWindow band as it appears in manifests, peaking at Amount.
type Window struct {
	Start  float64 `yaml:"start"`
	End    float64 `yaml:"end"`
	Edge   float64 `yaml:"edge"`
	Amount float64 `yaml:"amount"`
}

// Stops expands the window into ramp stops scaled by Amount.
func (w Window) Stops() []Stop {
	stops := FadeWindow(w.Start, w.End, w.Edge)
	for i := range stops {
		stops[i].Value *= w.Amount
	}
	return stops
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// easeInOutCubic applies smooth easing function
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
