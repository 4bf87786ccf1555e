package track

import "testing"

func TestLength(t *testing.T) {
	tests := []struct {
		tr       Track
		expected float64
	}{
		{Track{ContainerHeight: 4000, ViewportHeight: 1000}, 3000},
		{Track{ContainerHeight: 800, ViewportHeight: 1000}, 0},
		{Track{}, 0},
	}
	for _, tt := range tests {
		if got := tt.tr.Length(); got != tt.expected {
			t.Errorf("%+v: expected %v, got %v", tt.tr, tt.expected, got)
		}
	}
}

func TestProgressAndFrame(t *testing.T) {
	tr := Track{ContainerHeight: 2000, ViewportHeight: 1000, ContainerTop: 500}

	tests := []struct {
		scrollY  float64
		progress float64
		frame    int
	}{
		{0, 0, 0},      // above the container
		{500, 0, 0},    // container top at viewport top
		{1000, 0.5, 5}, // halfway
		{1500, 1, 9},   // container bottom at viewport bottom
		{9000, 1, 9},   // below
	}

	for _, tt := range tests {
		if got := tr.Progress(tt.scrollY); got != tt.progress {
			t.Errorf("scrollY %v: expected progress %v, got %v", tt.scrollY, tt.progress, got)
		}
		if got := tr.Frame(tt.scrollY, 10); got != tt.frame {
			t.Errorf("scrollY %v: expected frame %d, got %d", tt.scrollY, tt.frame, got)
		}
	}

	if tr.Clamp(0) != 500 || tr.Clamp(2000) != 1500 || tr.Clamp(700) != 700 {
		t.Error("Clamp out of track bounds")
	}
}

func TestSteps(t *testing.T) {
	tr := Track{ContainerHeight: 1100, ViewportHeight: 100}

	steps := tr.Steps(5)
	want := []float64{0, 250, 500, 750, 1000}
	if len(steps) != len(want) {
		t.Fatalf("Expected %d steps, got %d", len(want), len(steps))
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("Step %d: expected %v, got %v", i, want[i], steps[i])
		}
	}

	if tr.Steps(0) != nil {
		t.Error("Expected nil for zero steps")
	}
	if s := tr.Steps(1); len(s) != 1 || s[0] != 0 {
		t.Errorf("Expected [0], got %v", s)
	}
}
