package sequencer

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"
)

func TestCoalescerLatestWins(t *testing.T) {
	seq := loadReady(t, 10)
	seq.Resize(20, 20)
	base := seq.Paints()

	var c Coalescer
	for offset := 0.0; offset <= 1000; offset += 10 {
		c.PostScroll(offset, 1000)
	}
	if !c.Flush(seq) {
		t.Fatal("Expected pending events")
	}
	if seq.Paints() != base+1 {
		t.Errorf("Expected a single paint for a burst, got %d", seq.Paints()-base)
	}
	if seq.LastRendered() != 9 {
		t.Errorf("Expected the latest offset to win, got frame %d", seq.LastRendered())
	}

	if c.Flush(seq) {
		t.Error("Second flush must find nothing pending")
	}
}

func TestCoalescerScrollAndResizePaintOnce(t *testing.T) {
	seq := loadReady(t, 10)
	seq.Resize(20, 20)
	base := seq.Paints()

	var c Coalescer
	c.PostScroll(500, 1000)
	c.PostResize(40, 30)
	c.Flush(seq)

	if seq.Paints() != base+1 {
		t.Errorf("Expected 1 paint, got %d", seq.Paints()-base)
	}
	if seq.LastRendered() != 5 {
		t.Errorf("Expected frame 5, got %d", seq.LastRendered())
	}
	if w, h := seq.Surface().Size(); w != 40 || h != 30 {
		t.Errorf("Surface is %dx%d", w, h)
	}
}

func TestPlayerRendersLatestScroll(t *testing.T) {
	seq := New(&fakeFetcher{delays: map[string]time.Duration{"mem://3x10": 20 * time.Millisecond}}, Options{})
	p := NewPlayer(seq, 2*time.Millisecond)

	var states []LoadState
	p.OnState = func(st LoadState) {
		states = append(states, st)
		if st == Ready {
			go func() {
				time.Sleep(20 * time.Millisecond)
				p.Stop()
			}()
		}
	}

	p.PostResize(32, 18)
	for offset := 0.0; offset <= 1000; offset += 1 {
		p.PostScroll(offset, 1000)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Run(ctx, memURLs(10)); err != nil {
		t.Fatalf("Run returned %v", err)
	}

	if len(states) != 2 || states[0] != Loading || states[1] != Ready {
		t.Errorf("Unexpected states %v", states)
	}
	if seq.LastRendered() != -1 {
		t.Error("Sequencer must be closed after Run")
	}
	if seq.Current() != 9 {
		t.Errorf("Expected current frame 9, got %d", seq.Current())
	}
	if seq.Paints() != 1 {
		t.Errorf("Expected a single throttled paint, got %d", seq.Paints())
	}
	if seq.State() != Unmounted {
		t.Errorf("Expected Unmounted after Run, got %s", seq.State())
	}
}

func TestPlayerStopsOnContext(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	seq := New(&fakeFetcher{gate: gate}, Options{})
	p := NewPlayer(seq, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := p.Run(ctx, memURLs(3))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline error, got %v", err)
	}
	if seq.State() != Unmounted {
		t.Errorf("Expected Unmounted, got %s", seq.State())
	}
}

func TestPlayerStopAppliesPendingScroll(t *testing.T) {
	var painted []int
	seq := New(&fakeFetcher{}, Options{
		AfterPaint: func(_ *image.RGBA, index, _ int) { painted = append(painted, index) },
	})
	// тик не наступит до конца теста
	p := NewPlayer(seq, time.Hour)
	p.OnState = func(st LoadState) {
		if st.Terminal() {
			p.PostScroll(1000, 1000)
			p.Stop()
		}
	}
	p.PostResize(8, 8)

	if err := p.Run(context.Background(), memURLs(10)); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if len(painted) != 2 || painted[0] != 0 || painted[1] != 9 {
		t.Errorf("Expected frame 0 on Ready then frame 9 on Stop, got %v", painted)
	}
}
