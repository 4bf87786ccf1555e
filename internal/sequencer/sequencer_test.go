package sequencer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync/atomic"
	"testing"
	"time"
)

// fakeFetcher decodes "mem://WxH" URLs into solid images of that size.
type fakeFetcher struct {
	delays map[string]time.Duration
	fail   map[string]bool
	gate   chan struct{}
	calls  atomic.Int32
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if d := f.delays[url]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.fail[url] {
		return nil, errors.New("decode failed")
	}

	var w, h int
	if _, err := fmt.Sscanf(url, "mem://%dx%d", &w, &h); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := color.RGBA{R: uint8(w), G: uint8(h), A: 255}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img, nil
}

func memURLs(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("mem://%dx10", i+1)
	}
	return urls
}

// await drains a load stream and returns every state it produced.
func await(t *testing.T, ch <-chan LoadState) []LoadState {
	t.Helper()
	var states []LoadState
	timeout := time.After(5 * time.Second)
	for {
		select {
		case st, ok := <-ch:
			if !ok {
				return states
			}
			states = append(states, st)
		case <-timeout:
			t.Fatal("load stream did not close")
		}
	}
}

func loadReady(t *testing.T, n int) *Sequencer {
	t.Helper()
	seq := New(&fakeFetcher{}, Options{})
	states := await(t, seq.Load(context.Background(), memURLs(n)))
	if len(states) == 0 || states[len(states)-1] != Ready {
		t.Fatalf("Expected Ready, got %v", states)
	}
	return seq
}

func TestComputeFrameScenario(t *testing.T) {
	tests := []struct {
		offset, track float64
		count         int
		expected      int
	}{
		{0, 1000, 10, 0},
		{1000, 1000, 10, 9},
		{500, 1000, 10, 5},
		{-250, 1000, 10, 0},
		{5000, 1000, 10, 9},
		{500, 1000, 1, 0},
		{500, 1000, 0, 0},
		{math.Inf(1), 1000, 10, 9},
		{math.Inf(-1), 1000, 10, 0},
		{math.NaN(), 1000, 10, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v/%v/%d", tt.offset, tt.track, tt.count), func(t *testing.T) {
			if got := ComputeFrame(tt.offset, tt.track, tt.count); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestComputeFrameMonotonicAndClamped(t *testing.T) {
	for _, track := range []float64{1, 333.3, 1000, 12345} {
		for _, count := range []int{1, 2, 7, 10, 120} {
			prev := -1
			for offset := -track; offset <= 2*track; offset += track / 997 {
				got := ComputeFrame(offset, track, count)
				if got < 0 || got > count-1 {
					t.Fatalf("track=%v count=%d offset=%v: %d out of range", track, count, offset, got)
				}
				if got < prev {
					t.Fatalf("track=%v count=%d offset=%v: index went back from %d to %d", track, count, offset, prev, got)
				}
				if again := ComputeFrame(offset, track, count); again != got {
					t.Fatalf("Not idempotent: %d then %d", got, again)
				}
				prev = got
			}
		}
	}
}

func TestComputeFrameZeroTrack(t *testing.T) {
	for _, x := range []float64{-100, 0, 0.5, 42, 1e9, math.Inf(1)} {
		for _, track := range []float64{0, -10} {
			if got := ComputeFrame(x, track, 10); got != 0 {
				t.Errorf("ComputeFrame(%v, %v, 10) = %d, expected 0", x, track, got)
			}
		}
	}
}

func TestLoadPreservesOrder(t *testing.T) {
	urls := memURLs(5)
	f := &fakeFetcher{delays: map[string]time.Duration{urls[2]: 80 * time.Millisecond}}
	seq := New(f, Options{})

	states := await(t, seq.Load(context.Background(), urls))
	if len(states) != 2 || states[0] != Loading || states[1] != Ready {
		t.Fatalf("Expected [loading ready], got %v", states)
	}
	if seq.State() != Ready {
		t.Fatalf("Expected Ready, got %s", seq.State())
	}

	for i := range urls {
		img := seq.Frame(i)
		if img == nil {
			t.Fatalf("Frame %d missing", i)
		}
		if img.Bounds().Dx() != i+1 {
			t.Errorf("Frame %d: expected width %d, got %d", i, i+1, img.Bounds().Dx())
		}
	}
	if n := f.calls.Load(); n != 5 {
		t.Errorf("Expected 5 fetches, got %d", n)
	}
}

func TestLoadEmptyIsReady(t *testing.T) {
	seq := New(&fakeFetcher{}, Options{})
	states := await(t, seq.Load(context.Background(), nil))
	if len(states) != 1 || states[0] != Ready {
		t.Fatalf("Expected [ready], got %v", states)
	}

	seq.Resize(100, 100)
	seq.Scroll(50, 100)
	if seq.Paints() != 0 {
		t.Errorf("Expected no paint for empty sequence, got %d", seq.Paints())
	}
}

func TestLoadStrictFailure(t *testing.T) {
	urls := memURLs(4)
	seq := New(&fakeFetcher{fail: map[string]bool{urls[1]: true}}, Options{Policy: FailStrict})

	states := await(t, seq.Load(context.Background(), urls))
	if states[len(states)-1] != Failed {
		t.Fatalf("Expected Failed, got %v", states)
	}

	seq.Resize(64, 64)
	if seq.Paints() != 0 {
		t.Error("Failed sequence must not paint")
	}
	if seq.Frame(0) != nil {
		t.Error("Failed sequence must not expose frames")
	}
}

func TestLoadPlaceholder(t *testing.T) {
	urls := memURLs(4)
	seq := New(&fakeFetcher{fail: map[string]bool{urls[1]: true}}, Options{Policy: FailPlaceholder})

	states := await(t, seq.Load(context.Background(), urls))
	if states[len(states)-1] != Ready {
		t.Fatalf("Expected Ready, got %v", states)
	}

	ph := seq.Frame(1)
	if !isPlaceholder(ph) {
		t.Fatalf("Expected placeholder at slot 1, got %T", ph)
	}
	// nearest decoded neighbour is frame 0 (width 1)
	if ph.Bounds().Dx() != 1 || ph.Bounds().Dy() != 10 {
		t.Errorf("Placeholder size %v", ph.Bounds())
	}
	if seq.Frame(2).Bounds().Dx() != 3 {
		t.Error("Neighbouring frames must stay in place")
	}
}

func TestLoadPlaceholderAllFailed(t *testing.T) {
	urls := memURLs(2)
	f := &fakeFetcher{fail: map[string]bool{urls[0]: true, urls[1]: true}}
	seq := New(f, Options{Policy: FailPlaceholder})

	states := await(t, seq.Load(context.Background(), urls))
	if states[len(states)-1] != Failed {
		t.Fatalf("Expected Failed when nothing decodes, got %v", states)
	}
}

func TestLoadIsSingleShot(t *testing.T) {
	seq := loadReady(t, 3)
	states := await(t, seq.Load(context.Background(), memURLs(5)))
	if len(states) != 1 || states[0] != Ready {
		t.Fatalf("Expected [ready] on reload, got %v", states)
	}
	if seq.FrameCount() != 3 {
		t.Errorf("Sequence must stay fixed, got %d frames", seq.FrameCount())
	}
}

func TestCloseDuringLoad(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeFetcher{gate: gate}
	seq := New(f, Options{})

	ch := seq.Load(context.Background(), memURLs(3))
	if st := <-ch; st != Loading {
		t.Fatalf("Expected Loading first, got %s", st)
	}

	seq.Close()
	close(gate)

	rest := await(t, ch)
	if len(rest) != 0 {
		t.Errorf("Expected no terminal state after unmount, got %v", rest)
	}
	if seq.State() != Unmounted {
		t.Errorf("Expected Unmounted, got %s", seq.State())
	}

	seq.Resize(10, 10)
	if seq.Paints() != 0 {
		t.Error("Unmounted sequencer painted")
	}

	if again := await(t, seq.Load(context.Background(), memURLs(1))); len(again) != 0 {
		t.Errorf("Load after Close must be inert, got %v", again)
	}
	seq.Close()
}

func TestRenderSuppressesRepaint(t *testing.T) {
	seq := loadReady(t, 5)

	seq.Render(2, 40, 30)
	seq.Render(2, 40, 30)
	if seq.Paints() != 1 {
		t.Fatalf("Expected 1 paint, got %d", seq.Paints())
	}

	seq.Render(3, 40, 30)
	if seq.Paints() != 2 || seq.LastRendered() != 3 {
		t.Errorf("Expected repaint for new frame, paints=%d last=%d", seq.Paints(), seq.LastRendered())
	}
}

func TestRenderNoOps(t *testing.T) {
	seq := loadReady(t, 3)

	seq.Render(-1, 10, 10)
	seq.Render(3, 10, 10)
	seq.Render(0, 0, 10)
	seq.Render(0, 10, 0)
	seq.Render(0, -5, -5)
	if seq.Paints() != 0 {
		t.Errorf("Expected no paints, got %d", seq.Paints())
	}
}

func TestRenderCoverPaintsWholeSurface(t *testing.T) {
	seq := loadReady(t, 3)
	seq.Render(2, 20, 8)

	dst := seq.Surface().Image()
	if dst.Bounds().Dx() != 20 || dst.Bounds().Dy() != 8 {
		t.Fatalf("Unexpected surface %v", dst.Bounds())
	}
	for _, p := range []image.Point{{0, 0}, {19, 0}, {0, 7}, {19, 7}, {10, 4}} {
		c := dst.RGBAAt(p.X, p.Y)
		// frame 2 is solid R=3, G=10
		if c.A != 255 || c.R != 3 || c.G != 10 {
			t.Errorf("Pixel %v = %v", p, c)
		}
	}
}

func TestResizeRepaintsCurrentFrame(t *testing.T) {
	seq := loadReady(t, 10)
	seq.Resize(100, 50)
	seq.Scroll(1000, 1000)
	if seq.LastRendered() != 9 {
		t.Fatalf("Expected frame 9, got %d", seq.LastRendered())
	}
	before := seq.Paints()

	seq.Resize(200, 120)
	if seq.Paints() != before+1 {
		t.Errorf("Resize must repaint without a scroll event")
	}
	if w, h := seq.Surface().Size(); w != 200 || h != 120 {
		t.Errorf("Surface is %dx%d, expected 200x120", w, h)
	}
	if seq.LastRendered() != 9 {
		t.Errorf("Resize changed the frame to %d", seq.LastRendered())
	}

	seq.Resize(0, 0)
	if seq.Paints() != before+1 {
		t.Error("Zero-size resize must not paint")
	}
}

func TestScrollPaintsOnlyOnIndexChange(t *testing.T) {
	seq := loadReady(t, 10)
	seq.Resize(10, 10)
	base := seq.Paints()

	for offset := 0.0; offset < 50; offset++ {
		seq.Scroll(offset, 1000) // all within frame 0
	}
	if seq.Paints() != base {
		t.Errorf("Scrolling inside one frame painted %d times", seq.Paints()-base)
	}

	seq.Scroll(500, 1000)
	if seq.Paints() != base+1 || seq.Current() != 5 {
		t.Errorf("Expected one paint of frame 5, paints=%d current=%d", seq.Paints()-base, seq.Current())
	}
}

func TestAfterPaintHook(t *testing.T) {
	var calls []int
	seq := New(&fakeFetcher{}, Options{AfterPaint: func(dst *image.RGBA, index, count int) {
		calls = append(calls, index)
		if count != 4 {
			t.Errorf("Expected count 4, got %d", count)
		}
	}})
	await(t, seq.Load(context.Background(), memURLs(4)))

	seq.Render(1, 5, 5)
	seq.Render(1, 5, 5)
	seq.Render(3, 5, 5)
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 3 {
		t.Errorf("Unexpected hook calls %v", calls)
	}
}

func TestParseFailurePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    FailurePolicy
		wantErr bool
	}{
		{"", FailStrict, false},
		{"strict", FailStrict, false},
		{"Placeholder", FailPlaceholder, false},
		{"retry", FailStrict, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFailurePolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}
