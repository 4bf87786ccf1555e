// Package sequencer drives a scroll-linked frame sequence: it loads an ordered
// list of stills, maps a scroll offset to one of them and paints it onto a
// surface with cover scaling.
//
// Render, Resize, Scroll, Seek and Refresh belong to a single owning
// goroutine (the host's event loop). Load may be called from it too; decoding
// runs on background goroutines that never touch sequencer state until the
// whole sequence is published.
package sequencer

import (
	"context"
	"image"
	"log"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/ivlev/scrollseq/internal/renderer"
)

// Fetcher resolves a frame URL to a decoded image.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

// PaintHook runs after every real paint, on the owning goroutine.
type PaintHook func(dst *image.RGBA, index, count int)

type Options struct {
	Policy  FailurePolicy
	Workers int // 0 decodes every frame at once
	Scaler  draw.Scaler
	// AfterPaint post-processes the surface (overlays, dimming).
	AfterPaint PaintHook
}

type Sequencer struct {
	id      string
	fetcher Fetcher
	opts    Options

	mu     sync.Mutex
	state  LoadState
	frames []image.Image
	closed bool
	gen    uint64
	cancel context.CancelFunc

	// owned by the event loop goroutine
	count         int
	current       int
	width, height int
	surface       *Surface
	painted       bool
	lastIndex     int
	lastW, lastH  int
	paints        int
}

func New(f Fetcher, opts Options) *Sequencer {
	if opts.Scaler == nil {
		opts.Scaler = draw.ApproxBiLinear
	}
	return &Sequencer{
		id:        uuid.NewString()[:8],
		fetcher:   f,
		opts:      opts,
		surface:   NewSurface(),
		lastIndex: -1,
	}
}

// ID identifies this mount in logs.
func (s *Sequencer) ID() string {
	return s.id
}

func (s *Sequencer) State() LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FrameCount is the length of the sequence as soon as Load was called.
func (s *Sequencer) FrameCount() int {
	return s.count
}

// Frame returns the decoded frame at i once the sequence is Ready.
func (s *Sequencer) Frame(i int) image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ready || i < 0 || i >= len(s.frames) {
		return nil
	}
	return s.frames[i]
}

// Current is the last frame index requested by Scroll, Seek or Render.
func (s *Sequencer) Current() int {
	return s.current
}

// LastRendered is the index currently on the surface, -1 if nothing was painted.
func (s *Sequencer) LastRendered() int {
	if !s.painted {
		return -1
	}
	return s.lastIndex
}

// Paints counts real paint operations (suppressed repaints excluded).
func (s *Sequencer) Paints() int {
	return s.paints
}

// Surface returns the render target.
func (s *Sequencer) Surface() *Surface {
	return s.surface
}

// Seek records the frame for a scroll position without painting.
func (s *Sequencer) Seek(scrollOffset, trackLength float64) int {
	s.current = ComputeFrame(scrollOffset, trackLength, s.count)
	return s.current
}

// Scroll maps the offset to a frame and paints it if it differs from what is
// on the surface.
func (s *Sequencer) Scroll(scrollOffset, trackLength float64) int {
	idx := s.Seek(scrollOffset, trackLength)
	s.Render(idx, s.width, s.height)
	return idx
}

// Resize updates the surface size and repaints the last-known frame at the
// new size, so the surface never shows stale-resolution content.
func (s *Sequencer) Resize(w, h int) {
	s.width, s.height = w, h
	s.Render(s.current, w, h)
}

// Refresh repaints the current frame at the current size (after Ready).
func (s *Sequencer) Refresh() {
	s.Render(s.current, s.width, s.height)
}

// Render paints frame frameIndex onto a w x h surface with cover scaling.
// It is a no-op unless the sequence is Ready, the index is in range and the
// size is positive. Repainting the frame already on the surface at the same
// size does nothing.
func (s *Sequencer) Render(frameIndex, w, h int) {
	s.mu.Lock()
	state := s.state
	frames := s.frames
	s.mu.Unlock()

	if frameIndex >= 0 && frameIndex < s.count {
		s.current = frameIndex
	}
	if state != Ready || frameIndex < 0 || frameIndex >= len(frames) || w <= 0 || h <= 0 {
		return
	}
	if s.painted && frameIndex == s.lastIndex && w == s.lastW && h == s.lastH {
		return
	}

	s.surface.Resize(w, h)
	dst := s.surface.Image()
	if !renderer.DrawCover(dst, frames[frameIndex], s.opts.Scaler) {
		return
	}
	if s.opts.AfterPaint != nil {
		s.opts.AfterPaint(dst, frameIndex, len(frames))
	}

	s.painted = true
	s.lastIndex, s.lastW, s.lastH = frameIndex, w, h
	s.paints++
}

// Close unmounts the sequencer: in-flight decodes are cancelled, their late
// results are dropped and the surface is released. Close is idempotent and
// terminal.
func (s *Sequencer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.gen++
	s.state = Unmounted
	s.frames = nil
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.surface.Release()
	s.painted = false
	log.Printf("[*] [%s] Последовательность отмонтирована", s.id)
}
