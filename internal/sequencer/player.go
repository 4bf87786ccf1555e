package sequencer

import (
	"context"
	"sync"
	"time"
)

// DefaultTick matches a 60 Hz display refresh.
const DefaultTick = 16 * time.Millisecond

// Coalescer collects high-frequency scroll and resize events from any
// goroutine and keeps only the latest of each. The owning loop applies them
// once per tick with Flush.
type Coalescer struct {
	mu sync.Mutex

	scrollPending bool
	offset, track float64

	resizePending bool
	width, height int
}

func (c *Coalescer) PostScroll(offset, track float64) {
	c.mu.Lock()
	c.offset, c.track = offset, track
	c.scrollPending = true
	c.mu.Unlock()
}

func (c *Coalescer) PostResize(w, h int) {
	c.mu.Lock()
	c.width, c.height = w, h
	c.resizePending = true
	c.mu.Unlock()
}

// Flush applies pending events to s and reports whether there were any. When
// both are pending the frame is sought first so the resize paints it once.
func (c *Coalescer) Flush(s *Sequencer) bool {
	c.mu.Lock()
	scroll, resize := c.scrollPending, c.resizePending
	offset, track := c.offset, c.track
	w, h := c.width, c.height
	c.scrollPending, c.resizePending = false, false
	c.mu.Unlock()

	switch {
	case resize && scroll:
		s.Seek(offset, track)
		s.Resize(w, h)
	case resize:
		s.Resize(w, h)
	case scroll:
		s.Scroll(offset, track)
	}
	return scroll || resize
}

// Player runs the event loop that owns a Sequencer: load completion, throttled
// scroll and resize all funnel into one goroutine.
type Player struct {
	seq      *Sequencer
	events   Coalescer
	interval time.Duration

	// OnState is called from the loop on every load transition.
	OnState func(LoadState)

	stopOnce sync.Once
	stop     chan struct{}
}

func NewPlayer(seq *Sequencer, interval time.Duration) *Player {
	if interval <= 0 {
		interval = DefaultTick
	}
	return &Player{
		seq:      seq,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (p *Player) Sequencer() *Sequencer {
	return p.seq
}

// PostScroll never blocks; only the latest offset per tick is rendered.
func (p *Player) PostScroll(offset, track float64) {
	p.events.PostScroll(offset, track)
}

func (p *Player) PostResize(w, h int) {
	p.events.PostResize(w, h)
}

// Run loads urls and serves events until ctx is done or Stop is called.
// Events posted before Stop are applied before Run returns. The sequencer is
// closed on every exit path.
func (p *Player) Run(ctx context.Context, urls []string) error {
	defer p.seq.Close()

	states := p.seq.Load(ctx, urls)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stop:
			// события, пришедшие до Stop, не теряются
			p.events.Flush(p.seq)
			return nil
		case st, ok := <-states:
			if !ok {
				states = nil
				continue
			}
			if st == Ready {
				p.events.Flush(p.seq)
				p.seq.Refresh()
			}
			if p.OnState != nil {
				p.OnState(st)
			}
		case <-ticker.C:
			p.events.Flush(p.seq)
		}
	}
}

func (p *Player) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}
