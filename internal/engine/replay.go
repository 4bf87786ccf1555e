package engine

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/ivlev/scrollseq/internal/effects"
	"github.com/ivlev/scrollseq/internal/sequencer"
)

// ReplayReport summarises a headless scroll replay.
type ReplayReport struct {
	Report
	Posted    int // scroll events posted
	Paints    int // paints the player actually performed
	LastFrame int
}

func (r ReplayReport) String() string {
	return fmt.Sprintf("%s | событий прокрутки: %d, отрисовок: %d, последний кадр: %d",
		r.Report, r.Posted, r.Paints, r.LastFrame)
}

// Replay drives the sequence through a Player the way a browser would: once
// the sequence is Ready, the sweep is posted as scroll events twice per tick,
// so the player has to coalesce them. Nothing is encoded.
func (p *ExportProject) Replay(ctx context.Context, interval time.Duration) (ReplayReport, error) {
	rep := ReplayReport{LastFrame: -1}
	if p.Config.Width <= 0 || p.Config.Height <= 0 {
		return rep, fmt.Errorf("%w: %dx%d", ErrBadSize, p.Config.Width, p.Config.Height)
	}
	policy, err := sequencer.ParseFailurePolicy(p.Config.FailurePolicy)
	if err != nil {
		return rep, err
	}
	if interval <= 0 {
		interval = sequencer.DefaultTick
	}

	effect := effects.Hook(p.Effect)
	seq := sequencer.New(p.Source, sequencer.Options{
		Policy:  policy,
		Workers: p.Config.Workers,
		AfterPaint: func(dst *image.RGBA, index, count int) {
			if effect != nil {
				effect(dst, index, count)
			}
			rep.Paints++
			rep.LastFrame = index
		},
	})
	player := sequencer.NewPlayer(seq, interval)
	rep.ID = seq.ID()

	urls := p.Source.URLs()
	tr, offsets := p.sweep(len(urls))

	var wg sync.WaitGroup
	start := time.Now()
	player.OnState = func(st sequencer.LoadState) {
		rep.State = st
		if !st.Terminal() {
			return
		}
		rep.LoadTime = time.Since(start)
		if st != sequencer.Ready {
			player.Stop()
			return
		}
		if f := seq.Frame(0); f != nil {
			rep.FirstSize = f.Bounds().Size()
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer player.Stop()
			for _, offset := range offsets {
				select {
				case <-ctx.Done():
					return
				case <-time.After(interval / 2):
				}
				player.PostScroll(offset, tr.Length())
				rep.Posted++
			}
		}()
	}

	player.PostResize(p.Config.Width, p.Config.Height)
	err = player.Run(ctx, urls)
	wg.Wait()
	rep.Frames = seq.FrameCount()

	if err != nil {
		return rep, err
	}
	if rep.State != sequencer.Ready {
		return rep, fmt.Errorf("%w (%s)", ErrNotReady, rep.State)
	}
	if rep.Frames == 0 {
		return rep, ErrEmptySequence
	}
	return rep, nil
}
