package effects

import (
	"image"

	"github.com/ivlev/scrollseq/internal/renderer"
	"github.com/ivlev/scrollseq/internal/sequencer"
)

// Effect post-processes a freshly painted surface. progress is the scroll
// progress of the painted frame in [0,1].
type Effect interface {
	Apply(dst *image.RGBA, progress float64)
}

// Dim darkens the whole surface, as if the frame were shown at (1-Amount)
// opacity over black.
type Dim struct {
	Amount float64
}

func (d Dim) Apply(dst *image.RGBA, _ float64) {
	darken(dst, func(int) float64 { return d.Amount })
}

// Gradient darkens from Left at the left edge to Right at the right edge,
// the cinematic overlay that keeps headline copy readable.
type Gradient struct {
	Left, Right float64
}

func (g Gradient) Apply(dst *image.RGBA, _ float64) {
	w := dst.Rect.Dx()
	if w <= 1 {
		darken(dst, func(int) float64 { return g.Left })
		return
	}
	darken(dst, func(x int) float64 {
		t := float64(x) / float64(w-1)
		return g.Left + (g.Right-g.Left)*t
	})
}

// RampedDim dims by an amount that follows scroll progress. Eased smooths
// each segment of the ramp.
type RampedDim struct {
	Stops []renderer.Stop
	Eased bool
}

func (r RampedDim) Apply(dst *image.RGBA, progress float64) {
	amount := renderer.Ramp(r.Stops, progress)
	if r.Eased {
		amount = renderer.EasedRamp(r.Stops, progress)
	}
	darken(dst, func(int) float64 { return amount })
}

// Chain applies effects in order.
type Chain []Effect

func (c Chain) Apply(dst *image.RGBA, progress float64) {
	for _, e := range c {
		e.Apply(dst, progress)
	}
}

// Hook adapts an effect to the sequencer's after-paint callback.
func Hook(e Effect) sequencer.PaintHook {
	if e == nil {
		return nil
	}
	return func(dst *image.RGBA, index, count int) {
		progress := 0.0
		if count > 1 {
			progress = float64(index) / float64(count-1)
		}
		e.Apply(dst, progress)
	}
}

// darken scales RGB by 1-amount(x) column by column. Premultiplied alpha is
// left alone.
func darken(dst *image.RGBA, amount func(x int) float64) {
	b := dst.Rect
	w := b.Dx()
	if w <= 0 || b.Dy() <= 0 {
		return
	}

	// множители по столбцам, 0..256
	mul := make([]uint32, w)
	changed := false
	for x := 0; x < w; x++ {
		a := amount(x)
		if a < 0 {
			a = 0
		}
		if a > 1 {
			a = 1
		}
		mul[x] = uint32((1 - a) * 256)
		if mul[x] != 256 {
			changed = true
		}
	}
	if !changed {
		return
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := dst.Pix[dst.PixOffset(b.Min.X, y):]
		for x := 0; x < w; x++ {
			m := mul[x]
			i := x * 4
			row[i] = uint8(uint32(row[i]) * m >> 8)
			row[i+1] = uint8(uint32(row[i+1]) * m >> 8)
			row[i+2] = uint8(uint32(row[i+2]) * m >> 8)
		}
	}
}
