package sequencer

import (
	"image"

	"github.com/ivlev/scrollseq/internal/system"
)

// Surface is the render target. It owns only painted pixels; its size tracks
// the viewport and buffers are recycled through the system pool.
type Surface struct {
	img *image.RGBA
}

func NewSurface() *Surface {
	return &Surface{}
}

// Resize swaps the backing buffer for one of w x h. Non-positive sizes
// release the buffer.
func (s *Surface) Resize(w, h int) {
	if s.img != nil && s.img.Rect.Dx() == w && s.img.Rect.Dy() == h {
		return
	}
	s.Release()
	if w <= 0 || h <= 0 {
		return
	}
	s.img = system.GetSurface(w, h)
}

// Image returns the current buffer, nil before the first Resize.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

func (s *Surface) Size() (int, int) {
	if s.img == nil {
		return 0, 0
	}
	return s.img.Rect.Dx(), s.img.Rect.Dy()
}

func (s *Surface) Release() {
	if s.img != nil {
		system.PutSurface(s.img)
		s.img = nil
	}
}
