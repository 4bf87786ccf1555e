package effects

import (
	"fmt"
	"image"
	"image/color"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

var endCardBackground = color.RGBA{R: 0x0b, G: 0x0d, B: 0x12, A: 0xff}

// EndCard is the closing frame appended to exported clips: a dark card with
// a QR code pointing at the enquiry page.
type EndCard struct {
	URL        string
	Background color.RGBA
}

// Render builds a w x h card. The code takes half of the shorter side.
func (e EndCard) Render(w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("end card size %dx%d", w, h)
	}
	bg := e.Background
	if bg == (color.RGBA{}) {
		bg = endCardBackground
	}

	card := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(card, card.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	if e.URL == "" {
		return card, nil
	}

	q, err := qrcode.New(e.URL, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr code for %s: %w", e.URL, err)
	}
	q.BackgroundColor = color.White
	q.ForegroundColor = color.Black

	side := min(w, h) / 2
	if side < 21 {
		side = min(w, h)
	}
	code := q.Image(side)

	cb := code.Bounds()
	at := image.Pt((w-cb.Dx())/2, (h-cb.Dy())/2)
	draw.Draw(card, cb.Sub(cb.Min).Add(at), code, cb.Min, draw.Over)
	return card, nil
}
