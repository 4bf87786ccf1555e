package renderer

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// CoverRect returns where an image of size src lands on a dstW x dstH surface
// under cover scaling: scale = max(dstW/srcW, dstH/srcH), centred. The result
// usually overflows the surface on one axis; the overflow is cropped at draw
// time. Degenerate sizes yield an empty rectangle.
func CoverRect(src image.Point, dstW, dstH int) image.Rectangle {
	if src.X <= 0 || src.Y <= 0 || dstW <= 0 || dstH <= 0 {
		return image.Rectangle{}
	}

	scale := math.Max(float64(dstW)/float64(src.X), float64(dstH)/float64(src.Y))
	w := float64(src.X) * scale
	h := float64(src.Y) * scale
	x0 := (float64(dstW) - w) / 2
	y0 := (float64(dstH) - h) / 2

	// floor/ceil so that rounding never leaves an unpainted edge
	return image.Rect(
		int(math.Floor(x0+coverEpsilon)),
		int(math.Floor(y0+coverEpsilon)),
		int(math.Ceil(x0+w-coverEpsilon)),
		int(math.Ceil(y0+h-coverEpsilon)),
	)
}

// absorbs float noise like 1280/1920*1920 = 1280.0000000000002
const coverEpsilon = 1e-6

// DrawCover paints src onto the whole of dst with cover scaling. It reports
// false and leaves dst untouched when either side is empty.
func DrawCover(dst draw.Image, src image.Image, scaler draw.Scaler) bool {
	db := dst.Bounds()
	sb := src.Bounds()
	r := CoverRect(sb.Size(), db.Dx(), db.Dy())
	if r.Empty() {
		return false
	}
	if scaler == nil {
		scaler = draw.ApproxBiLinear
	}
	// Scale clips to dst bounds, which crops the overflow
	scaler.Scale(dst, r.Add(db.Min), src, sb, draw.Src, nil)
	return true
}
