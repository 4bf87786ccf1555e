package system

import (
	"image"
	"sync"
)

// SurfacePool переиспользует буферы *image.RGBA одинакового размера,
// чтобы частые resize окна не нагружали GC.
type SurfacePool struct {
	pools map[image.Point]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = NewSurfacePool()

func NewSurfacePool() *SurfacePool {
	return &SurfacePool{pools: make(map[image.Point]*sync.Pool)}
}

// GetSurface returns an RGBA buffer of w x h anchored at the origin.
// Its contents are whatever the previous owner left there.
func GetSurface(w, h int) *image.RGBA {
	return globalPool.Get(w, h)
}

// PutSurface hands a buffer obtained from GetSurface back to the pool.
func PutSurface(img *image.RGBA) {
	globalPool.Put(img)
}

func (p *SurfacePool) Get(w, h int) *image.RGBA {
	key := image.Pt(w, h)
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() any {
					return image.NewRGBA(image.Rect(0, 0, key.X, key.Y))
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *SurfacePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) {
		return
	}
	key := img.Rect.Size()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
