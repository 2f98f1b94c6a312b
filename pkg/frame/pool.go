package frame

import (
	"image"
	"sync"
)

// Pool recycles *image.RGBA buffers by exact bounds so a camera running at a
// fixed resolution stops allocating after warmup.
type Pool struct {
	pools map[image.Rectangle]*sync.Pool
	mu    sync.RWMutex
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{pools: make(map[image.Rectangle]*sync.Pool)}
}

// Get returns a buffer with exactly rect bounds. Contents are unspecified.
func (p *Pool) Get(rect image.Rectangle) *image.RGBA {
	p.mu.RLock()
	pool, exists := p.pools[rect]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		pool, exists = p.pools[rect]
		if !exists {
			pool = &sync.Pool{
				New: func() any {
					return image.NewRGBA(rect)
				},
			}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

// Put hands a buffer back. Buffers of sizes never requested are dropped.
func (p *Pool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[img.Rect]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
