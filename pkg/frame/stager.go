package frame

import (
	"image"
)

// Stager keeps a private copy of the latest frame so sampling never reads
// memory the producer may be overwriting.
//
// The buffer is allocated lazily and reallocated only when the source
// dimensions change. Stager is not safe for concurrent use; the controller
// owns it.
type Stager struct {
	pool     *Pool
	buf      *image.RGBA
	reallocs int
}

// NewStager creates a stager. pool may be nil.
func NewStager(pool *Pool) *Stager {
	return &Stager{pool: pool}
}

// Stage copies src into the staging buffer and returns it. The returned image
// is owned by the Stager and stays valid until the next call.
func (s *Stager) Stage(src *image.RGBA) *image.RGBA {
	if src == nil {
		return nil
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()
	bounds := image.Rect(0, 0, w, h)

	if s.buf == nil || s.buf.Rect != bounds {
		if s.buf != nil && s.pool != nil {
			s.pool.Put(s.buf)
		}
		if s.pool != nil {
			s.buf = s.pool.Get(bounds)
		} else {
			s.buf = image.NewRGBA(bounds)
		}
		s.reallocs++
	}

	rowBytes := w * 4
	for y := 0; y < h; y++ {
		srcOff := y * src.Stride
		copy(s.buf.Pix[y*s.buf.Stride:y*s.buf.Stride+rowBytes], src.Pix[srcOff:srcOff+rowBytes])
	}

	return s.buf
}

// Buffer returns the current staging buffer, or nil before the first Stage.
func (s *Stager) Buffer() *image.RGBA {
	return s.buf
}

// Reallocations counts how many times the buffer was (re)created.
func (s *Stager) Reallocations() int {
	return s.reallocs
}

// Release returns the buffer to the pool.
func (s *Stager) Release() {
	if s.buf != nil && s.pool != nil {
		s.pool.Put(s.buf)
	}
	s.buf = nil
}
