// Package display provides a CPU-backed Display implementation: an
// *image.RGBA-wrapping target that a UI layer can poll for the current
// RenderResult.
//
// It is a CPU-addressable render target with Resize/reuse support, geared
// to publish whole renderer.RenderResult snapshots rather than raw pixels.
package display

import (
	"sync"

	"github.com/bdvrender/renderer"
)

// Pixmap is a CPU-backed Display. It tracks the canvas size the viewer
// wants to render at, reuses the most recently published RenderResult when
// its size and scale factor match, and exposes the latest published result
// to a consumer (e.g. a window's paint routine).
type Pixmap struct {
	mu sync.Mutex

	width, height int
	current       *renderer.RenderResult
	reusable      *renderer.RenderResult
}

// NewPixmap creates a Display of the given canvas size.
func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{width: width, height: height}
}

// Width implements renderer.Display.
func (p *Pixmap) Width() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width
}

// Height implements renderer.Display.
func (p *Pixmap) Height() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.height
}

// Resize changes the canvas size. The next CreateRenderResult/
// GetReusableRenderResult call will allocate fresh storage.
func (p *Pixmap) Resize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width, p.height = width, height
	p.reusable = nil
}

// CreateRenderResult implements renderer.Display.
func (p *Pixmap) CreateRenderResult(width, height int, scaleFactor float64) *renderer.RenderResult {
	return renderer.NewRenderResult(width, height, scaleFactor)
}

// GetReusableRenderResult implements renderer.Display. It returns the
// previously published result if its bounds and scale factor already match,
// to avoid re-allocating the backing image on every full-frame pass.
func (p *Pixmap) GetReusableRenderResult(width, height int, scaleFactor float64) *renderer.RenderResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.reusable != nil {
		b := p.reusable.Bounds()
		if b.Dx() == width && b.Dy() == height && p.reusable.ScaleFactor() == scaleFactor {
			return p.reusable
		}
	}
	r := renderer.NewRenderResult(width, height, scaleFactor)
	p.reusable = r
	return r
}

// SetRenderResult implements renderer.Display.
func (p *Pixmap) SetRenderResult(r *renderer.RenderResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = r
	p.reusable = r
}

// Current returns the most recently published result, or nil.
func (p *Pixmap) Current() *renderer.RenderResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

var _ renderer.Display = (*Pixmap)(nil)
