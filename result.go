package renderer

import (
	"image"
	"image/draw"
	"sync"
)

// RenderResult is the mutable, addressable destination image plus the
// viewer transform and scale factor used to produce it.
//
// RenderResult is safe for concurrent use: the painter thread writes to it
// while the display consumer reads Image()/Updated() from another
// goroutine.
type RenderResult struct {
	mu sync.Mutex

	img         *image.RGBA
	scaleFactor float64
	viewer      AffineTransform3D
	updated     bool
}

// NewRenderResult allocates a RenderResult of the given pixel size and
// scale factor.
func NewRenderResult(width, height int, scaleFactor float64) *RenderResult {
	return &RenderResult{
		img:         NewARGBImage(width, height),
		scaleFactor: scaleFactor,
	}
}

// Image returns the backing ARGB image. Callers must not resize it.
func (r *RenderResult) Image() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.img
}

// Bounds returns the pixel bounds of the backing image.
func (r *RenderResult) Bounds() image.Rectangle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.img.Bounds()
}

// ScaleFactor returns the screen-image-pixel per canvas-pixel ratio this
// result was rendered at.
func (r *RenderResult) ScaleFactor() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scaleFactor
}

// CanvasBounds returns the result's bounds mapped back to canvas
// coordinates (bounds / scaleFactor). A full-frame RenderResult at scale s
// always covers the entire canvas at size (W*s, H*s), so this is the
// canvas rectangle the result currently covers.
func (r *RenderResult) CanvasBounds() image.Rectangle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scaleFactor <= 0 {
		return image.Rectangle{}
	}
	b := r.img.Bounds()
	return image.Rect(0, 0,
		int(float64(b.Dx())/r.scaleFactor),
		int(float64(b.Dy())/r.scaleFactor))
}

// SetViewerTransform records the viewer transform snapshot that produced
// this result.
func (r *RenderResult) SetViewerTransform(t AffineTransform3D) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewer = t
}

// ViewerTransform returns the viewer transform snapshot recorded for this
// result.
func (r *RenderResult) ViewerTransform() AffineTransform3D {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewer
}

// SetUpdated marks the result as having fresh content the display consumer
// should blit.
func (r *RenderResult) SetUpdated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = true
}

// Updated reports and clears the updated marker.
func (r *RenderResult) Updated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.updated
	r.updated = false
	return u
}

// Patch copies src into a region of r, clipped to targetInterval (given in
// canvas coordinates, mapped through r's scale factor) and pasted at
// (tx, ty) in r's own pixel coordinate space. tx, ty are already expressed
// in r's coordinate space by the caller (see IntervalRenderData.TX/TY).
func (r *RenderResult) Patch(src *RenderResult, targetInterval image.Rectangle, tx, ty int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	srcImg := src.Image()
	srcBounds := srcImg.Bounds()

	clip := image.Rect(
		int(float64(targetInterval.Min.X)*r.scaleFactor),
		int(float64(targetInterval.Min.Y)*r.scaleFactor),
		int(float64(targetInterval.Max.X)*r.scaleFactor),
		int(float64(targetInterval.Max.Y)*r.scaleFactor),
	).Intersect(r.img.Bounds())

	dstRect := image.Rect(tx, ty, tx+srcBounds.Dx(), ty+srcBounds.Dy()).Intersect(clip)
	if dstRect.Empty() {
		return
	}

	srcPoint := image.Point{
		X: srcBounds.Min.X + (dstRect.Min.X - tx),
		Y: srcBounds.Min.Y + (dstRect.Min.Y - ty),
	}
	draw.Draw(r.img, dstRect, srcImg, srcPoint, draw.Src)
	r.updated = true
}
