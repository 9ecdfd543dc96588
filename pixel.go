package renderer

import "image"

// NewARGBImage allocates a screen-image of the given size.
//
// The projector contract writes premultiplied ARGB pixels; Go's standard
// image.RGBA (8-bit per channel, alpha-premultiplied by convention in this
// package) is used as the concrete pixel buffer, the same representation
// the display collaborator composites from.
func NewARGBImage(width, height int) *image.RGBA {
	if width <= 0 || height <= 0 {
		return nil
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}
