package renderer

import (
	"image"
	"image/color"
)

// defaultAccumulateProjectorFactory builds the default AccumulateProjector:
// a straightforward back-to-front alpha-over composite of each source's
// scratch buffer, gated by its validity mask. Sources are combined in the
// order given, later sources drawn on top.
type defaultAccumulateProjectorFactory struct{}

// NewDefaultAccumulateProjectorFactory returns the built-in
// AccumulateProjectorFactory used when none is configured.
func NewDefaultAccumulateProjectorFactory() AccumulateProjectorFactory {
	return defaultAccumulateProjectorFactory{}
}

func (defaultAccumulateProjectorFactory) NewAccumulateProjector() AccumulateProjector {
	return &overAccumulateProjector{}
}

type overAccumulateProjector struct{}

// Accumulate implements AccumulateProjector. It composites storage's
// per-source scratch images into dest at (offsetX, offsetY), using the
// first (gray/red) channel of each source's mask as per-pixel validity: a
// mask value of 0
// means that sample was a lower-resolution fallback, not authoritative
// data. The pass as a whole is valid only if every sampled pixel of every
// source was authoritative.
func (o *overAccumulateProjector) Accumulate(sources []int, storage *RenderStorage, dest *image.RGBA, offsetX, offsetY int) bool {
	valid := true
	for _, srcIdx := range sources {
		srcImg := storage.Image(srcIdx)
		srcMask := storage.Mask(srcIdx)
		if srcImg == nil {
			continue
		}
		w, h := srcImg.Bounds()
		for y := 0; y < h; y++ {
			dy := offsetY + y
			for x := 0; x < w; x++ {
				dx := offsetX + x
				if !inBounds(dest, dx, dy) {
					continue
				}
				r, g, b, a := srcImg.GetRGBA(x, y)
				if a == 0 {
					continue
				}
				if srcMask != nil {
					mr, _, _, _ := srcMask.GetRGBA(x, y)
					if mr == 0 {
						valid = false
					}
				}
				over(dest, dx, dy, r, g, b, a)
			}
		}
	}
	return valid
}

func inBounds(dst *image.RGBA, x, y int) bool {
	b := dst.Bounds()
	return x >= b.Min.X && x < b.Max.X && y >= b.Min.Y && y < b.Max.Y
}

// over composites a premultiplied source pixel onto dst using the Porter-Duff
// "over" operator.
func over(dst *image.RGBA, x, y int, sr, sg, sb, sa uint8) {
	if sa == 255 {
		dst.SetRGBA(x, y, color.RGBA{R: sr, G: sg, B: sb, A: sa})
		return
	}
	d := dst.RGBAAt(x, y)
	dr, dg, db, da := d.R, d.G, d.B, d.A
	inv := 255 - uint16(sa)
	r := uint8(uint16(sr) + uint16(dr)*inv/255)
	g := uint8(uint16(sg) + uint16(dg)*inv/255)
	b := uint8(uint16(sb) + uint16(db)*inv/255)
	a := uint8(uint16(sa) + uint16(da)*inv/255)
	dst.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: a})
}
