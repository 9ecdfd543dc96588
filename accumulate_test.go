package renderer

import (
	"image/color"
	"testing"
)

func TestDefaultAccumulateAllAuthoritative(t *testing.T) {
	storage := NewRenderStorage()
	storage.CheckRenewData(4, 4, 1)

	src := storage.Image(0)
	mask := storage.Mask(0)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			_ = src.SetRGBA(x, y, 200, 100, 50, 255)
			_ = mask.SetRGBA(x, y, 255, 255, 255, 255)
		}
	}

	dest := NewARGBImage(4, 4)
	acc := NewDefaultAccumulateProjectorFactory().NewAccumulateProjector()
	valid := acc.Accumulate([]int{0}, storage, dest, 0, 0)

	if !valid {
		t.Fatal("Accumulate should report valid when every mask pixel is authoritative")
	}
	if r, g, b, a := dest.RGBAAt(0, 0).R, dest.RGBAAt(0, 0).G, dest.RGBAAt(0, 0).B, dest.RGBAAt(0, 0).A; r != 200 || g != 100 || b != 50 || a != 255 {
		t.Fatalf("pixel (0,0) = (%d,%d,%d,%d), want (200,100,50,255)", r, g, b, a)
	}
}

func TestDefaultAccumulateInvalidWhenMaskedOut(t *testing.T) {
	storage := NewRenderStorage()
	storage.CheckRenewData(2, 2, 1)

	src := storage.Image(0)
	mask := storage.Mask(0)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			_ = src.SetRGBA(x, y, 10, 20, 30, 255)
			_ = mask.SetRGBA(x, y, 0, 0, 0, 255) // not authoritative
		}
	}

	dest := NewARGBImage(2, 2)
	acc := NewDefaultAccumulateProjectorFactory().NewAccumulateProjector()
	valid := acc.Accumulate([]int{0}, storage, dest, 0, 0)

	if valid {
		t.Fatal("Accumulate should report invalid when any sampled pixel is a placeholder")
	}
	// Pixel data is still composited even when not authoritative.
	c := dest.RGBAAt(0, 0)
	if c.R != 10 {
		t.Fatalf("pixel (0,0).R = %d, want 10 (placeholder data still drawn)", c.R)
	}
}

func TestDefaultAccumulateSkipsTransparentSource(t *testing.T) {
	storage := NewRenderStorage()
	storage.CheckRenewData(2, 2, 1)
	// leave src fully transparent (alpha 0)

	dest := NewARGBImage(2, 2)
	dest.SetRGBA(0, 0, color.RGBA{R: 9, G: 9, B: 9, A: 255})

	acc := NewDefaultAccumulateProjectorFactory().NewAccumulateProjector()
	acc.Accumulate([]int{0}, storage, dest, 0, 0)

	if c := dest.RGBAAt(0, 0); c.R != 9 {
		t.Fatalf("transparent source pixel overwrote destination: got %v", c)
	}
}

func TestOverOpaqueReplacesDestination(t *testing.T) {
	dst := NewARGBImage(1, 1)
	dst.SetRGBA(0, 0, color.RGBA{R: 1, G: 1, B: 1, A: 255})
	over(dst, 0, 0, 100, 150, 200, 255)
	c := dst.RGBAAt(0, 0)
	if c.R != 100 || c.G != 150 || c.B != 200 || c.A != 255 {
		t.Fatalf("over() with opaque source = %v, want (100,150,200,255)", c)
	}
}
