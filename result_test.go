package renderer

import (
	"image"
	"image/color"
	"testing"
)

func TestRenderResultBoundsAndCanvasBounds(t *testing.T) {
	r := NewRenderResult(100, 50, 0.5)
	if b := r.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("Bounds() = %v, want 100x50", b)
	}
	cb := r.CanvasBounds()
	if cb.Dx() != 200 || cb.Dy() != 100 {
		t.Fatalf("CanvasBounds() = %v, want 200x100 (bounds / scaleFactor)", cb)
	}
}

func TestRenderResultUpdatedClearsOnRead(t *testing.T) {
	r := NewRenderResult(10, 10, 1)
	if r.Updated() {
		t.Fatal("Updated() should start false")
	}
	r.SetUpdated()
	if !r.Updated() {
		t.Fatal("Updated() should be true right after SetUpdated")
	}
	if r.Updated() {
		t.Fatal("Updated() should clear itself after being read")
	}
}

func TestRenderResultPatch(t *testing.T) {
	dst := NewRenderResult(20, 20, 1)
	src := NewRenderResult(4, 4, 1)

	srcImg := src.Image()
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			srcImg.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	dst.Patch(src, image.Rect(2, 2, 6, 6), 2, 2)

	dstImg := dst.Image()
	if r, _, _, a := dstImg.At(3, 3).RGBA(); r == 0 || a == 0 {
		t.Fatalf("pixel (3,3) not patched, got rgba %v", dstImg.At(3, 3))
	}
	if r, _, _, _ := dstImg.At(10, 10).RGBA(); r != 0 {
		t.Fatalf("pixel (10,10) outside patch area was modified, got rgba %v", dstImg.At(10, 10))
	}
	if !dst.Updated() {
		t.Fatal("Patch should mark the destination as updated")
	}
}

func TestRenderResultPatchClipsToBounds(t *testing.T) {
	dst := NewRenderResult(10, 10, 1)
	src := NewRenderResult(20, 20, 1)

	// Should not panic even though the patch would overflow dst's bounds.
	dst.Patch(src, image.Rect(0, 0, 20, 20), 5, 5)
}
