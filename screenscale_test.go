package renderer

import (
	"image"
	"testing"
)

func TestScreenScalesCheckResize(t *testing.T) {
	s := NewScreenScales([]float64{1, 0.5, 0.25}, 30_000_000)

	if !s.CheckResize(800, 600) {
		t.Fatal("first CheckResize should report a rebuild")
	}
	if s.CheckResize(800, 600) {
		t.Fatal("unchanged size should not report a rebuild")
	}
	if !s.CheckResize(640, 480) {
		t.Fatal("changed size should report a rebuild")
	}

	scales := s.Scales()
	if len(scales) != 3 {
		t.Fatalf("Scales() len = %d, want 3", len(scales))
	}
	if scales[0].Width != 640 || scales[0].Height != 480 {
		t.Errorf("scale 0 = %dx%d, want 640x480 at factor 1", scales[0].Width, scales[0].Height)
	}
	if scales[1].Width != 320 || scales[1].Height != 240 {
		t.Errorf("scale 1 = %dx%d, want 320x240 at factor 0.5", scales[1].Width, scales[1].Height)
	}
}

func TestSuggestScreenScalePrefersFinestWithinBudget(t *testing.T) {
	s := NewScreenScales([]float64{1, 0.5, 0.25}, 1000)
	s.CheckResize(100, 100)

	// nsPerPixel large enough that only the coarsest scale fits the budget.
	idx := s.SuggestScreenScale(1.0)
	if idx != 2 {
		t.Fatalf("SuggestScreenScale = %d, want 2 (coarsest) under a tight budget", idx)
	}

	// nsPerPixel tiny: even the finest scale fits.
	idx = s.SuggestScreenScale(0.00001)
	if idx != 0 {
		t.Fatalf("SuggestScreenScale = %d, want 0 (finest) under a generous budget", idx)
	}
}

func TestSuggestIntervalScreenScaleNeverFiner(t *testing.T) {
	s := NewScreenScales([]float64{1, 0.5, 0.25}, 1_000_000_000)
	s.CheckResize(100, 100)

	idx := s.SuggestIntervalScreenScale(0.00001, 1)
	if idx < 1 {
		t.Fatalf("SuggestIntervalScreenScale = %d, want >= currentScreenScaleIndex (1)", idx)
	}
}

func TestRequestIntervalUnionsPending(t *testing.T) {
	s := NewScreenScales([]float64{1}, 30_000_000)
	s.CheckResize(100, 100)

	s.RequestInterval(image.Rect(0, 0, 10, 10))
	s.RequestInterval(image.Rect(5, 5, 20, 20))

	if !s.HasPendingInterval() {
		t.Fatal("HasPendingInterval() should be true after RequestInterval")
	}

	data, ok := s.PullIntervalRenderData(0, 0)
	if !ok {
		t.Fatal("PullIntervalRenderData should succeed with pending intervals")
	}
	want := image.Rect(0, 0, 20, 20)
	if data.TargetInterval != want {
		t.Fatalf("TargetInterval = %v, want union %v", data.TargetInterval, want)
	}
	if s.HasPendingInterval() {
		t.Fatal("PullIntervalRenderData should drain the pending set")
	}
}

func TestPullIntervalRenderDataNoneReturnsFalse(t *testing.T) {
	s := NewScreenScales([]float64{1}, 30_000_000)
	s.CheckResize(100, 100)
	if _, ok := s.PullIntervalRenderData(0, 0); ok {
		t.Fatal("PullIntervalRenderData should fail with nothing pending")
	}
}

func TestPullIntervalRenderDataUsesBaseScaleForPasteOffset(t *testing.T) {
	s := NewScreenScales([]float64{1.0, 0.5}, 30_000_000)
	s.CheckResize(100, 100)
	s.RequestInterval(image.Rect(10, 20, 30, 40))

	// requestedIntervalScaleIndex=1 (0.5 scale), baseScreenScaleIndex=0 (1.0 scale).
	data, ok := s.PullIntervalRenderData(1, 0)
	if !ok {
		t.Fatal("expected pending interval")
	}
	if data.OffsetX != 5 || data.OffsetY != 10 {
		t.Errorf("OffsetX/Y = %d/%d, want 5/10 (interval scale 0.5)", data.OffsetX, data.OffsetY)
	}
	if data.TX != 10 || data.TY != 20 {
		t.Errorf("TX/TY = %d/%d, want 10/20 (base scale 1.0)", data.TX, data.TY)
	}
}

func TestReRequestRestoresPending(t *testing.T) {
	s := NewScreenScales([]float64{1}, 30_000_000)
	s.CheckResize(100, 100)
	s.RequestInterval(image.Rect(0, 0, 5, 5))

	data, ok := s.PullIntervalRenderData(0, 0)
	if !ok {
		t.Fatal("expected pending interval")
	}
	if s.HasPendingInterval() {
		t.Fatal("pending set should be empty right after Pull")
	}

	s.ReRequest(data)
	if !s.HasPendingInterval() {
		t.Fatal("ReRequest should restore the interval to the pending set")
	}
}
