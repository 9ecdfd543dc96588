package volsource

import (
	"testing"

	"github.com/bdvrender/renderer"
	"github.com/bdvrender/renderer/blockcache"
)

func TestSourceLevels(t *testing.T) {
	s := NewSource(0, 64)
	if s.NumLevels() < 2 {
		t.Fatalf("NumLevels() = %d, want at least 2 for a 64x64 source", s.NumLevels())
	}

	full := s.LevelForScale(1.0)
	if full == nil {
		t.Fatal("LevelForScale(1.0) returned nil")
	}
	w, h := full.Bounds()
	if w != 64 || h != 64 {
		t.Errorf("level 0 bounds = (%d,%d), want (64,64)", w, h)
	}
}

func TestDemoViewerBestMipMapLevel(t *testing.T) {
	v := DemoViewer{Transform: renderer.Identity3D(), Sources: []int{0}}

	fullRes := v.BestMipMapLevel(renderer.Identity3D(), 0)
	if fullRes != 0 {
		t.Errorf("BestMipMapLevel at identity scale = %d, want 0", fullRes)
	}

	coarse := v.BestMipMapLevel(renderer.ScreenScaleTransform(0.25), 0)
	if coarse <= fullRes {
		t.Errorf("BestMipMapLevel at 0.25 scale = %d, want > %d", coarse, fullRes)
	}
}

func TestFactoryMapProducesAuthoritativeOnSecondPass(t *testing.T) {
	src := NewSource(0, 32)
	cache := blockcache.New(4)
	f := NewFactory([]*Source{src}, cache)

	storage := renderer.NewRenderStorage()
	storage.CheckRenewData(32, 32, 1)

	viewer := DemoViewer{Transform: renderer.Identity3D(), Sources: []int{0}}
	transform := renderer.Identity3D()

	proj := f.NewSourceProjector(viewer, 0, transform, storage, true)
	if ok := proj.Map(true); !ok {
		t.Fatal("first Map() returned cancelled")
	}
	if proj.IsValid() {
		t.Fatal("first Map() should be a cache-miss placeholder, not valid")
	}

	proj2 := f.NewSourceProjector(viewer, 0, transform, storage, true)
	if ok := proj2.Map(true); !ok {
		t.Fatal("second Map() returned cancelled")
	}
	if !proj2.IsValid() {
		t.Fatal("second Map() should hit the now-warm cache and be valid")
	}
}

func TestProjectorCancel(t *testing.T) {
	src := NewSource(0, 16)
	cache := blockcache.New(4)
	f := NewFactory([]*Source{src}, cache)
	storage := renderer.NewRenderStorage()
	storage.CheckRenewData(16, 16, 1)

	viewer := DemoViewer{Transform: renderer.Identity3D(), Sources: []int{0}}
	proj := f.NewSourceProjector(viewer, 0, renderer.Identity3D(), storage, true)
	proj.Cancel()

	if ok := proj.Map(true); ok {
		t.Fatal("Map() after Cancel() should return false")
	}
}
