package renderer

import (
	"image/color"
	"testing"
)

type fakeSourceProjector struct {
	valid     bool
	cancelled bool
	mapCalls  int
}

func (f *fakeSourceProjector) Map(clearDestination bool) bool {
	f.mapCalls++
	return !f.cancelled
}
func (f *fakeSourceProjector) Cancel()                     { f.cancelled = true }
func (f *fakeSourceProjector) IsValid() bool                { return f.valid }
func (f *fakeSourceProjector) LastFrameRenderNanos() int64 { return 1 }

type fakeSourceFactory struct {
	projectors map[int]*fakeSourceProjector
}

func (f *fakeSourceFactory) NewSourceProjector(snapshot ViewerState, sourceIndex int, screenTransform AffineTransform3D, storage *RenderStorage, useVolatileIfAvailable bool) VolatileProjector {
	return f.projectors[sourceIndex]
}

type fakeViewerState struct {
	sources []int
}

func (v fakeViewerState) ViewerTransform() AffineTransform3D           { return Identity3D() }
func (v fakeViewerState) VisibleAndPresentSources() []int              { return v.sources }
func (v fakeViewerState) BestMipMapLevel(AffineTransform3D, int) int { return 0 }

func TestCompositeProjectorAllValid(t *testing.T) {
	factory := &fakeSourceFactory{projectors: map[int]*fakeSourceProjector{
		0: {valid: true},
		1: {valid: true},
	}}
	cpf := NewCompositeProjectorFactory(factory, NewDefaultAccumulateProjectorFactory(), nil, true, false)

	storage := NewRenderStorage()
	storage.CheckRenewData(4, 4, 2)
	dest := NewRenderResult(4, 4, 1)

	proj := cpf.NewProjector(fakeViewerState{sources: []int{0, 1}}, []int{0, 1}, dest, Identity3D(), 0, 0, storage)
	if ok := proj.Map(true); !ok {
		t.Fatal("Map() should succeed")
	}
	if !proj.IsValid() {
		t.Fatal("IsValid() should be true when all source projectors and the accumulator are valid")
	}
}

func TestCompositeProjectorOneInvalidMakesWholeInvalid(t *testing.T) {
	factory := &fakeSourceFactory{projectors: map[int]*fakeSourceProjector{
		0: {valid: true},
		1: {valid: false},
	}}
	cpf := NewCompositeProjectorFactory(factory, NewDefaultAccumulateProjectorFactory(), nil, true, false)

	storage := NewRenderStorage()
	storage.CheckRenewData(4, 4, 2)
	dest := NewRenderResult(4, 4, 1)

	proj := cpf.NewProjector(fakeViewerState{sources: []int{0, 1}}, []int{0, 1}, dest, Identity3D(), 0, 0, storage)
	proj.Map(true)
	if proj.IsValid() {
		t.Fatal("IsValid() should be false when any source projector is invalid")
	}
}

func TestCompositeProjectorEmptySourcesIsTriviallyValid(t *testing.T) {
	factory := &fakeSourceFactory{projectors: map[int]*fakeSourceProjector{}}
	cpf := NewCompositeProjectorFactory(factory, NewDefaultAccumulateProjectorFactory(), nil, true, false)

	storage := NewRenderStorage()
	dest := NewRenderResult(4, 4, 1)

	proj := cpf.NewProjector(fakeViewerState{}, nil, dest, Identity3D(), 0, 0, storage)
	if ok := proj.Map(true); !ok {
		t.Fatal("Map() with no sources should succeed trivially")
	}
	if !proj.IsValid() {
		t.Fatal("Map() with no sources should be valid")
	}
}

func TestCompositeProjectorCancelBeforeMapReturnsFalse(t *testing.T) {
	factory := &fakeSourceFactory{projectors: map[int]*fakeSourceProjector{0: {valid: true}}}
	cpf := NewCompositeProjectorFactory(factory, NewDefaultAccumulateProjectorFactory(), nil, true, false)

	storage := NewRenderStorage()
	storage.CheckRenewData(4, 4, 1)
	dest := NewRenderResult(4, 4, 1)

	proj := cpf.NewProjector(fakeViewerState{sources: []int{0}}, []int{0}, dest, Identity3D(), 0, 0, storage)
	proj.Cancel()

	if ok := proj.Map(true); ok {
		t.Fatal("Map() after Cancel() should return false")
	}
}

func TestCompositeProjectorClearsDestinationWhenRequested(t *testing.T) {
	factory := &fakeSourceFactory{projectors: map[int]*fakeSourceProjector{0: {valid: true}}}
	cpf := NewCompositeProjectorFactory(factory, NewDefaultAccumulateProjectorFactory(), nil, true, false)

	storage := NewRenderStorage()
	storage.CheckRenewData(2, 2, 1)
	dest := NewRenderResult(2, 2, 1)
	dest.Image().SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	proj := cpf.NewProjector(fakeViewerState{sources: []int{0}}, []int{0}, dest, Identity3D(), 0, 0, storage)
	proj.Map(true)

	// Accumulate draws nothing (source image left blank), so the clear
	// should be the only thing visible.
	if c := dest.Image().RGBAAt(0, 0); c.R != 0 || c.G != 0 || c.B != 0 || c.A != 0 {
		t.Fatalf("pixel (0,0) = %v, want transparent after clearDestination", c)
	}
}
