package renderer

import (
	"image"
	"sync"
	"time"
)

// VolatileProjector is the external rendering contract: one blocking,
// cancellable rendering pass that reports its own validity and timing.
type VolatileProjector interface {
	// Map produces one pass, blocking until done or cancelled. Returns
	// false iff cancelled; any other termination is success, with IsValid
	// possibly false.
	Map(clearDestination bool) bool

	// Cancel idempotently requests abort at the next safe point. Safe to
	// call concurrently with Map.
	Cancel()

	// IsValid reports, after Map returned true, whether all sampled data
	// was authoritative (no placeholder fallbacks).
	IsValid() bool

	// LastFrameRenderNanos returns wall time spent in the last Map call.
	LastFrameRenderNanos() int64
}

// Executor runs a batch of work items, distributing them across workers and
// waiting for all to complete. *internal/parallel.WorkerPool satisfies this.
type Executor interface {
	ExecuteAll(work []func())
}

// SourceProjectorFactory builds a single-source projector: the code that
// actually samples one source's mipmap data through screenTransform and
// writes it into storage's scratch slot for sourceIndex.
type SourceProjectorFactory interface {
	NewSourceProjector(snapshot ViewerState, sourceIndex int, screenTransform AffineTransform3D, storage *RenderStorage, useVolatileIfAvailable bool) VolatileProjector
}

// AccumulateProjector combines the per-source scratch renders already
// present in storage into dest, at the given destination offset.
type AccumulateProjector interface {
	Accumulate(sources []int, storage *RenderStorage, dest *image.RGBA, offsetX, offsetY int) (valid bool)
}

// AccumulateProjectorFactory builds the AccumulateProjector to use for a
// render pass.
type AccumulateProjectorFactory interface {
	NewAccumulateProjector() AccumulateProjector
}

// ProjectorFactory builds a composite projector for a viewer snapshot,
// destination, and screen transform.
type ProjectorFactory interface {
	// NewProjector builds a projector rendering sources into dest's image
	// at (offsetX, offsetY), using screenTransform pre-concatenated with
	// the chosen scale transform (and offset-translated for interval
	// mode).
	NewProjector(snapshot ViewerState, sources []int, dest *RenderResult, screenTransform AffineTransform3D, offsetX, offsetY int, storage *RenderStorage) VolatileProjector

	// RequestNewFrameIfIncomplete is the policy flag: should the renderer
	// trigger a new frame (calling prepareNextFrame) if the current one
	// ends with invalid data?
	RequestNewFrameIfIncomplete() bool
}

// CompositeProjectorFactory is the reference ProjectorFactory
// implementation: it dispatches one SourceProjector per visible source,
// optionally in parallel across an Executor, then combines the results with
// an AccumulateProjector.
type CompositeProjectorFactory struct {
	sourceFactory      SourceProjectorFactory
	accumulateFactory  AccumulateProjectorFactory
	executor           Executor
	useVolatile        bool
	requestNewIfPartial bool
}

// NewCompositeProjectorFactory builds the default ProjectorFactory.
func NewCompositeProjectorFactory(
	sourceFactory SourceProjectorFactory,
	accumulateFactory AccumulateProjectorFactory,
	executor Executor,
	useVolatileIfAvailable bool,
	requestNewFrameIfIncomplete bool,
) *CompositeProjectorFactory {
	return &CompositeProjectorFactory{
		sourceFactory:       sourceFactory,
		accumulateFactory:   accumulateFactory,
		executor:            executor,
		useVolatile:         useVolatileIfAvailable,
		requestNewIfPartial: requestNewFrameIfIncomplete,
	}
}

// RequestNewFrameIfIncomplete implements ProjectorFactory.
func (f *CompositeProjectorFactory) RequestNewFrameIfIncomplete() bool {
	return f.requestNewIfPartial
}

// NewProjector implements ProjectorFactory.
func (f *CompositeProjectorFactory) NewProjector(snapshot ViewerState, sources []int, dest *RenderResult, screenTransform AffineTransform3D, offsetX, offsetY int, storage *RenderStorage) VolatileProjector {
	return &compositeProjector{
		factory:         f,
		snapshot:        snapshot,
		sources:         sources,
		dest:            dest,
		screenTransform: screenTransform,
		offsetX:         offsetX,
		offsetY:         offsetY,
		storage:         storage,
	}
}

// compositeProjector is the VolatileProjector built by
// CompositeProjectorFactory for one render pass.
type compositeProjector struct {
	factory         *CompositeProjectorFactory
	snapshot        ViewerState
	sources         []int
	dest            *RenderResult
	screenTransform AffineTransform3D
	offsetX, offsetY int
	storage         *RenderStorage

	mu        sync.Mutex
	cancelled bool
	active    []VolatileProjector

	lastRenderNanos int64
	valid           bool
}

// Map implements VolatileProjector.
func (p *compositeProjector) Map(clearDestination bool) bool {
	start := time.Now()

	if p.isCancelled() {
		return false
	}

	if len(p.sources) == 0 {
		p.mu.Lock()
		p.valid = true
		p.lastRenderNanos = time.Since(start).Nanoseconds()
		p.mu.Unlock()
		return true
	}

	if clearDestination {
		img := p.dest.Image()
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				img.Set(x, y, image.Transparent)
			}
		}
	}

	sourceResults := make([]VolatileProjector, len(p.sources))
	work := make([]func(), len(p.sources))
	for i, srcIdx := range p.sources {
		i, srcIdx := i, srcIdx
		sp := p.factory.sourceFactory.NewSourceProjector(p.snapshot, srcIdx, p.screenTransform, p.storage, p.factory.useVolatile)
		sourceResults[i] = sp
		work[i] = func() { sp.Map(true) }
	}

	p.mu.Lock()
	if p.cancelled {
		p.mu.Unlock()
		return false
	}
	p.active = sourceResults
	p.mu.Unlock()

	if p.factory.executor != nil {
		p.factory.executor.ExecuteAll(work)
	} else {
		for _, w := range work {
			w()
		}
	}

	p.mu.Lock()
	cancelled := p.cancelled
	p.active = nil
	p.mu.Unlock()
	if cancelled {
		return false
	}

	allValid := true
	for _, sp := range sourceResults {
		if !sp.IsValid() {
			allValid = false
		}
	}

	accumulator := p.factory.accumulateFactory.NewAccumulateProjector()
	accValid := accumulator.Accumulate(p.sources, p.storage, p.dest.Image(), p.offsetX, p.offsetY)

	p.mu.Lock()
	p.valid = allValid && accValid
	p.lastRenderNanos = time.Since(start).Nanoseconds()
	p.mu.Unlock()

	return true
}

// Cancel implements VolatileProjector.
func (p *compositeProjector) Cancel() {
	p.mu.Lock()
	p.cancelled = true
	active := p.active
	p.mu.Unlock()
	for _, sp := range active {
		sp.Cancel()
	}
}

func (p *compositeProjector) isCancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

// IsValid implements VolatileProjector.
func (p *compositeProjector) IsValid() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.valid
}

// LastFrameRenderNanos implements VolatileProjector.
func (p *compositeProjector) LastFrameRenderNanos() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRenderNanos
}
