package renderer

import (
	"image"
	"log/slog"
	"sync"
	"time"

	parallel "github.com/bdvrender/renderer/internal/parallel"
)

// MultiResolutionRenderer is the coarse-to-fine scheduling state machine.
// A single dedicated painter thread calls Paint; client threads call
// RequestRepaint / RequestRepaintInterval concurrently.
type MultiResolutionRenderer struct {
	mu sync.Mutex

	screenScales     *ScreenScales
	display          Display
	cacheControl     CacheControl
	projectorFactory ProjectorFactory
	logger           *slog.Logger
	ownedExecutor    *parallel.WorkerPool

	// Renderer state.
	currentScreenScaleIndex     int
	requestedScreenScaleIndex   int
	currentIntervalScaleIndex   int
	requestedIntervalScaleIndex int
	renderingMayBeCancelled     bool
	intervalMode                bool
	newFrameRequest             bool
	newIntervalRequest          bool
	currentViewerState          ViewerState
	currentNumVisibleSources    int
	projector                   VolatileProjector
	currentRenderResult         *RenderResult

	pendingIntervalData IntervalRenderData
	intervalResult      *RenderResult

	storage *RenderStorage
	avg     *MovingAverage

	killed bool
}

// NewMultiResolutionRenderer constructs a renderer. sourceProjectorFactory
// is the per-source projector contract, an external collaborator;
// cacheControl is the block cache / IO budget collaborator.
func NewMultiResolutionRenderer(
	screenScaleFactors []float64,
	display Display,
	sourceProjectorFactory SourceProjectorFactory,
	cacheControl CacheControl,
	opts ...Option,
) *MultiResolutionRenderer {
	o := defaultRendererOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = Logger()
	}

	accFactory := o.accumulateProjectorFactory
	if accFactory == nil {
		accFactory = NewDefaultAccumulateProjectorFactory()
	}

	r := &MultiResolutionRenderer{
		screenScales:                NewScreenScales(screenScaleFactors, o.targetRenderNanos),
		display:                     display,
		cacheControl:                cacheControl,
		logger:                      logger,
		storage:                     NewRenderStorage(),
		avg:                         NewMovingAverage(500), // seeded at 500ns/pixel
		currentScreenScaleIndex:     lastIndex(screenScaleFactors),
		requestedScreenScaleIndex:   lastIndex(screenScaleFactors),
		currentIntervalScaleIndex:   -1,
		requestedIntervalScaleIndex: -1,
		renderingMayBeCancelled:     false,
	}

	executor := o.executor
	if executor == nil {
		pool := parallel.NewWorkerPool(o.numRenderingThreads)
		r.ownedExecutor = pool
		executor = pool
	}

	r.projectorFactory = NewCompositeProjectorFactory(
		sourceProjectorFactory,
		accFactory,
		executor,
		o.useVolatileIfAvailable,
		o.requestNewFrameIfIncomplete,
	)

	return r
}

func lastIndex(s []float64) int {
	if len(s) == 0 {
		return -1
	}
	return len(s) - 1
}

// RequestRepaint is a full-frame request. If the in-flight pass may be
// cancelled, its projector is cancelled immediately so the new request can
// be serviced sooner.
func (r *MultiResolutionRenderer) RequestRepaint() {
	r.mu.Lock()
	r.newFrameRequest = true
	cancellable := r.renderingMayBeCancelled
	proj := r.projector
	r.mu.Unlock()

	if cancellable && proj != nil {
		proj.Cancel()
	}
}

// RequestRepaintInterval is a dirty-interval request: only the pixels
// within interval (canvas coordinates) need to be refreshed. The
// interval is unioned into any already-pending interval and serviced in
// interval mode. If a full-frame request is already pending, the interval
// is dropped: the coming full-frame pass already covers it.
func (r *MultiResolutionRenderer) RequestRepaintInterval(interval image.Rectangle) {
	r.mu.Lock()
	if r.newFrameRequest {
		r.mu.Unlock()
		return
	}
	if !r.renderingMayBeCancelled && !r.intervalMode {
		// Committing a non-cancellable full-frame result: an interval request
		// can't be serviced underneath it, so escalate to a full repaint.
		r.mu.Unlock()
		r.RequestRepaint()
		return
	}
	r.screenScales.RequestInterval(interval)
	r.newIntervalRequest = true
	cancellable := r.renderingMayBeCancelled
	proj := r.projector
	r.mu.Unlock()

	if cancellable && proj != nil {
		proj.Cancel()
	}
}

// iterateRepaintLocked schedules another full-frame pass at scaleIndex without
// going through the public RequestRepaint obsoletion rules. Caller must
// hold r.mu.
func (r *MultiResolutionRenderer) iterateRepaintLocked(scaleIndex int) {
	r.requestedScreenScaleIndex = scaleIndex
}

// iterateRepaintIntervalLocked schedules another interval pass at
// scaleIndex. Caller must hold r.mu.
func (r *MultiResolutionRenderer) iterateRepaintIntervalLocked(scaleIndex int) {
	r.requestedIntervalScaleIndex = scaleIndex
}

// Kill releases references to permit garbage collection. Safe to call
// once rendering has quiesced; does not itself cancel an in-flight pass.
func (r *MultiResolutionRenderer) Kill() {
	r.mu.Lock()
	r.killed = true
	r.projector = nil
	r.currentRenderResult = nil
	r.intervalResult = nil
	r.mu.Unlock()

	r.storage.Release()
	if r.ownedExecutor != nil {
		r.ownedExecutor.Close()
	}
}

// CurrentScreenScaleIndex returns the last committed full-frame scale
// index, for tests and diagnostics.
func (r *MultiResolutionRenderer) CurrentScreenScaleIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentScreenScaleIndex
}

// RequestedScreenScaleIndex returns -1 once the canvas is fully resolved
// and no repaint is pending.
func (r *MultiResolutionRenderer) RequestedScreenScaleIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requestedScreenScaleIndex
}

// IsIntervalMode reports whether the renderer is currently servicing dirty
// intervals rather than a full frame.
func (r *MultiResolutionRenderer) IsIntervalMode() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.intervalMode
}

// Paint runs one iteration of the state machine for the given viewer
// snapshot. It must only ever be called from the single painter thread.
// Returns whether the pass committed (succeeded without cancellation).
func (r *MultiResolutionRenderer) Paint(snapshot ViewerState) bool {
	canvasW, canvasH := r.display.Width(), r.display.Height()
	if canvasW <= 0 || canvasH <= 0 {
		return false
	}

	// ---- Phase 1: request classification (under lock) ----
	r.mu.Lock()
	if r.killed {
		r.mu.Unlock()
		return false
	}

	resized := r.screenScales.CheckResize(canvasW, canvasH)

	newFrame := r.newFrameRequest || resized
	if newFrame {
		r.intervalMode = false
		r.screenScales.ClearRequestedIntervals()
	}

	newInterval := r.newIntervalRequest && !newFrame
	if newInterval {
		r.intervalMode = true
		r.requestedIntervalScaleIndex = r.screenScales.SuggestIntervalScreenScale(
			r.avg.GetAverage()*float64(max1(r.currentNumVisibleSources)), r.currentScreenScaleIndex)
	}

	prepareNextFrame := newFrame || newInterval
	paintInterval := r.intervalMode

	var createIntervalProjector bool
	if paintInterval {
		createIntervalProjector = newInterval || r.requestedIntervalScaleIndex != r.currentIntervalScaleIndex
	}

	r.newFrameRequest = false
	r.newIntervalRequest = false
	r.mu.Unlock()

	// ---- Phase 2: frame preparation (outside lock) ----
	if prepareNextFrame && r.cacheControl != nil {
		r.cacheControl.PrepareNextFrame()
	}

	if newFrame {
		r.mu.Lock()
		r.currentViewerState = snapshot
		r.currentNumVisibleSources = len(snapshot.VisibleAndPresentSources())
		r.requestedScreenScaleIndex = r.screenScales.SuggestScreenScale(
			r.avg.GetAverage() * float64(max1(r.currentNumVisibleSources)))
		r.mu.Unlock()
	}

	// ---- Phase 3: projector creation ----
	if paintInterval {
		return r.paintInterval(snapshot, createIntervalProjector, newInterval)
	}
	return r.paintFullFrame(snapshot, newFrame)
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func (r *MultiResolutionRenderer) paintInterval(snapshot ViewerState, createProjector, newInterval bool) bool {
	r.mu.Lock()
	if createProjector {
		data, ok := r.screenScales.PullIntervalRenderData(r.requestedIntervalScaleIndex, r.currentScreenScaleIndex)
		if !ok {
			// Nothing pending after all; fall back to leaving interval mode.
			r.intervalMode = false
			r.mu.Unlock()
			return false
		}
		r.pendingIntervalData = data
		r.intervalResult = NewRenderResult(data.Width, data.Height, data.Scale)
		r.intervalResult.SetViewerTransform(snapshot.ViewerTransform())

		sources := snapshot.VisibleAndPresentSources()
		r.storage.CheckRenewData(data.Width, data.Height, len(sources))

		if r.cacheControl != nil {
			r.cacheControl.SetIOBudget(DefaultIOBudget)
		}

		screenTransform := snapshot.ViewerTransform().Concatenate(
			Translate3D(float64(-data.OffsetX), float64(-data.OffsetY), 0).Concatenate(
				ScreenScaleTransform(data.Scale)))

		r.projector = r.projectorFactory.NewProjector(snapshot, sources, r.intervalResult, screenTransform, 0, 0, r.storage)
	}
	r.renderingMayBeCancelled = !newInterval
	proj := r.projector
	data := r.pendingIntervalData
	intervalResult := r.intervalResult
	r.mu.Unlock()

	// ---- Phase 4: render ----
	success := proj.Map(createProjector)
	renderNanos := proj.LastFrameRenderNanos()

	// ---- Phase 5: disposition ----
	r.mu.Lock()
	defer r.mu.Unlock()

	if !success {
		r.screenScales.ReRequest(data)
		return false
	}

	if createProjector {
		r.currentIntervalScaleIndex = data.ScaleIndex
	}

	if r.currentRenderResult != nil {
		r.currentRenderResult.Patch(intervalResult, data.TargetInterval, data.TX, data.TY)
		r.display.SetRenderResult(r.currentRenderResult)
	}

	switch {
	case r.currentIntervalScaleIndex > r.currentScreenScaleIndex:
		r.iterateRepaintIntervalLocked(r.currentIntervalScaleIndex - 1)
	case proj.IsValid():
		r.intervalMode = false
		if r.requestedScreenScaleIndex >= 0 && r.requestedScreenScaleIndex == r.currentScreenScaleIndex {
			r.currentScreenScaleIndex++
		}
		r.newFrameRequest = true
	default:
		time.Sleep(time.Millisecond)
		r.screenScales.ReRequest(data)
		r.iterateRepaintIntervalLocked(r.currentIntervalScaleIndex)
	}

	_ = renderNanos // interval passes never feed the estimator
	return true
}

func (r *MultiResolutionRenderer) paintFullFrame(snapshot ViewerState, newFrame bool) bool {
	r.mu.Lock()
	createProjector := newFrame || r.requestedScreenScaleIndex != r.currentScreenScaleIndex

	var dest *RenderResult
	var requestNewIfIncomplete bool
	if createProjector {
		if r.requestedScreenScaleIndex < 0 {
			r.mu.Unlock()
			return true
		}
		scales := r.screenScales.Scales()
		sc := scales[r.requestedScreenScaleIndex]

		dest = r.display.GetReusableRenderResult(sc.Width, sc.Height, sc.Scale)
		dest.SetViewerTransform(snapshot.ViewerTransform())

		sources := snapshot.VisibleAndPresentSources()
		r.storage.CheckRenewData(sc.Width, sc.Height, len(sources))

		if r.cacheControl != nil {
			r.cacheControl.SetIOBudget(DefaultIOBudget)
		}

		screenTransform := snapshot.ViewerTransform().Concatenate(sc.ScaleTransform)
		r.projector = r.projectorFactory.NewProjector(snapshot, sources, dest, screenTransform, 0, 0, r.storage)
		requestNewIfIncomplete = r.projectorFactory.RequestNewFrameIfIncomplete()
	} else {
		dest = r.currentRenderResult
	}
	r.renderingMayBeCancelled = !newFrame
	proj := r.projector
	r.mu.Unlock()

	// ---- Phase 4: render ----
	success := proj.Map(createProjector)
	renderNanos := proj.LastFrameRenderNanos()

	// ---- Phase 5: disposition ----
	r.mu.Lock()
	defer r.mu.Unlock()

	if !success {
		return false
	}

	if createProjector {
		r.currentScreenScaleIndex = r.requestedScreenScaleIndex
		dest.SetUpdated()
		r.display.SetRenderResult(dest)
		r.currentRenderResult = dest

		if r.currentNumVisibleSources > 0 {
			numPixels := float64(dest.Bounds().Dx() * dest.Bounds().Dy())
			r.avg.Add(float64(renderNanos) / (numPixels * float64(r.currentNumVisibleSources)))
		}
	} else if dest != nil {
		dest.SetUpdated()
	}

	switch {
	case !proj.IsValid() && requestNewIfIncomplete:
		r.mu.Unlock()
		r.RequestRepaint()
		r.mu.Lock()
	case r.currentScreenScaleIndex > 0:
		r.iterateRepaintLocked(r.currentScreenScaleIndex - 1)
	case proj.IsValid():
		r.requestedScreenScaleIndex = -1
	default:
		time.Sleep(time.Millisecond)
		r.iterateRepaintLocked(r.currentScreenScaleIndex)
	}

	return true
}
