package renderer

import (
	"image"
	"math"
	"sync"
)

// ScreenScale is an immutable descriptor of one rendering resolution.
type ScreenScale struct {
	// Scale is the screen-image-pixel per canvas-pixel ratio, in (0, 1].
	Scale float64
	// Width and Height are the integer screen-image dimensions.
	Width, Height int
	// ScaleTransform maps canvas coordinates to screen-image coordinates.
	ScaleTransform AffineTransform3D
	// EstimatedRenderNanos is Width*Height*nanosPerPixel as given when the
	// table was built (0 for tables built by CheckResize); the Suggest*
	// methods compute their own estimates and do not update it.
	EstimatedRenderNanos int64
}

func newScreenScale(canvasW, canvasH int, scale, nanosPerPixel float64) ScreenScale {
	w := int(math.Round(float64(canvasW) * scale))
	h := int(math.Round(float64(canvasH) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return ScreenScale{
		Scale:                scale,
		Width:                w,
		Height:               h,
		ScaleTransform:       ScreenScaleTransform(scale),
		EstimatedRenderNanos: int64(float64(w) * float64(h) * nanosPerPixel),
	}
}

// IntervalRenderData is the pulled, consolidated work unit for interval mode.
type IntervalRenderData struct {
	// TargetInterval is the axis-aligned bounding box over pending
	// intervals, in canvas coordinates.
	TargetInterval image.Rectangle
	// ScaleIndex is the chosen interval scale index.
	ScaleIndex int
	// OffsetX, OffsetY is the offset in screen-image coordinates (at
	// ScaleIndex's scale) for the cropped destination.
	OffsetX, OffsetY int
	// Width, Height, Scale describe the interval render image.
	Width, Height int
	Scale         float64
	// TX, TY is the paste-offset into the current full-frame RenderResult,
	// expressed in the base screen scale's coordinate space.
	TX, TY int
}

// ScreenScales is the ordered table of ScreenScale descriptors plus the
// pending dirty-interval set. Index 0 is the finest scale by convention;
// higher index is coarser.
//
// ScreenScales is safe for concurrent use: the painter thread calls
// CheckResize/Suggest*/PullIntervalRenderData while client threads call
// RequestInterval concurrently.
type ScreenScales struct {
	mu sync.Mutex

	factors           []float64
	targetRenderNanos int64

	canvasW, canvasH int
	scales           []ScreenScale

	hasPending bool
	pending    image.Rectangle
}

// NewScreenScales builds a table from a vector of scale factors (strictly
// decreasing recommended, not required) and a per-frame latency target.
func NewScreenScales(factors []float64, targetRenderNanos int64) *ScreenScales {
	cp := make([]float64, len(factors))
	copy(cp, factors)
	return &ScreenScales{
		factors:           cp,
		targetRenderNanos: targetRenderNanos,
	}
}

// CheckResize rebuilds the scale table and clears pending intervals if the
// canvas size changed. Returns true iff the table was rebuilt.
func (s *ScreenScales) CheckResize(w, h int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w == s.canvasW && h == s.canvasH && s.scales != nil {
		return false
	}

	s.canvasW, s.canvasH = w, h
	s.scales = make([]ScreenScale, len(s.factors))
	for i, f := range s.factors {
		// nanosPerPixel is not known at table-build time, so the stored
		// estimate is 0; Suggest* calls compute estimates from their own
		// nsPerPixel argument. The table fixes width/height/scale/transform.
		s.scales[i] = newScreenScale(w, h, f, 0)
	}
	s.hasPending = false
	s.pending = image.Rectangle{}
	return true
}

// Scales returns a snapshot of the current scale table.
func (s *ScreenScales) Scales() []ScreenScale {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ScreenScale, len(s.scales))
	copy(out, s.scales)
	return out
}

// Len returns the number of scales in the table.
func (s *ScreenScales) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scales)
}

// estimatedNanos returns width*height*nsPerPixel for the screen scale sc.
func estimatedNanos(sc ScreenScale, nsPerPixel float64) float64 {
	return float64(sc.Width) * float64(sc.Height) * nsPerPixel
}

// SuggestScreenScale chooses the smallest index whose estimated render time
// fits within the target, else the coarsest index.
func (s *ScreenScales) SuggestScreenScale(nsPerPixel float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestLocked(nsPerPixel, 0)
}

// SuggestIntervalScreenScale is like SuggestScreenScale but constrained to
// be no finer than currentScreenScaleIndex: intervals never render at a
// finer scale than the current full frame base.
func (s *ScreenScales) SuggestIntervalScreenScale(nsPerPixel float64, currentScreenScaleIndex int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestLocked(nsPerPixel, currentScreenScaleIndex)
}

func (s *ScreenScales) suggestLocked(nsPerPixel float64, minIndex int) int {
	if len(s.scales) == 0 {
		return -1
	}
	if minIndex < 0 {
		minIndex = 0
	}
	if minIndex >= len(s.scales) {
		minIndex = len(s.scales) - 1
	}
	target := float64(s.targetRenderNanos)
	for i := minIndex; i < len(s.scales); i++ {
		if estimatedNanos(s.scales[i], nsPerPixel) <= target {
			return i
		}
	}
	return len(s.scales) - 1
}

// RequestInterval unions a canvas-space interval into the pending set.
func (s *ScreenScales) RequestInterval(interval image.Rectangle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unionLocked(interval)
}

func (s *ScreenScales) unionLocked(interval image.Rectangle) {
	if interval.Empty() {
		return
	}
	if !s.hasPending {
		s.pending = interval
		s.hasPending = true
		return
	}
	s.pending = s.pending.Union(interval)
}

// ClearRequestedIntervals discards the pending dirty set (called on a
// full-frame request: a full frame obsoletes any pending interval).
func (s *ScreenScales) ClearRequestedIntervals() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasPending = false
	s.pending = image.Rectangle{}
}

// HasPendingInterval reports whether any interval is currently pending.
func (s *ScreenScales) HasPendingInterval() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPending
}

// PullIntervalRenderData atomically drains the pending intervals and
// computes a self-describing IntervalRenderData. Returns false if nothing
// was pending.
func (s *ScreenScales) PullIntervalRenderData(requestedIntervalScaleIndex, baseScreenScaleIndex int) (IntervalRenderData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasPending {
		return IntervalRenderData{}, false
	}
	rect := s.pending
	s.hasPending = false
	s.pending = image.Rectangle{}

	if requestedIntervalScaleIndex < 0 || requestedIntervalScaleIndex >= len(s.scales) {
		return IntervalRenderData{}, false
	}
	if baseScreenScaleIndex < 0 || baseScreenScaleIndex >= len(s.scales) {
		baseScreenScaleIndex = requestedIntervalScaleIndex
	}

	intervalScale := s.scales[requestedIntervalScaleIndex].Scale
	baseScale := s.scales[baseScreenScaleIndex].Scale

	offsetX := int(math.Floor(float64(rect.Min.X) * intervalScale))
	offsetY := int(math.Floor(float64(rect.Min.Y) * intervalScale))
	maxX := int(math.Ceil(float64(rect.Max.X) * intervalScale))
	maxY := int(math.Ceil(float64(rect.Max.Y) * intervalScale))
	width := maxX - offsetX
	height := maxY - offsetY
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	tx := int(math.Floor(float64(rect.Min.X) * baseScale))
	ty := int(math.Floor(float64(rect.Min.Y) * baseScale))

	return IntervalRenderData{
		TargetInterval: rect,
		ScaleIndex:     requestedIntervalScaleIndex,
		OffsetX:        offsetX,
		OffsetY:        offsetY,
		Width:          width,
		Height:         height,
		Scale:          intervalScale,
		TX:             tx,
		TY:             ty,
	}, true
}

// ReRequest puts an interval back into the pending set after its projector
// was cancelled, so the work is not lost.
func (s *ScreenScales) ReRequest(data IntervalRenderData) {
	s.RequestInterval(data.TargetInterval)
}
