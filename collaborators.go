package renderer

import "time"

// Display is the render target collaborator.
type Display interface {
	Width() int
	Height() int

	// CreateRenderResult allocates a fresh RenderResult of the given size
	// and scale factor.
	CreateRenderResult(width, height int, scaleFactor float64) *RenderResult

	// GetReusableRenderResult returns a RenderResult of the given size and
	// scale factor, reusing a previously published one when possible.
	GetReusableRenderResult(width, height int, scaleFactor float64) *RenderResult

	// SetRenderResult publishes r as the current displayed result.
	SetRenderResult(r *RenderResult)
}

// IOBudget is the per-frame IO timing budget the renderer sets on the
// cache control collaborator at projector creation.
type IOBudget struct {
	FrameBudget    time.Duration
	PerBlockBudget time.Duration
}

// DefaultIOBudget is the budget the renderer installs at projector
// creation: a 100ms frame budget and a 10ms per-block budget.
var DefaultIOBudget = IOBudget{
	FrameBudget:    100 * time.Millisecond,
	PerBlockBudget: 10 * time.Millisecond,
}

// CacheControl is the external coordinator of block fetches and per-frame
// IO budgets.
type CacheControl interface {
	// PrepareNextFrame directs the block cache to age/prioritize for an
	// upcoming frame or interval batch. Called exactly once per new frame
	// or new interval batch, never per finer iteration within that batch.
	PrepareNextFrame()

	// SetIOBudget installs the per-frame/per-block IO timing budget.
	SetIOBudget(budget IOBudget)
}
