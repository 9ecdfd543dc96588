package renderer

import "log/slog"

// Option configures a MultiResolutionRenderer during construction,
// following the functional-options pattern.
type Option func(*rendererOptions)

type rendererOptions struct {
	targetRenderNanos           int64
	numRenderingThreads         int
	executor                    Executor
	useVolatileIfAvailable      bool
	accumulateProjectorFactory  AccumulateProjectorFactory
	requestNewFrameIfIncomplete bool
	logger                      *slog.Logger
}

func defaultRendererOptions() rendererOptions {
	return rendererOptions{
		targetRenderNanos:      30_000_000,
		numRenderingThreads:    1,
		useVolatileIfAvailable: true,
	}
}

// WithTargetRenderNanos sets the per-frame latency goal driving scale
// selection.
func WithTargetRenderNanos(nanos int64) Option {
	return func(o *rendererOptions) { o.targetRenderNanos = nanos }
}

// WithRenderingThreads sets the number of workers in the pool the renderer
// creates when no executor is supplied (see WithExecutor); it has no effect
// when an executor is supplied. The default composite projector submits one
// task per visible source and does not split a source's work further.
func WithRenderingThreads(n int) Option {
	return func(o *rendererOptions) {
		if n > 0 {
			o.numRenderingThreads = n
		}
	}
}

// WithExecutor supplies an external thread pool for the projector; if
// unset the renderer creates its own worker pool with the configured
// number of rendering threads and closes it in Kill.
func WithExecutor(e Executor) Option {
	return func(o *rendererOptions) { o.executor = e }
}

// WithVolatileIfAvailable controls whether volatile (cache-async)
// per-source projectors are preferred.
func WithVolatileIfAvailable(v bool) Option {
	return func(o *rendererOptions) { o.useVolatileIfAvailable = v }
}

// WithAccumulateProjectorFactory supplies a custom source-composition
// strategy. If unset, a default alpha-over accumulator is used.
func WithAccumulateProjectorFactory(f AccumulateProjectorFactory) Option {
	return func(o *rendererOptions) { o.accumulateProjectorFactory = f }
}

// WithRequestNewFrameIfIncomplete controls whether an invalid full-frame
// result triggers a fresh full-frame request instead of a same-scale
// retry.
func WithRequestNewFrameIfIncomplete(v bool) Option {
	return func(o *rendererOptions) { o.requestNewFrameIfIncomplete = v }
}

// WithLogger sets the logger stored on this renderer instance. If unset, the
// package logger (see SetLogger) is stored. The renderer emits no log
// records through it.
func WithLogger(l *slog.Logger) Option {
	return func(o *rendererOptions) { o.logger = l }
}
