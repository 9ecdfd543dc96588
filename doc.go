// Copyright 2026 The bdvrender Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package renderer implements a multi-resolution, progressive renderer for
// large N-dimensional scientific image volumes.
//
// # Overview
//
// A MultiResolutionRenderer keeps an interactively navigated view of a large
// volume dataset responsive under arbitrary pan/zoom/rotate transforms by
// rendering coarse approximations first and progressively refining them
// towards a fully-resolved frame, backed by pyramid ("mipmap") source data
// served through a volatile block cache.
//
// # Quick start
//
//	r := renderer.NewMultiResolutionRenderer(
//	    screenScaleFactors,
//	    display,
//	    sourceProjectorFactory,
//	    cacheControl,
//	    renderer.WithTargetRenderNanos(30_000_000),
//	)
//	r.RequestRepaint()
//	ok := r.Paint(snapshot)
//
// # Architecture
//
// The package is organized the way the scheduling state machine composes:
//
//   - MovingAverage: rolling per-pixel time estimator.
//   - ScreenScales: the resolution ladder and pending dirty-interval set.
//   - RenderStorage: pooled per-source scratch buffers.
//   - RenderResult: the addressable destination image.
//   - ProjectorFactory / VolatileProjector: external rendering contract.
//   - MultiResolutionRenderer: the scheduling state machine itself.
//
// Sibling packages provide reference implementations of the external
// collaborators (display, block cache, volume source) so the core can be
// exercised end-to-end; the GUI, persistence, and actual pixel rasterization
// are explicitly out of scope.
package renderer
