package renderer

// ViewerState is an immutable snapshot of the viewer: current transform,
// visible source list, timepoint, interpolation mode, groups. The core
// treats it as an opaque external collaborator and never mutates it.
type ViewerState interface {
	// ViewerTransform returns the viewer's global transform for this
	// snapshot.
	ViewerTransform() AffineTransform3D

	// VisibleAndPresentSources returns the indices of sources that are
	// both visible and currently present, in a stable order.
	VisibleAndPresentSources() []int

	// BestMipMapLevel returns the mipmap level sourceIndex should be
	// sampled at for the given (pre-concatenated) screen transform. Chosen
	// by the snapshot, not a renderer concern.
	BestMipMapLevel(screenTransform AffineTransform3D, sourceIndex int) int
}
