package renderer

import (
	"sync"

	img "github.com/bdvrender/renderer/internal/image"
)

// RenderStorage is a pool of per-source ARGB scratch images and alpha masks
// dimensioned to the largest (finest) scale. Buffers are reused across
// passes to avoid allocation churn; the projector receives views into this
// storage.
//
// RenderStorage is safe for concurrent use, though in practice only the
// painter thread ever dispatches a projector that touches it.
type RenderStorage struct {
	mu sync.Mutex

	pool *img.Pool

	maxW, maxH int
	numSources int

	images []*img.ImageBuf
	masks  []*img.ImageBuf
}

// NewRenderStorage creates an empty storage pool.
func NewRenderStorage() *RenderStorage {
	return &RenderStorage{
		pool: img.NewPool(4),
	}
}

// CheckRenewData grows the pool on demand to fit maxW x maxH images for
// numSources sources. Returns true iff the storage was (re)allocated.
func (s *RenderStorage) CheckRenewData(maxW, maxH, numSources int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if maxW <= s.maxW && maxH <= s.maxH && numSources <= len(s.images) {
		return false
	}

	if maxW > s.maxW {
		s.maxW = maxW
	}
	if maxH > s.maxH {
		s.maxH = maxH
	}

	s.releaseLocked()

	s.numSources = numSources
	s.images = make([]*img.ImageBuf, numSources)
	s.masks = make([]*img.ImageBuf, numSources)
	for i := 0; i < numSources; i++ {
		s.images[i] = s.pool.Get(s.maxW, s.maxH, img.FormatRGBAPremul)
		s.masks[i] = s.pool.Get(s.maxW, s.maxH, img.FormatGray8)
	}
	return true
}

// Image returns the scratch ARGB buffer for a source index, or nil if out
// of range.
func (s *RenderStorage) Image(sourceIndex int) *img.ImageBuf {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sourceIndex < 0 || sourceIndex >= len(s.images) {
		return nil
	}
	return s.images[sourceIndex]
}

// Mask returns the scratch validity mask for a source index, or nil if out
// of range.
func (s *RenderStorage) Mask(sourceIndex int) *img.ImageBuf {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sourceIndex < 0 || sourceIndex >= len(s.masks) {
		return nil
	}
	return s.masks[sourceIndex]
}

// NumSources returns how many source slots are currently allocated.
func (s *RenderStorage) NumSources() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// Release returns all scratch buffers to the pool and drops references,
// permitting garbage collection.
func (s *RenderStorage) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked()
}

func (s *RenderStorage) releaseLocked() {
	for _, im := range s.images {
		s.pool.Put(im)
	}
	for _, m := range s.masks {
		s.pool.Put(m)
	}
	s.images = nil
	s.masks = nil
	s.numSources = 0
}
