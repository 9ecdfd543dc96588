// Package volsource provides a synthetic N-dimensional volume source used
// to exercise a MultiResolutionRenderer end to end without a real image
// pyramid backend. It generates a procedural checkerboard per level via a
// box-filtered mipmap chain built with
// github.com/bdvrender/renderer/internal/image.GenerateMipmaps, and
// fetches level data through a blockcache.Cache to exercise the block
// cache / IO budget collaborators.
package volsource

import (
	"math"
	"time"

	"github.com/bdvrender/renderer"
	"github.com/bdvrender/renderer/blockcache"
	img "github.com/bdvrender/renderer/internal/image"
)

// Source is a procedurally generated, mipmapped volume. Level 0 is
// baseSize x baseSize; each further level is half the resolution.
type Source struct {
	index    int
	baseSize int
	chain    *img.MipmapChain
}

// NewSource builds a checkerboard-patterned source with the given level-0
// resolution.
func NewSource(index, baseSize int) *Source {
	base, err := img.NewImageBuf(baseSize, baseSize, img.FormatRGBAPremul)
	if err != nil {
		return &Source{index: index, baseSize: baseSize}
	}
	const cell = 8
	for y := 0; y < baseSize; y++ {
		for x := 0; x < baseSize; x++ {
			if (x/cell+y/cell)%2 == 0 {
				_ = base.SetRGBA(x, y, 220, 220, 220, 255)
			} else {
				_ = base.SetRGBA(x, y, 40, 40, 40, 255)
			}
		}
	}
	return &Source{index: index, baseSize: baseSize, chain: img.GenerateMipmaps(base)}
}

// Index returns this source's index as used in ViewerState.
func (s *Source) Index() int { return s.index }

// NumLevels returns the number of mipmap levels available.
func (s *Source) NumLevels() int { return s.chain.NumLevels() }

// LevelForScale returns the mipmap level appropriate for a screen-space
// scale factor (1.0 = full resolution).
func (s *Source) LevelForScale(scale float64) *img.ImageBuf {
	return s.chain.LevelForScale(scale)
}

// DemoViewer is a minimal renderer.ViewerState: a fixed viewer transform
// over a fixed set of sources, with the mip level chosen per screen
// transform by BestMipMapLevel.
type DemoViewer struct {
	Transform renderer.AffineTransform3D
	Sources   []int
}

// ViewerTransform implements renderer.ViewerState.
func (v DemoViewer) ViewerTransform() renderer.AffineTransform3D { return v.Transform }

// VisibleAndPresentSources implements renderer.ViewerState.
func (v DemoViewer) VisibleAndPresentSources() []int { return v.Sources }

// BestMipMapLevel implements renderer.ViewerState. The screen scale
// magnitude (the XY length of the transformed X unit vector) determines which pyramid
// level best matches the requested screen resolution.
func (v DemoViewer) BestMipMapLevel(screenTransform renderer.AffineTransform3D, sourceIndex int) int {
	sx, sy, _ := screenTransform.Apply(1, 0, 0)
	ox, oy, _ := screenTransform.Apply(0, 0, 0)
	dx, dy := sx-ox, sy-oy
	scale := math.Hypot(dx, dy)
	if scale <= 0 {
		return 0
	}
	level := int(math.Floor(-math.Log2(scale)))
	if level < 0 {
		level = 0
	}
	return level
}

// Factory is a renderer.SourceProjectorFactory backed by a fixed set of
// Sources and a shared blockcache.Cache.
type Factory struct {
	sources []*Source
	cache   *blockcache.Cache
}

// NewFactory builds a Factory over sources, fetching block data through
// cache.
func NewFactory(sources []*Source, cache *blockcache.Cache) *Factory {
	return &Factory{sources: sources, cache: cache}
}

// NewSourceProjector implements renderer.SourceProjectorFactory.
func (f *Factory) NewSourceProjector(snapshot renderer.ViewerState, sourceIndex int, screenTransform renderer.AffineTransform3D, storage *renderer.RenderStorage, useVolatileIfAvailable bool) renderer.VolatileProjector {
	var src *Source
	for _, s := range f.sources {
		if s.index == sourceIndex {
			src = s
			break
		}
	}
	return &sourceProjector{
		factory:         f,
		src:             src,
		sourceIndex:     sourceIndex,
		snapshot:        snapshot,
		screenTransform: screenTransform,
		storage:         storage,
		useVolatile:     useVolatileIfAvailable,
	}
}

// sourceProjector renders one source's checkerboard level into storage's
// scratch buffer for sourceIndex, fetching the level's block through the
// cache.Cache to exercise the cache-miss/placeholder path.
type sourceProjector struct {
	factory         *Factory
	src             *Source
	sourceIndex     int
	snapshot        renderer.ViewerState
	screenTransform renderer.AffineTransform3D
	storage         *renderer.RenderStorage
	useVolatile     bool

	cancelled bool
	valid     bool
	nanos     int64
}

// Map implements renderer.VolatileProjector.
func (p *sourceProjector) Map(clearDestination bool) bool {
	start := time.Now()
	defer func() { p.nanos = time.Since(start).Nanoseconds() }()

	if p.cancelled || p.src == nil {
		p.valid = false
		return !p.cancelled
	}

	dst := p.storage.Image(p.sourceIndex)
	mask := p.storage.Mask(p.sourceIndex)
	if dst == nil {
		p.valid = false
		return true
	}

	level := p.snapshot.BestMipMapLevel(p.screenTransform, p.sourceIndex)
	key := blockcache.BlockKey{Source: p.sourceIndex, Level: level}

	block, hit := p.factory.cache.Get(key)
	authoritative := hit && block.Authoritative
	if !hit {
		p.factory.cache.Put(key, Block(level))
		authoritative = false
		if p.useVolatile {
			// Placeholder pass: fall back to the coarsest available level
			// while the "real" fetch above seeds the cache for next time.
			level = p.src.NumLevels() - 1
		}
	}

	lvl := p.src.LevelForScale(math.Pow(2, float64(-level)))
	w, h := dst.Bounds()
	if lvl != nil {
		lw, lh := lvl.Bounds()
		for y := 0; y < h; y++ {
			sy := y % max1(lh)
			for x := 0; x < w; x++ {
				sx := x % max1(lw)
				r, g, b, a := lvl.GetRGBA(sx, sy)
				_ = dst.SetRGBA(x, y, r, g, b, a)
				if mask != nil {
					mv := uint8(255)
					if !authoritative {
						mv = 0
					}
					_ = mask.SetRGBA(x, y, mv, mv, mv, 255)
				}
			}
		}
	}

	p.valid = authoritative
	return true
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Block returns a synthetic Block standing in for a fetched mipmap level;
// authoritative once actually resident (the second Get call for the same
// key will hit).
func Block(level int) blockcache.Block {
	return blockcache.Block{Data: []byte{byte(level)}, Authoritative: true}
}

// Cancel implements renderer.VolatileProjector.
func (p *sourceProjector) Cancel() { p.cancelled = true }

// IsValid implements renderer.VolatileProjector.
func (p *sourceProjector) IsValid() bool { return p.valid }

// LastFrameRenderNanos implements renderer.VolatileProjector.
func (p *sourceProjector) LastFrameRenderNanos() int64 { return p.nanos }

var _ renderer.SourceProjectorFactory = (*Factory)(nil)
var _ renderer.ViewerState = DemoViewer{}
