// Package loader imports animated assets and blend tree definitions and caches them.
package loader

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/blendtree"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
)

// DefaultSampleRate is the rate in Hz at which keyframed animations are resampled.
const DefaultSampleRate = 30

var (
	ErrUnsupportedFormat = errors.New("unsupported asset format")
	ErrNoSkin            = errors.New("asset has no skin")
)

// Asset is an imported skeleton with its clips registered in the loader's arena.
type Asset struct {
	Name     string
	Skeleton *skeleton.Skeleton

	// Clips holds arena handles in document order.
	Clips []animation.ClipHandle

	// ClipNames holds the clip names in the same order as Clips.
	ClipNames []string
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	arena         animation.ClipArena
	sampleRate    float32
	skinIndex     int
	clipDurations map[string]float32

	assetCache map[string]*Asset
	treeCache  map[string]*blendtree.NodeDef

	backend loaderBackend
}

// Loader imports animated assets into a shared clip arena and caches them by path.
// All methods are safe for concurrent use.
type Loader interface {
	// LoadGLTF imports a .gltf or .glb file. If the path was loaded before, the cached asset is returned.
	//
	// Parameters:
	//   - path: the file path
	//
	// Returns:
	//   - *Asset: the skeleton and clip handles
	//   - error: ErrUnsupportedFormat, ErrNoSkin, animation.ErrDuplicateClip or an import error (wrapped)
	LoadGLTF(path string) (*Asset, error)

	// LoadReader imports a glTF JSON or GLB stream with embedded buffers and caches it by name.
	//
	// Parameters:
	//   - name: the cache key and asset name
	//   - r: the reader
	//
	// Returns:
	//   - *Asset: the skeleton and clip handles
	//   - error: error if the import fails
	LoadReader(name string, r io.Reader) (*Asset, error)

	// LoadBlendTree reads a JSON blend tree definition. Definitions are cached by path.
	//
	// Parameters:
	//   - path: the file path
	//
	// Returns:
	//   - *blendtree.NodeDef: the definition
	//   - error: error if the file cannot be read or is malformed
	LoadBlendTree(path string) (*blendtree.NodeDef, error)

	// Arena returns the arena every loaded clip is registered in.
	//
	// Returns:
	//   - animation.ClipArena: the clip arena
	Arena() animation.ClipArena

	// Get retrieves a cached asset by path or name.
	//
	// Parameters:
	//   - name: the cache key
	//
	// Returns:
	//   - *Asset: the asset, nil if not loaded
	//   - bool: whether the asset was found
	Get(name string) (*Asset, bool)

	// Assets returns a copy of the asset cache.
	//
	// Returns:
	//   - map[string]*Asset: all cached assets keyed by path or name
	Assets() map[string]*Asset
}

var _ Loader = &loader{}

// NewLoader creates a loader with its own arena, resampling at DefaultSampleRate.
//
// Parameters:
//   - options: functional options to configure the loader
//
// Returns:
//   - Loader: the loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		sampleRate: DefaultSampleRate,
		skinIndex:  -1,
		assetCache: make(map[string]*Asset),
		treeCache:  make(map[string]*blendtree.NodeDef),
	}
	for _, option := range options {
		option(l)
	}
	if l.arena == nil {
		l.arena = animation.NewClipArena()
	}
	l.backend = newGLTFLoaderBackend(l.sampleRate, l.skinIndex)
	return l
}

func (l *loader) LoadGLTF(path string) (*Asset, error) {
	if asset, ok := l.Get(path); ok {
		return asset, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}
	imported, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return l.register(path, imported)
}

func (l *loader) LoadReader(name string, r io.Reader) (*Asset, error) {
	if asset, ok := l.Get(name); ok {
		return asset, nil
	}

	imported, err := l.backend.LoadReader(name, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	return l.register(name, imported)
}

func (l *loader) LoadBlendTree(path string) (*blendtree.NodeDef, error) {
	l.mu.RLock()
	if def, ok := l.treeCache[path]; ok {
		l.mu.RUnlock()
		return def, nil
	}
	l.mu.RUnlock()

	def, err := blendtree.LoadDef(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.treeCache[path] = def
	l.mu.Unlock()
	return def, nil
}

func (l *loader) Arena() animation.ClipArena {
	return l.arena
}

func (l *loader) Get(name string) (*Asset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	asset, ok := l.assetCache[name]
	return asset, ok
}

func (l *loader) Assets() map[string]*Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.assetCache)
}

// register applies configured durations, adds the clips to the arena and caches the asset.
func (l *loader) register(key string, imported *importedAsset) (*Asset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if asset, ok := l.assetCache[key]; ok {
		return asset, nil
	}

	// Reject before adding anything so a failed asset leaves no clips behind.
	for _, clip := range imported.clips {
		if _, ok := l.arena.Handle(clip.Name()); ok {
			return nil, fmt.Errorf("register %s: clip %q: %w", key, clip.Name(), animation.ErrDuplicateClip)
		}
	}

	asset := &Asset{Name: imported.name, Skeleton: imported.skeleton}
	for _, clip := range imported.clips {
		if d, ok := l.clipDurations[clip.Name()]; ok {
			if err := clip.SetDuration(d); err != nil {
				return nil, fmt.Errorf("clip %q: %w", clip.Name(), err)
			}
		}
		h, err := l.arena.Add(clip)
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", key, err)
		}
		asset.Clips = append(asset.Clips, h)
		asset.ClipNames = append(asset.ClipNames, clip.Name())
	}
	l.assetCache[key] = asset

	common.Logger().Debug("asset registered", "key", key, "joints", asset.Skeleton.JointCount(), "clips", asset.ClipNames)
	return asset, nil
}

// resolveBackend selects a loader backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}
}
