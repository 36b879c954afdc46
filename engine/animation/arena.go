package animation

import (
	"fmt"
	"sort"
	"sync"
)

// ClipHandle addresses a clip stored in a ClipArena.
type ClipHandle int

// InvalidClip is the handle returned when a lookup fails.
const InvalidClip ClipHandle = -1

// clipArena is the implementation of the ClipArena interface.
type clipArena struct {
	mu sync.RWMutex

	clips  []*AnimationClip
	byName map[string]ClipHandle
}

// ClipArena owns every clip loaded for a session. Blend trees and controllers refer to clips
// by handle, so a clip is stored once no matter how many trees sample it.
// Clips must not be modified after they are added. Lookups are safe from any goroutine.
type ClipArena interface {
	// Add stores a clip and returns its handle.
	//
	// Parameters:
	//   - clip: the clip to store, keyed by its name
	//
	// Returns:
	//   - ClipHandle: the handle of the stored clip
	//   - error: ErrDuplicateClip (wrapped) if a clip with the same name is already stored
	Add(clip *AnimationClip) (ClipHandle, error)

	// Clip resolves a handle.
	//
	// Parameters:
	//   - h: the handle returned by Add
	//
	// Returns:
	//   - *AnimationClip: the clip
	//   - error: ErrUnknownClip (wrapped) if h does not belong to this arena
	Clip(h ClipHandle) (*AnimationClip, error)

	// Handle looks up a clip by name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - ClipHandle: the handle, or InvalidClip
	//   - bool: true if the clip exists
	Handle(name string) (ClipHandle, bool)

	// Names returns the stored clip names in sorted order.
	//
	// Returns:
	//   - []string: the clip names
	Names() []string

	// Len returns the number of stored clips.
	//
	// Returns:
	//   - int: the clip count
	Len() int
}

var _ ClipArena = &clipArena{}

// NewClipArena creates an empty ClipArena.
//
// Returns:
//   - ClipArena: the new arena
func NewClipArena() ClipArena {
	return &clipArena{
		mu:     sync.RWMutex{},
		byName: make(map[string]ClipHandle),
	}
}

func (a *clipArena) Add(clip *AnimationClip) (ClipHandle, error) {
	if clip == nil {
		return InvalidClip, fmt.Errorf("nil clip: %w", ErrEmptyClip)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.byName[clip.name]; exists {
		return InvalidClip, fmt.Errorf("clip %q: %w", clip.name, ErrDuplicateClip)
	}

	h := ClipHandle(len(a.clips))
	a.clips = append(a.clips, clip)
	a.byName[clip.name] = h
	return h, nil
}

func (a *clipArena) Clip(h ClipHandle) (*AnimationClip, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if h < 0 || int(h) >= len(a.clips) {
		return nil, fmt.Errorf("handle %d: %w", h, ErrUnknownClip)
	}
	return a.clips[h], nil
}

func (a *clipArena) Handle(name string) (ClipHandle, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	h, ok := a.byName[name]
	if !ok {
		return InvalidClip, false
	}
	return h, true
}

func (a *clipArena) Names() []string {
	a.mu.RLock()
	names := make([]string, 0, len(a.byName))
	for name := range a.byName {
		names = append(names, name)
	}
	a.mu.RUnlock()

	sort.Strings(names)
	return names
}

func (a *clipArena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.clips)
}
