// Package splice is the runtime support used by generated injectors: an arena
// of construction frames holding scoped caches, and the Lazy wrapper.
package splice

import (
	"fmt"
	"sync"
)

// FrameID is a handle into an Arena. Handles are never reused.
type FrameID int

// NoFrame is the parent of the root frame
const NoFrame FrameID = -1

// FrameState is the lifecycle state of a frame
type FrameState int

const (
	// Created frames exist but have not cached anything yet
	Created FrameState = iota
	// Active frames have populated at least one cache
	Active
	// Superseded frames have a newer child frame acting as current
	Superseded
)

// String returns the string representation of the frame state
func (s FrameState) String() string {
	switch s {
	case Created:
		return "created"
	case Active:
		return "active"
	case Superseded:
		return "superseded"
	default:
		return "unknown"
	}
}

type frame struct {
	// parent is NoFrame for the root
	parent FrameID

	state FrameState

	// scoped holds values cached for this frame only
	scoped map[string]any

	// shared holds values visible to this frame's descendants
	shared map[string]any
}

// Arena owns every frame of one injector tree. Frames refer to their parent by
// handle and are reclaimed together with the arena.
type Arena struct {
	mu     sync.Mutex
	frames []*frame
}

// NewArena creates an arena holding only the root frame
func NewArena() *Arena {
	a := &Arena{}
	a.frames = append(a.frames, newFrame(NoFrame))
	return a
}

func newFrame(parent FrameID) *frame {
	return &frame{
		parent: parent,
		state:  Created,
		scoped: make(map[string]any),
		shared: make(map[string]any),
	}
}

// Root returns the root frame
func (a *Arena) Root() FrameID {
	return 0
}

// Open creates a frame chained to parent. The parent stays alive and is marked
// superseded.
func (a *Arena) Open(parent FrameID) FrameID {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.mustGet(parent).state = Superseded
	a.frames = append(a.frames, newFrame(parent))
	return FrameID(len(a.frames) - 1)
}

// Parent returns the parent of id, or false for the root
func (a *Arena) Parent(id FrameID) (FrameID, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	parent := a.mustGet(id).parent
	return parent, parent != NoFrame
}

// State returns the lifecycle state of id
func (a *Arena) State(id FrameID) FrameState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mustGet(id).state
}

// Len returns the number of frames ever opened, root included
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.frames)
}

// Scoped returns the value cached under field in frame id, calling build and
// storing its result on the first request. Build runs without the arena lock
// held, so it may resolve further values from the same arena.
func (a *Arena) Scoped(id FrameID, field string, build func() (any, error)) (any, error) {
	a.mu.Lock()
	if value, ok := a.mustGet(id).scoped[field]; ok {
		a.mu.Unlock()
		return value, nil
	}
	a.mu.Unlock()

	value, err := build()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	f := a.mustGet(id)
	if existing, ok := f.scoped[field]; ok {
		return existing, nil
	}
	f.scoped[field] = value
	f.touch()
	return value, nil
}

// ContainerScoped returns the value cached under field in frame id or the
// nearest ancestor holding one. On a miss it calls build and stores the result
// in id and every ancestor of id.
func (a *Arena) ContainerScoped(id FrameID, field string, build func() (any, error)) (any, error) {
	a.mu.Lock()
	if value, ok := a.lookupShared(id, field); ok {
		a.mu.Unlock()
		return value, nil
	}
	a.mu.Unlock()

	value, err := build()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if existing, ok := a.lookupShared(id, field); ok {
		return existing, nil
	}
	for current := id; current != NoFrame; current = a.frames[current].parent {
		f := a.frames[current]
		f.shared[field] = value
		f.touch()
	}
	return value, nil
}

// Cached reports whether field is cached for frame id, either scoped to it or
// shared along its chain.
func (a *Arena) Cached(id FrameID, field string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.mustGet(id).scoped[field]; ok {
		return true
	}
	_, ok := a.lookupShared(id, field)
	return ok
}

func (a *Arena) lookupShared(id FrameID, field string) (any, bool) {
	for current := id; current != NoFrame; current = a.mustGet(current).parent {
		if value, ok := a.frames[current].shared[field]; ok {
			return value, true
		}
	}
	return nil, false
}

func (a *Arena) mustGet(id FrameID) *frame {
	if id < 0 || int(id) >= len(a.frames) {
		panic(fmt.Sprintf("splice: unknown frame %d", id))
	}
	return a.frames[id]
}

func (f *frame) touch() {
	if f.state == Created {
		f.state = Active
	}
}
