// Package interact holds the viewer's interactive state: the active pick,
// snap mode, selection, hidden parts and the line dimension.
//
// Other goroutines talk to it only through Send. The frame loop drains the
// command queue once per frame with Update and publishes picks with Publish.
package interact

import (
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/internal/engine/picking"
	"github.com/Faultbox/hullview/internal/engine/scene"
	"github.com/Faultbox/hullview/internal/logger"
	"github.com/Faultbox/hullview/pkg/math"
)

// DefaultQueueSize bounds the command queue.
const DefaultQueueSize = 64

// ErrQueueFull is returned by Send when the frame loop has fallen behind.
var ErrQueueFull = errors.New("interact: command queue full")

// Button is a mouse button as seen by click commands.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// CommandKind selects what a Command does.
type CommandKind int

const (
	CmdSetSnapMode CommandKind = iota
	CmdCycleSnapMode
	CmdClick
	CmdSelect
	CmdHide
	CmdClearSelection
	CmdShowAll
	CmdZoomTo
)

// Command is one queued state change.
type Command struct {
	Kind   CommandKind
	Mode   picking.SnapMode // CmdSetSnapMode
	IDs    []int32          // CmdSelect, CmdHide, CmdZoomTo (first id)
	Button Button           // CmdClick
	Ctrl   bool             // CmdClick
}

// Effects reports what the frame loop must act on after Update.
type Effects struct {
	// MaterialsChanged is set when selection or visibility changed.
	MaterialsChanged bool
	// Recenter moves the camera center to RecenterTo.
	Recenter   bool
	RecenterTo math.Vec3
	// Zoom frames ZoomBounds.
	Zoom       bool
	ZoomBounds model.Bounds
	// DimensionDone is set when a click completed a line.
	DimensionDone bool
}

// State is the interactive state. The zero value is not usable; call New.
type State struct {
	mu       sync.RWMutex
	shards   *scene.ShardSet
	commands chan Command

	active    picking.Result
	mode      picking.SnapMode
	dimension Dimension
	selected  map[int32]struct{}
	hidden    map[int32]struct{}
}

// New creates the state over shards with the given initial snap mode.
func New(shards *scene.ShardSet, mode picking.SnapMode) *State {
	return &State{
		shards:    shards,
		commands:  make(chan Command, DefaultQueueSize),
		active:    picking.NoResult,
		mode:      mode,
		dimension: NewDimension(),
		selected:  map[int32]struct{}{},
		hidden:    map[int32]struct{}{},
	}
}

// Send queues a command without blocking.
func (s *State) Send(cmd Command) error {
	select {
	case s.commands <- cmd:
		return nil
	default:
		logger.Warn("interact command dropped", zap.Int("kind", int(cmd.Kind)))
		return ErrQueueFull
	}
}

// Publish records the pick resolved this frame.
func (s *State) Publish(r picking.Result) {
	s.mu.Lock()
	s.active = r
	s.mu.Unlock()
}

// Active returns the last published pick.
func (s *State) Active() picking.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SnapMode returns the current snap mode.
func (s *State) SnapMode() picking.SnapMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Dimension returns the current measurement.
func (s *State) Dimension() Dimension {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Selected returns the selected object ids in ascending order.
func (s *State) Selected() []int32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.selected)
}

// Hidden returns the hidden object ids in ascending order.
func (s *State) Hidden() []int32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.hidden)
}

// Update applies every queued command. It must run on the frame loop,
// which owns the shards.
func (s *State) Update() Effects {
	var fx Effects
	for {
		select {
		case cmd := <-s.commands:
			s.apply(cmd, &fx)
		default:
			return fx
		}
	}
}

func (s *State) apply(cmd Command, fx *Effects) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd.Kind {
	case CmdSetSnapMode:
		s.setMode(cmd.Mode)
	case CmdCycleSnapMode:
		s.setMode(s.mode.Next())
	case CmdClick:
		s.click(cmd.Button, cmd.Ctrl, fx)
	case CmdSelect:
		s.unselectAll()
		for _, id := range cmd.IDs {
			if s.paintAll(id, (*scene.Shard).Select) {
				s.selected[id] = struct{}{}
				delete(s.hidden, id)
			}
		}
		fx.MaterialsChanged = true
	case CmdHide:
		s.unhideAll()
		for _, id := range cmd.IDs {
			if s.paintAll(id, (*scene.Shard).Hide) {
				s.hidden[id] = struct{}{}
				delete(s.selected, id)
			}
		}
		fx.MaterialsChanged = true
	case CmdClearSelection:
		s.unselectAll()
		fx.MaterialsChanged = true
	case CmdShowAll:
		s.unhideAll()
		fx.MaterialsChanged = true
	case CmdZoomTo:
		if len(cmd.IDs) == 0 {
			return
		}
		if b, ok := s.objectBounds(cmd.IDs[0]); ok {
			fx.Zoom = true
			fx.ZoomBounds = b
		}
	}
}

func (s *State) setMode(m picking.SnapMode) {
	if m == s.mode {
		return
	}
	s.mode = m
	if m == picking.SnapDisabled {
		s.dimension.Clear()
	}
	logger.Info("snap mode changed", zap.Stringer("mode", m))
}

func (s *State) click(button Button, ctrl bool, fx *Effects) {
	switch button {
	case ButtonLeft:
		switch s.mode {
		case picking.SnapVertex:
			if !s.active.Resolved() {
				return
			}
			if s.dimension.AddPoint(s.active.Point) {
				fx.DimensionDone = true
				logger.Info("dimension", zap.Float32("length", s.dimension.Length()))
			}
		case picking.SnapDisabled:
			owner, shard, ok := s.activeOwner()
			if !ok {
				return
			}
			if ctrl {
				if shard.Hide(owner) {
					s.hidden[owner] = struct{}{}
					delete(s.selected, owner)
					fx.MaterialsChanged = true
				}
				return
			}
			s.unselectAll()
			if shard.Select(owner) {
				s.selected[owner] = struct{}{}
			}
			fx.MaterialsChanged = true
		}
	case ButtonMiddle:
		if s.active.Resolved() {
			fx.Recenter = true
			fx.RecenterTo = s.active.Point
		}
	}
}

// activeOwner resolves the active pick index through its shard to the owning object.
func (s *State) activeOwner() (int32, *scene.Shard, bool) {
	if s.active.Kind == picking.KindNone {
		return 0, nil, false
	}
	owner, ok := s.shards.OwnerOf(s.active.Shard, s.active.PickIndex)
	if !ok {
		return 0, nil, false
	}
	return owner, s.shards.Shard(s.active.Shard), true
}

// paintAll applies paint to id in every shard that holds it.
func (s *State) paintAll(id int32, paint func(*scene.Shard, int32) bool) bool {
	found := false
	s.shards.Each(func(sh *scene.Shard) {
		if paint(sh, id) {
			found = true
		}
	})
	return found
}

func (s *State) unselectAll() {
	for id := range s.selected {
		s.paintAll(id, (*scene.Shard).SetDefault)
	}
	clear(s.selected)
}

func (s *State) unhideAll() {
	for id := range s.hidden {
		s.paintAll(id, (*scene.Shard).SetDefault)
	}
	clear(s.hidden)
}

func (s *State) objectBounds(id int32) (model.Bounds, bool) {
	var (
		out   model.Bounds
		found bool
	)
	s.shards.Each(func(sh *scene.Shard) {
		if found {
			return
		}
		out, found = sh.BBoxForObject(id)
	})
	return out, found
}

func sortedIDs(set map[int32]struct{}) []int32 {
	out := make([]int32, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
