package history

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Fepozopo/rasterkit/pkg/stdimg"
)

// DefaultUndoDepth bounds each of the undo and redo stacks.
const DefaultUndoDepth = 50

// ErrSnapshotSerialization is returned when a parameter snapshot cannot be
// encoded or decoded.
var ErrSnapshotSerialization = errors.New("snapshot serialization failed")

// State is the parameter side of the editor: everything needed to recompute
// the processed view from the source buffer.
type State struct {
	Params stdimg.FilterParameters `json:"params"`
	ROI    *stdimg.ROI             `json:"roi"`
}

// EncodeState serializes s for the undo/redo stacks.
func EncodeState(s State) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotSerialization, err)
	}
	return b, nil
}

// DecodeState parses a snapshot produced by EncodeState and validates it.
func DecodeState(b []byte) (State, error) {
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrSnapshotSerialization, err)
	}
	if err := s.Params.Validate(); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrSnapshotSerialization, err)
	}
	return s, nil
}

// UndoStack holds two bounded stacks of serialized snapshots with linear
// history: pushing a new snapshot discards everything that could be redone.
// Underflow is a no-op.
type UndoStack struct {
	depth int
	undo  [][]byte
	redo  [][]byte
}

// NewUndoStack returns a stack bounded to depth entries per side. A depth of
// zero or less uses DefaultUndoDepth.
func NewUndoStack(depth int) *UndoStack {
	if depth <= 0 {
		depth = DefaultUndoDepth
	}
	return &UndoStack{depth: depth}
}

func (s *UndoStack) bounded(stack [][]byte, snap []byte) [][]byte {
	stack = append(stack, snap)
	if len(stack) > s.depth {
		// evict oldest
		stack = append(stack[:0], stack[len(stack)-s.depth:]...)
	}
	return stack
}

// Push records snap as the most recent undo point and clears the redo stack.
func (s *UndoStack) Push(snap []byte) {
	s.undo = s.bounded(s.undo, snap)
	s.redo = nil
}

// Undo pops the latest undo point, pushing current onto the redo stack.
// It returns false and leaves both stacks untouched when there is nothing to undo.
func (s *UndoStack) Undo(current []byte) ([]byte, bool) {
	if len(s.undo) == 0 {
		return nil, false
	}
	snap := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = s.bounded(s.redo, current)
	return snap, true
}

// Redo is the mirror of Undo.
func (s *UndoStack) Redo(current []byte) ([]byte, bool) {
	if len(s.redo) == 0 {
		return nil, false
	}
	snap := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = s.bounded(s.undo, current)
	return snap, true
}

func (s *UndoStack) CanUndo() bool { return len(s.undo) > 0 }
func (s *UndoStack) CanRedo() bool { return len(s.redo) > 0 }
func (s *UndoStack) UndoLen() int  { return len(s.undo) }
func (s *UndoStack) RedoLen() int  { return len(s.redo) }

// Clear empties both stacks.
func (s *UndoStack) Clear() {
	s.undo = nil
	s.redo = nil
}

// PushState encodes st and pushes it.
func (s *UndoStack) PushState(st State) error {
	b, err := EncodeState(st)
	if err != nil {
		return err
	}
	s.Push(b)
	return nil
}

// UndoState is Undo over decoded states. A malformed snapshot on top of the
// undo stack yields ErrSnapshotSerialization and leaves both stacks untouched.
func (s *UndoStack) UndoState(current State) (State, bool, error) {
	return s.step(current, s.undo, s.Undo)
}

// RedoState is Redo over decoded states.
func (s *UndoStack) RedoState(current State) (State, bool, error) {
	return s.step(current, s.redo, s.Redo)
}

// step decodes the top of from before move pops it, so a failed decode
// changes neither stack.
func (s *UndoStack) step(current State, from [][]byte, move func([]byte) ([]byte, bool)) (State, bool, error) {
	if len(from) == 0 {
		return State{}, false, nil
	}
	st, err := DecodeState(from[len(from)-1])
	if err != nil {
		return State{}, false, err
	}
	cur, err := EncodeState(current)
	if err != nil {
		return State{}, false, err
	}
	move(cur)
	return st, true, nil
}
