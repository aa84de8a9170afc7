package history

import (
	"errors"
	"fmt"
	"time"
)

// ErrIndexOutOfRange is returned for a journal or collection index that does
// not name an existing entry.
var ErrIndexOutOfRange = errors.New("index out of range")

// EditAction is one committed edit. Entries are immutable once appended.
type EditAction struct {
	ID       uint64
	Label    string
	Time     time.Time
	Snapshot *Snapshot
}

// Journal is an append-only log of EditActions for one image. It is never
// empty: the first entry is recorded when the journal is created, and the
// current view is always the last entry.
type Journal struct {
	entries []EditAction
	nextID  uint64
	now     func() time.Time
}

// NewJournal starts a journal whose first entry carries label and snap.
func NewJournal(label string, snap *Snapshot) *Journal {
	j := &Journal{nextID: 1, now: time.Now}
	j.Commit(label, snap)
	return j
}

// Commit appends a new action and returns it.
func (j *Journal) Commit(label string, snap *Snapshot) EditAction {
	a := EditAction{
		ID:       j.nextID,
		Label:    label,
		Time:     j.now(),
		Snapshot: snap,
	}
	j.nextID++
	j.entries = append(j.entries, a)
	return a
}

// RevertTo appends a new action whose snapshot is the one recorded at index
// i. History is never truncated. An invalid index fails with
// ErrIndexOutOfRange and leaves the journal unchanged.
func (j *Journal) RevertTo(i int) (EditAction, error) {
	target, err := j.At(i)
	if err != nil {
		return EditAction{}, err
	}
	return j.Commit(fmt.Sprintf("Revert to #%d (%s)", target.ID, target.Label), target.Snapshot), nil
}

// At returns the entry at index i.
func (j *Journal) At(i int) (EditAction, error) {
	if i < 0 || i >= len(j.entries) {
		return EditAction{}, fmt.Errorf("%w: journal index %d (len %d)", ErrIndexOutOfRange, i, len(j.entries))
	}
	return j.entries[i], nil
}

// Current returns the last entry.
func (j *Journal) Current() EditAction {
	return j.entries[len(j.entries)-1]
}

func (j *Journal) Len() int {
	return len(j.entries)
}

// Entries returns a copy of the log, oldest first.
func (j *Journal) Entries() []EditAction {
	return append([]EditAction(nil), j.entries...)
}
