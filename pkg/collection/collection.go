// Package collection keeps the ordered set of images open in the editor and
// which one is selected.
package collection

import (
	"fmt"
	"image"

	"github.com/samber/lo"

	"github.com/Fepozopo/rasterkit/pkg/history"
	"github.com/Fepozopo/rasterkit/pkg/stdimg"
)

// Journal labels written by the collection itself.
const (
	ImportedLabel = "imported"
	SelectedLabel = "selected"
)

// ImageRecord is one open image: its immutable source buffer and its edit journal.
type ImageRecord struct {
	ID      int
	Name    string
	Source  *image.NRGBA
	Journal *history.Journal
}

// Current decodes the pixels of the latest journal entry.
func (r *ImageRecord) Current() (*image.NRGBA, error) {
	return r.Journal.Current().Snapshot.Decode()
}

// Collection is an ordered list of ImageRecords with at most one selected.
type Collection struct {
	records  []*ImageRecord
	selected int // -1 when nothing is selected
	nextID   int
}

// New returns an empty collection with no selection.
func New() *Collection {
	return &Collection{selected: -1, nextID: 1}
}

// Source pairs a display name with a decoded buffer for AddImages.
type Source struct {
	Name  string
	Image image.Image
}

// AddImages appends one record per source. Each record owns a private copy
// of its pixels and a journal seeded with an "imported" entry.
func (c *Collection) AddImages(sources ...Source) []*ImageRecord {
	added := make([]*ImageRecord, 0, len(sources))
	for _, s := range sources {
		buf := stdimg.ToNRGBA(s.Image)
		rec := &ImageRecord{
			ID:      c.nextID,
			Name:    s.Name,
			Source:  buf,
			Journal: history.NewJournal(ImportedLabel, history.NewSnapshot(buf)),
		}
		c.nextID++
		c.records = append(c.records, rec)
		added = append(added, rec)
	}
	return added
}

func (c *Collection) checkIndex(i int) error {
	if i < 0 || i >= len(c.records) {
		return fmt.Errorf("%w: image index %d (len %d)", history.ErrIndexOutOfRange, i, len(c.records))
	}
	return nil
}

// Remove deletes the record at index i. Removing the selected record clears
// the selection; removing one before it shifts the selection down by one.
func (c *Collection) Remove(i int) error {
	if err := c.checkIndex(i); err != nil {
		return err
	}
	c.records = append(c.records[:i], c.records[i+1:]...)
	switch {
	case i == c.selected:
		c.selected = -1
	case i < c.selected:
		c.selected--
	}
	return nil
}

// Select makes index i the active image and commits a "selected" marker,
// carrying the current snapshot, into its journal.
func (c *Collection) Select(i int) error {
	if err := c.checkIndex(i); err != nil {
		return err
	}
	c.selected = i
	j := c.records[i].Journal
	j.Commit(SelectedLabel, j.Current().Snapshot)
	return nil
}

// Selected returns the selected index, or -1.
func (c *Collection) Selected() int {
	return c.selected
}

// SelectedRecord returns the selected record and whether there is one.
func (c *Collection) SelectedRecord() (*ImageRecord, bool) {
	if c.selected < 0 {
		return nil, false
	}
	return c.records[c.selected], true
}

// At returns the record at index i.
func (c *Collection) At(i int) (*ImageRecord, error) {
	if err := c.checkIndex(i); err != nil {
		return nil, err
	}
	return c.records[i], nil
}

func (c *Collection) Len() int {
	return len(c.records)
}

// Names lists record names in order.
func (c *Collection) Names() []string {
	return lo.Map(c.records, func(r *ImageRecord, _ int) string {
		return r.Name
	})
}

// IndexOf returns the index of the first record called name, or -1.
func (c *Collection) IndexOf(name string) int {
	_, i, ok := lo.FindIndexOf(c.records, func(r *ImageRecord) bool {
		return r.Name == name
	})
	if !ok {
		return -1
	}
	return i
}

// Clear removes every record and the selection.
func (c *Collection) Clear() {
	c.records = nil
	c.selected = -1
}
