package collection

import (
	"errors"
	"image/color"
	"reflect"
	"testing"

	"github.com/Fepozopo/rasterkit/pkg/history"
	"github.com/Fepozopo/rasterkit/pkg/stdimg"
)

func newFilled(names ...string) *Collection {
	c := New()
	for i, n := range names {
		v := uint8(i * 10)
		c.AddImages(Source{Name: n, Image: stdimg.NewBuffer(3, 2, color.NRGBA{R: v, G: v, B: v, A: 255})})
	}
	return c
}

func TestAddImagesSeedsJournal(t *testing.T) {
	c := New()
	src := stdimg.NewBuffer(4, 4, color.NRGBA{R: 9, A: 255})
	recs := c.AddImages(Source{Name: "a.png", Image: src}, Source{Name: "b.png", Image: src})
	if len(recs) != 2 || c.Len() != 2 {
		t.Fatalf("expected 2 records, got %d/%d", len(recs), c.Len())
	}
	if recs[0].ID == recs[1].ID {
		t.Fatalf("record ids must be unique")
	}
	for _, r := range recs {
		if r.Journal.Len() != 1 || r.Journal.Current().Label != ImportedLabel {
			t.Fatalf("journal not seeded with imported entry: %+v", r.Journal.Entries())
		}
		cur, err := r.Current()
		if err != nil || !stdimg.EqualNRGBA(cur, src) {
			t.Fatalf("current view should equal the imported buffer (%v)", err)
		}
	}
	src.Pix[0] = 200
	if recs[0].Source.Pix[0] != 9 {
		t.Fatalf("record source aliases caller buffer")
	}
	if c.Selected() != -1 {
		t.Fatalf("adding images must not select")
	}
}

func TestRemoveSelectionRules(t *testing.T) {
	cases := []struct {
		name            string
		selected, index int
		want            int
	}{
		{"remove selected", 2, 2, -1},
		{"remove below", 2, 0, 1},
		{"remove above", 1, 3, 1},
		{"no selection", -1, 0, -1},
	}
	for _, tc := range cases {
		c := newFilled("a", "b", "c", "d")
		if tc.selected >= 0 {
			if err := c.Select(tc.selected); err != nil {
				t.Fatalf("%s: select failed: %v", tc.name, err)
			}
		}
		if err := c.Remove(tc.index); err != nil {
			t.Fatalf("%s: remove failed: %v", tc.name, err)
		}
		if c.Selected() != tc.want {
			t.Fatalf("%s: selection = %d, want %d", tc.name, c.Selected(), tc.want)
		}
		if c.Len() != 3 {
			t.Fatalf("%s: expected 3 records left", tc.name)
		}
	}
}

func TestRemoveKeepsSelectedRecord(t *testing.T) {
	c := newFilled("a", "b", "c")
	c.Select(2)
	c.Remove(0)
	rec, ok := c.SelectedRecord()
	if !ok || rec.Name != "c" {
		t.Fatalf("selection should follow record c, got %+v", rec)
	}
	if !reflect.DeepEqual(c.Names(), []string{"b", "c"}) {
		t.Fatalf("unexpected names %v", c.Names())
	}
}

func TestIndexErrors(t *testing.T) {
	c := newFilled("a")
	for _, i := range []int{-1, 1, 5} {
		if err := c.Select(i); !errors.Is(err, history.ErrIndexOutOfRange) {
			t.Fatalf("Select(%d): expected ErrIndexOutOfRange, got %v", i, err)
		}
		if err := c.Remove(i); !errors.Is(err, history.ErrIndexOutOfRange) {
			t.Fatalf("Remove(%d): expected ErrIndexOutOfRange, got %v", i, err)
		}
		if _, err := c.At(i); !errors.Is(err, history.ErrIndexOutOfRange) {
			t.Fatalf("At(%d): expected ErrIndexOutOfRange, got %v", i, err)
		}
	}
	if c.Len() != 1 || c.Selected() != -1 {
		t.Fatalf("failed calls must not change the collection")
	}
}

func TestSelectCommitsMarker(t *testing.T) {
	c := newFilled("a", "b")
	if err := c.Select(1); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	rec, _ := c.At(1)
	if rec.Journal.Len() != 2 || rec.Journal.Current().Label != SelectedLabel {
		t.Fatalf("expected selected marker, got %+v", rec.Journal.Entries())
	}
	first, _ := rec.Journal.At(0)
	if rec.Journal.Current().Snapshot != first.Snapshot {
		t.Fatalf("selected marker should carry the current snapshot")
	}
	other, _ := c.At(0)
	if other.Journal.Len() != 1 {
		t.Fatalf("other journals must be untouched")
	}
}

func TestNamesIndexOfClear(t *testing.T) {
	c := newFilled("x.png", "y.png", "x.png")
	if !reflect.DeepEqual(c.Names(), []string{"x.png", "y.png", "x.png"}) {
		t.Fatalf("unexpected names %v", c.Names())
	}
	if c.IndexOf("x.png") != 0 || c.IndexOf("y.png") != 1 || c.IndexOf("z.png") != -1 {
		t.Fatalf("IndexOf wrong")
	}
	c.Select(1)
	c.Clear()
	if c.Len() != 0 || c.Selected() != -1 {
		t.Fatalf("Clear left state behind")
	}
	if _, ok := c.SelectedRecord(); ok {
		t.Fatalf("no record should be selected after Clear")
	}
}
