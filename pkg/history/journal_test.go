package history

import (
	"errors"
	"image/color"
	"testing"

	"github.com/Fepozopo/rasterkit/pkg/stdimg"
)

func solidSnap(v uint8) *Snapshot {
	return NewSnapshot(stdimg.NewBuffer(4, 3, color.NRGBA{R: v, G: v, B: v, A: 255}))
}

func TestNewJournalSeeded(t *testing.T) {
	j := NewJournal("imported", solidSnap(1))
	if j.Len() != 1 {
		t.Fatalf("journal must start with one entry, got %d", j.Len())
	}
	if j.Current().Label != "imported" || j.Current().ID != 1 {
		t.Fatalf("unexpected first entry %+v", j.Current())
	}
}

func TestCommitAppends(t *testing.T) {
	j := NewJournal("imported", solidSnap(1))
	s2 := solidSnap(2)
	a := j.Commit("Grayscale", s2)
	if j.Len() != 2 || j.Current().ID != a.ID || j.Current().Snapshot != s2 {
		t.Fatalf("commit did not become current")
	}
	if a.ID <= 1 {
		t.Fatalf("ids must increase, got %d", a.ID)
	}
	if a.Time.IsZero() {
		t.Fatalf("commit must be timestamped")
	}
}

func TestRevertAppendsCopyOfTarget(t *testing.T) {
	j := NewJournal("imported", solidSnap(1))
	j.Commit("Blur", solidSnap(2))
	j.Commit("Edges", solidSnap(3))
	before := j.Entries()

	a, err := j.RevertTo(0)
	if err != nil {
		t.Fatalf("RevertTo failed: %v", err)
	}
	if j.Len() != len(before)+1 {
		t.Fatalf("revert must add exactly one entry")
	}
	if a.Snapshot != before[0].Snapshot || j.Current().Snapshot != before[0].Snapshot {
		t.Fatalf("reverted snapshot differs from target")
	}
	if a.Label != "Revert to #1 (imported)" {
		t.Fatalf("revert label should name its target id, got %q", a.Label)
	}
	for i, e := range before {
		got, _ := j.At(i)
		if got != e {
			t.Fatalf("entry %d changed after revert", i)
		}
	}
	b, err := j.RevertTo(1)
	if err != nil {
		t.Fatalf("RevertTo(1) failed: %v", err)
	}
	if b.Label != "Revert to #2 (Blur)" {
		t.Fatalf("revert label = %q", b.Label)
	}
}

func TestRevertOutOfRange(t *testing.T) {
	j := NewJournal("imported", solidSnap(1))
	j.Commit("Blur", solidSnap(2))
	for _, i := range []int{-1, 2, 99} {
		if _, err := j.RevertTo(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("RevertTo(%d): expected ErrIndexOutOfRange, got %v", i, err)
		}
	}
	if j.Len() != 2 {
		t.Fatalf("failed revert must leave journal unchanged, len %d", j.Len())
	}
}

func TestEntriesIsACopy(t *testing.T) {
	j := NewJournal("imported", solidSnap(1))
	es := j.Entries()
	es[0].Label = "tampered"
	if j.Current().Label != "imported" {
		t.Fatalf("Entries exposed internal storage")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	img := stdimg.NewBuffer(17, 9, color.NRGBA{R: 3, G: 140, B: 255, A: 77})
	img.Pix[img.PixOffset(5, 5)] = 9
	s := NewSnapshot(img)
	img.Pix[0] = 200 // later writes must not leak into the snapshot

	got, err := s.Decode()
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Bounds().Dx() != 17 || got.Bounds().Dy() != 9 || s.Width != 17 || s.Height != 9 {
		t.Fatalf("unexpected bounds %v", got.Bounds())
	}
	if got.Pix[0] != 3 || got.Pix[got.PixOffset(5, 5)] != 9 || got.Pix[3] != 77 {
		t.Fatalf("decoded pixels differ from capture")
	}
	if s.Size() >= len(got.Pix) {
		t.Fatalf("uniform buffer should compress, %d >= %d", s.Size(), len(got.Pix))
	}
}

func TestSnapshotEmpty(t *testing.T) {
	got, err := NewSnapshot(nil).Decode()
	if err != nil || got.Bounds().Dx() != 0 {
		t.Fatalf("empty snapshot decode = %v, %v", got.Bounds(), err)
	}
}
