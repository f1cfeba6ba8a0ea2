package lidar

import (
	"testing"

	"github.com/yht0511/terminus-lidar/types"
)

func makeIDPoint(id int) Point {
	return Point{
		Position:  types.XYZ(float32(id), 0, 0),
		Color:     types.XYZ(1, 1, 1),
		Lifetime:  10,
		Intensity: 1,
	}
}

func TestRingOverwrite(t *testing.T) {
	type spec struct {
		capacity  int
		writes    int
		expCount  int
		expOldest int
	}
	specs := []spec{
		{100, 50, 50, 1},
		{100, 100, 100, 1},
		{100, 150, 100, 51},
		{10, 35, 10, 26},
	}

	for index, s := range specs {
		store := NewPointStore(s.capacity)
		for id := 1; id <= s.writes; id++ {
			store.Write(makeIDPoint(id))
		}

		if store.Count() != s.expCount {
			t.Fatalf("[spec %d] expected count %d; got %d", index, s.expCount, store.Count())
		}

		// Collect the stored ids and check they are exactly the most
		// recent expCount writes.
		seen := make(map[int]bool, store.Count())
		positions := store.PositionsView()
		for slot := 0; slot < store.Count(); slot++ {
			seen[int(positions[slot*3])] = true
		}

		for id := s.expOldest; id < s.expOldest+s.expCount; id++ {
			if !seen[id] {
				t.Fatalf("[spec %d] expected id %d in store; stored set has %d entries", index, id, len(seen))
			}
		}
	}
}

func TestClearIdempotent(t *testing.T) {
	store := NewPointStore(16)
	for id := 1; id <= 20; id++ {
		store.Write(makeIDPoint(id))
	}

	store.Clear()
	countAfterFirst := store.Count()
	var posSum float32
	for _, v := range store.PositionsView() {
		posSum += v
	}

	store.Clear()
	if store.Count() != countAfterFirst || store.Count() != 0 {
		t.Fatalf("expected count 0 after double clear; got %d", store.Count())
	}
	var posSum2 float32
	for _, v := range store.PositionsView() {
		posSum2 += v
	}
	if posSum != 0 || posSum2 != 0 {
		t.Fatalf("expected zeroed position buffers; got sums %f and %f", posSum, posSum2)
	}
}

func TestWriteMarksDirty(t *testing.T) {
	store := NewPointStore(4)

	pos, col := store.Dirty()
	if pos || col {
		t.Fatal("expected a fresh store to be clean")
	}

	store.Write(makeIDPoint(1))
	pos, col = store.Dirty()
	if !pos || !col {
		t.Fatalf("expected both buffers dirty after write; got positions=%v colors=%v", pos, col)
	}

	store.ClearDirty()
	pos, col = store.Dirty()
	if pos || col {
		t.Fatal("expected store clean after ClearDirty")
	}
}

func TestDisplayedColorScaledByIntensity(t *testing.T) {
	store := NewPointStore(4)
	store.Write(Point{
		Position:  types.XYZ(1, 2, 3),
		Color:     types.XYZ(1, 0.5, 0.25),
		Intensity: 0.5,
		Lifetime:  10,
	})

	colors := store.ColorsView()
	want := []float32{0.5, 0.25, 0.125}
	for c := 0; c < 3; c++ {
		if colors[c] != want[c] {
			t.Fatalf("expected color component %d to be %f; got %f", c, want[c], colors[c])
		}
	}
}
