package lidar

import (
	"testing"

	"github.com/yht0511/terminus-lidar/types"
)

func TestDecayMonotonic(t *testing.T) {
	model := NewDecayModel(2.0, 0.35, 0.01)

	last := 1.1
	for now := 0.0; now <= 12.0; now += 0.25 {
		eff := model.Effective(now, 0, 10, false)
		if eff < 0 || eff > 1 {
			t.Fatalf("effective ratio %f at t=%f outside [0,1]", eff, now)
		}
		if eff > last {
			t.Fatalf("effective ratio increased from %f to %f at t=%f", last, eff, now)
		}
		last = eff
	}

	if last != 0 {
		t.Fatalf("expected a non-persistent point to fully decay; got %f", last)
	}
}

func TestDecayPersistentFloor(t *testing.T) {
	model := NewDecayModel(2.0, 0.35, 0.01)

	for _, now := range []float64{0, 5, 10, 100, 1e6} {
		eff := model.Effective(now, 0, 10, true)
		if eff < 0.35 {
			t.Fatalf("persistent point decayed to %f at t=%f, below floor 0.35", eff, now)
		}
	}
}

func TestDecayZeroLifetime(t *testing.T) {
	model := NewDecayModel(2.0, 0.35, 0.01)

	if eff := model.Effective(1, 0, 0, false); eff != 0 {
		t.Fatalf("expected zero-lifetime point to be fully decayed; got %f", eff)
	}
	if eff := model.Effective(1, 0, 0, true); eff != 0.35 {
		t.Fatalf("expected persistent zero-lifetime point at floor; got %f", eff)
	}
}

func TestDecayUpdateRewritesColors(t *testing.T) {
	store := NewPointStore(4)
	store.Write(Point{
		Position:  types.XYZ(1, 0, 0),
		Color:     types.XYZ(1, 1, 1),
		Intensity: 1,
		SpawnTime: 0,
		Lifetime:  10,
	})
	store.ClearDirty()

	model := NewDecayModel(2.0, 0.35, 0.01)

	// Halfway through the lifetime the quadratic falloff leaves 25%.
	model.Update(store, 5)
	colors := store.ColorsView()
	if colors[0] < 0.24 || colors[0] > 0.26 {
		t.Fatalf("expected displayed color near 0.25 at half life; got %f", colors[0])
	}
	if _, col := store.Dirty(); !col {
		t.Fatal("expected color buffer marked dirty after decay rewrite")
	}
}

func TestDecayEpsilonSuppressesChurn(t *testing.T) {
	store := NewPointStore(4)
	store.Write(Point{
		Position:  types.XYZ(1, 0, 0),
		Color:     types.XYZ(1, 1, 1),
		Intensity: 1,
		SpawnTime: 0,
		Lifetime:  1,
	})

	// Fully decay the point, then acknowledge the upload.
	model := NewDecayModel(2.0, 0.35, 0.01)
	model.Update(store, 100)
	store.ClearDirty()

	// Further sweeps find nothing above epsilon to rewrite.
	model.Update(store, 200)
	model.Update(store, 300)
	if _, col := store.Dirty(); col {
		t.Fatal("expected no dirty mark on a fully decayed buffer")
	}
}
