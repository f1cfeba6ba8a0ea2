package lidar

import "math"

// DecayModel ages live points and rewrites their displayed colors. The
// remaining-lifetime ratio is raised to a configurable exponent before
// scaling; the default quadratic falloff reads as a smoother fade-out
// than linear. Persistent points are floored at a minimum ratio so they
// never vanish completely.
type DecayModel struct {
	exponent float64
	floor    float64

	// Color deltas below epsilon are not rewritten or marked dirty,
	// which keeps fully decayed buffers from churning every frame.
	epsilon float32
}

// Create a decay model. exponent must be > 0; floor and epsilon are
// ratios in [0,1].
func NewDecayModel(exponent, floor, epsilon float64) *DecayModel {
	if exponent <= 0 {
		exponent = 1.0
	}
	return &DecayModel{
		exponent: exponent,
		floor:    clampRatio(floor),
		epsilon:  float32(clampRatio(epsilon)),
	}
}

// Effective computes the intensity ratio of a point at time now. The
// result is clamped to [0,1], or [floor,1] for persistent points, and is
// non-increasing in now for any fixed record.
func (m *DecayModel) Effective(now, spawnTime, lifetime float64, persistent bool) float64 {
	if lifetime <= 0 {
		if persistent {
			return m.floor
		}
		return 0
	}
	remaining := clampRatio(1.0 - (now-spawnTime)/lifetime)
	if persistent && remaining < m.floor {
		remaining = m.floor
	}
	return remaining
}

// Update sweeps every live slot of the store, rewriting displayed colors
// whose value moved by more than epsilon and marking the color buffer
// dirty if anything changed.
func (m *DecayModel) Update(store *PointStore, now float64) {
	count := store.Count()
	changed := false

	for slot := 0; slot < count; slot++ {
		ratio := m.Effective(now, store.spawnTimes[slot], store.lifetimes[slot], store.persistent[slot])
		scale := float32(math.Pow(ratio, m.exponent)) * store.intensities[slot]

		off := slot * 3
		for c := 0; c < 3; c++ {
			want := store.baseColors[off+c] * scale
			delta := want - store.colors[off+c]
			if delta < 0 {
				delta = -delta
			}
			if delta > m.epsilon {
				store.colors[off+c] = want
				changed = true
			}
		}
	}

	if changed {
		store.colorsDirty = true
	}
}

func clampRatio(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
