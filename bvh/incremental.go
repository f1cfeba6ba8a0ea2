package bvh

import (
	"sort"
	"time"

	"github.com/yht0511/terminus-lidar/log"
)

// The Piece interface is implemented by geometry that wants an
// acceleration structure. CostEstimate orders the pending queue so
// cheap pieces become query-accelerated first.
type Piece interface {
	ID() int
	Volumes() []Volume
	CostEstimate() int
}

// IncrementalBuilder amortizes tree construction across frames. Each
// Advance call builds pending pieces from the front of a cost-sorted
// queue until its wall-time budget runs out; the overshoot is bounded by
// the cost of the single in-flight piece. Unbuilt pieces stay fully
// queryable through the ray caster's brute-force fallback.
type IncrementalBuilder struct {
	minLeafItems int
	logger       log.Logger

	pending []Piece
	built   map[int]*Tree
}

// Create an incremental builder.
func NewIncrementalBuilder(minLeafItems int, logger log.Logger) *IncrementalBuilder {
	if logger == nil {
		logger = log.Nil()
	}
	return &IncrementalBuilder{
		minLeafItems: minLeafItems,
		logger:       logger,
		built:        make(map[int]*Tree),
	}
}

// Enqueue schedules one piece for building, discarding any stale tree it
// may already have. The pending queue stays sorted ascending by cost.
func (b *IncrementalBuilder) Enqueue(piece Piece) {
	delete(b.built, piece.ID())
	for i, p := range b.pending {
		if p.ID() == piece.ID() {
			b.pending[i] = piece
			b.sortPending()
			return
		}
	}
	b.pending = append(b.pending, piece)
	b.sortPending()
}

// Rebuild resets the queue for a new geometry set: trees of pieces no
// longer present are discarded, already-built present pieces keep their
// trees, and everything unbuilt is queued by ascending cost.
func (b *IncrementalBuilder) Rebuild(pieces []Piece) {
	present := make(map[int]struct{}, len(pieces))
	for _, p := range pieces {
		present[p.ID()] = struct{}{}
	}
	for id := range b.built {
		if _, ok := present[id]; !ok {
			delete(b.built, id)
		}
	}

	b.pending = b.pending[:0]
	for _, p := range pieces {
		if _, ok := b.built[p.ID()]; !ok {
			b.pending = append(b.pending, p)
		}
	}
	b.sortPending()
}

// Advance builds queued pieces until elapsed wall time exceeds the
// budget, then yields. A piece whose geometry fails to build is logged
// and skipped; it remains servable through the unindexed fallback.
// Returns the number of trees built.
func (b *IncrementalBuilder) Advance(budget time.Duration) int {
	start := time.Now()
	count := 0

	for len(b.pending) > 0 {
		if time.Since(start) > budget {
			break
		}

		piece := b.pending[0]
		b.pending = b.pending[1:]

		tree, err := Build(piece.Volumes(), b.minLeafItems)
		if err != nil {
			b.logger.Warningf("bvh: skipping piece %d: %v", piece.ID(), err)
			continue
		}
		b.built[piece.ID()] = tree
		count++
	}

	return count
}

// Tree returns the built hierarchy for a piece, if one exists yet.
func (b *IncrementalBuilder) Tree(id int) (*Tree, bool) {
	t, ok := b.built[id]
	return t, ok
}

// PendingCount returns the number of pieces awaiting construction.
func (b *IncrementalBuilder) PendingCount() int {
	return len(b.pending)
}

// BuiltCount returns the number of pieces with a live tree.
func (b *IncrementalBuilder) BuiltCount() int {
	return len(b.built)
}

func (b *IncrementalBuilder) sortPending() {
	sort.SliceStable(b.pending, func(i, j int) bool {
		return b.pending[i].CostEstimate() < b.pending[j].CostEstimate()
	})
}
