package lidar

// EmissionQueue decouples bursty hit generation from a smooth, bounded
// pour-in of points. A single scan row can produce dozens of hits in one
// tick; the queue holds them and feeds the store at most `throughput`
// records per drain call. Its length is capped at the point store
// capacity -- a fuller queue could never represent more data than the
// store can hold -- with the oldest entries dropped on overflow.
type EmissionQueue struct {
	entries    []Point
	maxEntries int
	throughput int
	dropped    uint64
}

// Create an emission queue. maxEntries should match the point store
// capacity; throughput is the per-drain record cap.
func NewEmissionQueue(maxEntries, throughput int) *EmissionQueue {
	if maxEntries < 1 {
		maxEntries = 1
	}
	if throughput < 1 {
		throughput = 1
	}
	return &EmissionQueue{
		entries:    make([]Point, 0, maxEntries),
		maxEntries: maxEntries,
		throughput: throughput,
	}
}

// Enqueue appends a record, evicting the oldest entry if full.
func (q *EmissionQueue) Enqueue(p Point) {
	if len(q.entries) >= q.maxEntries {
		over := len(q.entries) - q.maxEntries + 1
		q.entries = q.entries[over:]
		q.dropped += uint64(over)
	}
	q.entries = append(q.entries, p)
}

// EnqueueMany appends a batch of records in order.
func (q *EmissionQueue) EnqueueMany(points []Point) {
	for _, p := range points {
		q.Enqueue(p)
	}
}

// Drain pops up to the configured throughput of entries, running each
// through the density limiter and writing accepted records to the store.
// Rejected entries are discarded, never retried. Returns the number of
// records written.
func (q *EmissionQueue) Drain(limiter *DensityLimiter, store *PointStore) int {
	n := q.throughput
	if n > len(q.entries) {
		n = len(q.entries)
	}

	written := 0
	for i := 0; i < n; i++ {
		p := q.entries[i]
		if !limiter.TryReserve(p.Position) {
			continue
		}
		store.Write(p)
		written++
	}

	q.entries = q.entries[:copy(q.entries, q.entries[n:])]
	return written
}

// SetThroughput changes the per-drain record cap at runtime.
func (q *EmissionQueue) SetThroughput(n int) {
	if n >= 1 {
		q.throughput = n
	}
}

// Throughput returns the per-drain record cap.
func (q *EmissionQueue) Throughput() int {
	return q.throughput
}

// Len returns the number of pending entries.
func (q *EmissionQueue) Len() int {
	return len(q.entries)
}

// Dropped returns the total number of entries evicted on overflow.
func (q *EmissionQueue) Dropped() uint64 {
	return q.dropped
}

// Clear drops all pending entries.
func (q *EmissionQueue) Clear() {
	q.entries = q.entries[:0]
}
