package lidar

import (
	"testing"

	"github.com/yht0511/terminus-lidar/types"
)

// A limiter that accepts everything.
func openLimiter() *DensityLimiter {
	return NewDensityLimiter(1000.0, 1<<30)
}

func TestQueueThrottling(t *testing.T) {
	queue := NewEmissionQueue(2000, 30)
	store := NewPointStore(2000)
	limiter := openLimiter()

	for id := 1; id <= 1000; id++ {
		queue.Enqueue(makeIDPoint(id))
	}

	drains := 0
	for queue.Len() > 0 {
		written := queue.Drain(limiter, store)
		drains++

		if queue.Len() > 0 && written != 30 {
			t.Fatalf("drain %d wrote %d records; expected 30 while backlog remains", drains, written)
		}
		if drains > 100 {
			t.Fatal("queue failed to empty")
		}
	}

	// 33 full drains plus a final one for the remaining 10 entries.
	if drains != 34 {
		t.Fatalf("expected 34 drains to empty 1000 entries at 30/frame; got %d", drains)
	}
	if store.Count() != 1000 {
		t.Fatalf("expected 1000 stored points; got %d", store.Count())
	}
}

func TestQueueOldestDrop(t *testing.T) {
	queue := NewEmissionQueue(10, 5)

	for id := 1; id <= 15; id++ {
		queue.Enqueue(makeIDPoint(id))
	}

	if queue.Len() != 10 {
		t.Fatalf("expected queue capped at 10 entries; got %d", queue.Len())
	}
	if queue.Dropped() != 5 {
		t.Fatalf("expected 5 dropped entries; got %d", queue.Dropped())
	}

	// The survivors are the newest ten, drained in FIFO order.
	store := NewPointStore(10)
	limiter := openLimiter()
	queue.Drain(limiter, store)
	if first := store.PositionsView()[0]; first != 6 {
		t.Fatalf("expected oldest surviving entry to be id 6; got %v", first)
	}
}

func TestQueueDensityRejectionNotRetried(t *testing.T) {
	queue := NewEmissionQueue(100, 100)
	store := NewPointStore(100)
	limiter := NewDensityLimiter(1.0, 2)

	// Five entries aimed at the same cell; only two fit.
	for i := 0; i < 5; i++ {
		queue.Enqueue(Point{Position: types.XYZ(0.5, 0.5, 0.5), Color: types.XYZ(1, 1, 1), Intensity: 1, Lifetime: 1})
	}

	written := queue.Drain(limiter, store)
	if written != 2 {
		t.Fatalf("expected 2 accepted writes; got %d", written)
	}
	if queue.Len() != 0 {
		t.Fatalf("expected rejected entries discarded, not requeued; %d left", queue.Len())
	}
	if store.Count() != 2 {
		t.Fatalf("expected 2 stored points; got %d", store.Count())
	}
}

func TestQueueSetThroughput(t *testing.T) {
	queue := NewEmissionQueue(100, 10)
	store := NewPointStore(100)
	limiter := openLimiter()

	for id := 1; id <= 50; id++ {
		queue.Enqueue(makeIDPoint(id))
	}

	queue.SetThroughput(7)
	if written := queue.Drain(limiter, store); written != 7 {
		t.Fatalf("expected 7 records after SetThroughput(7); got %d", written)
	}
}
