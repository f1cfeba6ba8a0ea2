package lidar

import (
	"math"

	"github.com/yht0511/terminus-lidar/types"
)

// A quantized spatial bucket: world position divided by the cell size,
// floored per axis.
type cellKey struct {
	x, y, z int32
}

// DensityLimiter caps how many points may accumulate inside any one
// spatial cell. It is purely advisory -- callers consult TryReserve
// before committing a write to the point store.
type DensityLimiter struct {
	cellSize   float32
	maxPerCell int
	cells      map[cellKey]int
}

// Create a density limiter with the given cell edge length and per-cell cap.
func NewDensityLimiter(cellSize float32, maxPerCell int) *DensityLimiter {
	if cellSize <= 0 {
		cellSize = 0.05
	}
	if maxPerCell < 1 {
		maxPerCell = 1
	}
	return &DensityLimiter{
		cellSize:   cellSize,
		maxPerCell: maxPerCell,
		cells:      make(map[cellKey]int),
	}
}

// TryReserve accounts one point against the cell containing pos. Returns
// false once the cell is at capacity; the caller must then skip the write.
func (d *DensityLimiter) TryReserve(pos types.Vec3) bool {
	key := d.quantize(pos)
	if d.cells[key] >= d.maxPerCell {
		return false
	}
	d.cells[key]++
	return true
}

// SetParams replaces the cell size and per-cell cap. Existing counts were
// quantized under the old cell size and are meaningless under the new
// one, so the map is reset.
func (d *DensityLimiter) SetParams(cellSize float32, maxPerCell int) {
	if cellSize > 0 {
		d.cellSize = cellSize
	}
	if maxPerCell >= 1 {
		d.maxPerCell = maxPerCell
	}
	d.cells = make(map[cellKey]int)
}

// Clear drops all cell counts. Called together with PointStore.Clear.
func (d *DensityLimiter) Clear() {
	d.cells = make(map[cellKey]int)
}

// Number of occupied cells.
func (d *DensityLimiter) CellCount() int {
	return len(d.cells)
}

func (d *DensityLimiter) quantize(pos types.Vec3) cellKey {
	inv := 1.0 / d.cellSize
	return cellKey{
		x: int32(math.Floor(float64(pos[0] * inv))),
		y: int32(math.Floor(float64(pos[1] * inv))),
		z: int32(math.Floor(float64(pos[2] * inv))),
	}
}
