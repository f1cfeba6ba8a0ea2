package lidar

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
)

// QueueStatus builds a tabular snapshot of the pipeline's occupancy and
// throughput counters.
func (e *Engine) QueueStatus() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Stage", "Metric", "Value"})
	table.Append([]string{"Points", "live", fmt.Sprintf("%d / %d", e.store.Count(), e.store.Capacity())})
	table.Append([]string{"", "density cells", fmt.Sprintf("%d", e.limiter.CellCount())})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Emission", "pending", fmt.Sprintf("%d", e.queue.Len())})
	table.Append([]string{"", "per frame", fmt.Sprintf("%d", e.queue.Throughput())})
	table.Append([]string{"", "dropped", fmt.Sprintf("%d", e.queue.Dropped())})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Scan", "rays cast", fmt.Sprintf("%d", e.scheduler.raysCast)})
	table.Append([]string{"", "rays hit", fmt.Sprintf("%d", e.scheduler.raysHit)})
	table.Append([]string{"", "skipped", fmt.Sprintf("%d", e.scheduler.skipped)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Index", "built", fmt.Sprintf("%d", e.builder.BuiltCount())})
	table.Append([]string{"", "pending", fmt.Sprintf("%d", e.builder.PendingCount())})
	table.SetFooter([]string{"Frames", " ", fmt.Sprintf("%d", e.frames)})

	table.Render()
	return buf.String()
}
