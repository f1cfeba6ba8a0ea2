// Package renderer contains the thin upload adapters between the lidar
// engine's flat buffers and a display: an OpenGL point-cloud viewer and
// a top-down terminal viewer. The engine itself never touches a
// rendering API; these adapters consume its read-only views and dirty
// flags.
package renderer

type Renderer interface {
	// Advance the engine by one frame and present it.
	Render() error

	// Shutdown the renderer and release its display resources.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
