package renderer

import "time"

type FrameStats struct {
	// Frames presented since the renderer started.
	Frames uint64

	// Points in the last uploaded buffer.
	PointsUploaded int

	// Time spent re-uploading dirty buffers last frame.
	UploadTime time.Duration

	// Total time for the last frame.
	FrameTime time.Duration
}
