package renderer

type Options struct {
	// Window dims for the OpenGL viewer.
	FrameW uint32
	FrameH uint32

	// Vertical field of view in degrees.
	FOV float32

	// Rendered point size in pixels.
	PointSize float32

	// Burst scan parameters fired on click / keypress.
	ScanDuration float64
	ScanRows     int
	ScanSamples  int
	ScanFOV      float32

	// World units per terminal cell for the top-down viewer.
	CellScale float32
}

// DefaultOptions returns viewer settings suitable for the demo scene.
func DefaultOptions() Options {
	return Options{
		FrameW:       1024,
		FrameH:       768,
		FOV:          70,
		PointSize:    2,
		ScanDuration: 0.3,
		ScanRows:     48,
		ScanSamples:  96,
		ScanFOV:      1.0,
		CellScale:    0.25,
	}
}
