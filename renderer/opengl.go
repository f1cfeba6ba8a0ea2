package renderer

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/yht0511/terminus-lidar/lidar"
	"github.com/yht0511/terminus-lidar/log"
	"github.com/yht0511/terminus-lidar/types"
)

const (
	// Coefficients for converting delta cursor movements to yaw/pitch angles.
	mouseSensitivityX float32 = 0.0025
	mouseSensitivityY float32 = 0.0025

	// Camera movement speed in world units per frame.
	cameraMoveSpeed float32 = 0.06
)

// An interactive opengl-based point cloud viewer. Point positions and
// colors live in two VBOs that are only re-uploaded on the frames the
// engine flags them dirty.
type interactiveGLRenderer struct {
	engine *lidar.Engine
	camera *FPSCamera
	opts   Options
	logger log.Logger

	window *glfw.Window

	positionsVBO uint32
	colorsVBO    uint32

	lastCursor    types.Vec2
	cursorPrimed  bool
	scanRequested bool
	sweeping      bool

	stats FrameStats
}

// Create an interactive viewer around an engine and the camera feeding
// its pose. Must be called from the main OS thread.
func NewOpenGL(engine *lidar.Engine, camera *FPSCamera, opts Options, logger log.Logger) (Renderer, error) {
	if engine == nil {
		return nil, ErrNoEngine
	}
	if logger == nil {
		logger = log.Nil()
	}

	r := &interactiveGLRenderer{
		engine: engine,
		camera: camera,
		opts:   opts,
		logger: logger,
	}

	if err := r.initGL(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *interactiveGLRenderer) initGL() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("%w: glfw: %v", ErrInitFailed, err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	window, err := glfw.CreateWindow(int(r.opts.FrameW), int(r.opts.FrameH), "terminus-lidar", nil, nil)
	if err != nil {
		return fmt.Errorf("%w: could not create window: %v", ErrInitFailed, err)
	}
	r.window = window
	window.MakeContextCurrent()
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	window.SetMouseButtonCallback(r.onMouseButton)
	window.SetKeyCallback(r.onKey)

	if err = gl.Init(); err != nil {
		return fmt.Errorf("%w: opengl: %v", ErrInitFailed, err)
	}

	gl.GenBuffers(1, &r.positionsVBO)
	gl.GenBuffers(1, &r.colorsVBO)

	gl.Enable(gl.DEPTH_TEST)
	gl.PointSize(r.opts.PointSize)
	gl.ClearColor(0, 0, 0, 1)
	return nil
}

// Render advances the engine one frame, re-uploads whatever it marked
// dirty and presents the cloud. Returns ErrWindowClosed once the user
// closes the window.
func (r *interactiveGLRenderer) Render() error {
	if r.window.ShouldClose() {
		return ErrWindowClosed
	}
	frameStart := time.Now()

	glfw.PollEvents()
	r.applyInput()

	r.engine.Update()
	r.upload()

	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	r.applyCamera()
	r.drawCloud()
	r.drawBeam()

	r.window.SwapBuffers()

	r.stats.Frames++
	r.stats.FrameTime = time.Since(frameStart)
	return nil
}

// upload pushes dirty engine buffers into the VBOs.
func (r *interactiveGLRenderer) upload() {
	posDirty, colDirty := r.engine.Dirty()
	if !posDirty && !colDirty {
		return
	}
	uploadStart := time.Now()

	positions := r.engine.PositionsView()
	colors := r.engine.ColorsView()

	if posDirty {
		gl.BindBuffer(gl.ARRAY_BUFFER, r.positionsVBO)
		gl.BufferData(gl.ARRAY_BUFFER, len(positions)*4, gl.Ptr(positions), gl.DYNAMIC_DRAW)
	}
	if colDirty {
		gl.BindBuffer(gl.ARRAY_BUFFER, r.colorsVBO)
		gl.BufferData(gl.ARRAY_BUFFER, len(colors)*4, gl.Ptr(colors), gl.DYNAMIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.engine.ClearDirty()
	r.stats.PointsUploaded = r.engine.Count()
	r.stats.UploadTime = time.Since(uploadStart)
}

func (r *interactiveGLRenderer) applyCamera() {
	aspect := float64(r.opts.FrameW) / float64(r.opts.FrameH)
	near := 0.01
	top := near * math.Tan(float64(r.opts.FOV)*math.Pi/360.0)

	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.Frustum(-top*aspect, top*aspect, -top, top, near, 1000.0)

	yaw, pitch := r.camera.Angles()
	pos := r.camera.Position()

	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()
	gl.Rotatef(-pitch*180/math.Pi, 1, 0, 0)
	gl.Rotatef(-yaw*180/math.Pi, 0, 1, 0)
	gl.Translatef(-pos[0], -pos[1], -pos[2])
}

func (r *interactiveGLRenderer) drawCloud() {
	count := r.engine.Count()
	if count == 0 {
		return
	}

	gl.EnableClientState(gl.VERTEX_ARRAY)
	gl.EnableClientState(gl.COLOR_ARRAY)

	gl.BindBuffer(gl.ARRAY_BUFFER, r.positionsVBO)
	gl.VertexPointer(3, gl.FLOAT, 0, nil)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.colorsVBO)
	gl.ColorPointer(3, gl.FLOAT, 0, nil)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.DrawArrays(gl.POINTS, 0, int32(count))

	gl.DisableClientState(gl.COLOR_ARRAY)
	gl.DisableClientState(gl.VERTEX_ARRAY)
}

// The transient beam subset is tiny and redrawn every frame, so
// immediate mode is fine here.
func (r *interactiveGLRenderer) drawBeam() {
	beam := r.engine.ActiveBeam()
	if len(beam) == 0 {
		return
	}

	gl.PointSize(r.opts.PointSize * 2)
	gl.Begin(gl.POINTS)
	gl.Color3f(1, 0.2, 0.15)
	for _, p := range beam {
		gl.Vertex3f(p[0], p[1], p[2])
	}
	gl.End()
	gl.PointSize(r.opts.PointSize)
}

func (r *interactiveGLRenderer) applyInput() {
	if r.window.GetKey(glfw.KeyW) == glfw.Press {
		r.camera.MoveLocal(0, cameraMoveSpeed)
	}
	if r.window.GetKey(glfw.KeyS) == glfw.Press {
		r.camera.MoveLocal(0, -cameraMoveSpeed)
	}
	if r.window.GetKey(glfw.KeyA) == glfw.Press {
		r.camera.MoveLocal(-cameraMoveSpeed, 0)
	}
	if r.window.GetKey(glfw.KeyD) == glfw.Press {
		r.camera.MoveLocal(cameraMoveSpeed, 0)
	}

	x, y := r.window.GetCursorPos()
	cursor := types.XY(float32(x), float32(y))
	if r.cursorPrimed {
		delta := cursor.Sub(r.lastCursor)
		r.camera.Look(-delta[0]*mouseSensitivityX, -delta[1]*mouseSensitivityY)
	}
	r.lastCursor = cursor
	r.cursorPrimed = true

	if r.scanRequested {
		r.scanRequested = false
		r.engine.StartScan(lidar.ScanParams{
			Origin:        r.camera.Position(),
			Orientation:   r.camera.Rotation(),
			Duration:      r.opts.ScanDuration,
			Rows:          r.opts.ScanRows,
			SamplesPerRow: r.opts.ScanSamples,
			FOV:           r.opts.ScanFOV,
		})
	}
}

func (r *interactiveGLRenderer) onMouseButton(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if button == glfw.MouseButtonLeft && action == glfw.Press {
		r.scanRequested = true
	}
}

func (r *interactiveGLRenderer) onKey(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	switch key {
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	case glfw.KeyC:
		r.engine.Clear()
	case glfw.KeyV:
		r.sweeping = !r.sweeping
		if r.sweeping {
			r.engine.StartSweep()
		} else {
			r.engine.StopSweep()
		}
	}
}

func (r *interactiveGLRenderer) Close() {
	if r.window != nil {
		r.window.Destroy()
		r.window = nil
	}
	glfw.Terminate()
}

func (r *interactiveGLRenderer) Stats() FrameStats {
	return r.stats
}
