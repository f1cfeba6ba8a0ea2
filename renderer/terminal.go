package renderer

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/yht0511/terminus-lidar/lidar"
	"github.com/yht0511/terminus-lidar/log"
)

// Intensity ramp for cells, dimmest first.
var shadeRamp = []rune(" .:-=+*#%@")

// terminalViewer renders a top-down orthographic slice of the point
// cloud into a tcell screen. Handy for eyeballing scan coverage over an
// SSH session where OpenGL is not available.
type terminalViewer struct {
	engine *lidar.Engine
	camera *FPSCamera
	opts   Options
	logger log.Logger

	screen tcell.Screen

	luminance []float32
	sweeping  bool

	stats FrameStats
}

// Create a terminal viewer around an engine and the camera feeding its pose.
func NewTerminal(engine *lidar.Engine, camera *FPSCamera, opts Options, logger log.Logger) (Renderer, error) {
	if engine == nil {
		return nil, ErrNoEngine
	}
	if logger == nil {
		logger = log.Nil()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitFailed, err)
	}
	if err = screen.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitFailed, err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
	screen.Clear()

	return &terminalViewer{
		engine: engine,
		camera: camera,
		opts:   opts,
		logger: logger,
		screen: screen,
	}, nil
}

func (r *terminalViewer) Render() error {
	frameStart := time.Now()

	if err := r.handleInput(); err != nil {
		return err
	}

	r.engine.Update()
	r.draw()

	r.stats.Frames++
	r.stats.FrameTime = time.Since(frameStart)
	return nil
}

func (r *terminalViewer) handleInput() error {
	for r.screen.HasPendingEvent() {
		ev := r.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			r.screen.Sync()
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
				return ErrScreenClosed
			case ev.Rune() == ' ':
				r.engine.StartScan(lidar.ScanParams{
					Origin:        r.camera.Position(),
					Orientation:   r.camera.Rotation(),
					Duration:      r.opts.ScanDuration,
					Rows:          r.opts.ScanRows,
					SamplesPerRow: r.opts.ScanSamples,
					FOV:           r.opts.ScanFOV,
				})
			case ev.Rune() == 'c':
				r.engine.Clear()
			case ev.Rune() == 'v':
				r.sweeping = !r.sweeping
				if r.sweeping {
					r.engine.StartSweep()
				} else {
					r.engine.StopSweep()
				}
			}
		}
	}
	return nil
}

// draw flattens live points along Y onto the terminal grid, shading each
// cell by its brightest point.
func (r *terminalViewer) draw() {
	width, height := r.screen.Size()
	if width < 1 || height < 2 {
		return
	}
	gridH := height - 1 // bottom row is the status line

	if len(r.luminance) != width*gridH {
		r.luminance = make([]float32, width*gridH)
	}
	for i := range r.luminance {
		r.luminance[i] = 0
	}

	center := r.camera.Position()
	positions := r.engine.PositionsView()
	colors := r.engine.ColorsView()
	count := r.engine.Count()

	for i := 0; i < count; i++ {
		off := i * 3
		col := width/2 + int((positions[off]-center[0])/r.opts.CellScale)
		row := gridH/2 - int((positions[off+2]-center[2])/r.opts.CellScale)
		if col < 0 || col >= width || row < 0 || row >= gridH {
			continue
		}

		lum := (colors[off] + colors[off+1] + colors[off+2]) / 3
		if lum > r.luminance[row*width+col] {
			r.luminance[row*width+col] = lum
		}
	}

	r.screen.Clear()
	for row := 0; row < gridH; row++ {
		for col := 0; col < width; col++ {
			lum := r.luminance[row*width+col]
			if lum <= 0 {
				continue
			}
			shade := int(lum * float32(len(shadeRamp)-1))
			if shade >= len(shadeRamp) {
				shade = len(shadeRamp) - 1
			}
			gray := int32(55 + 200*lum)
			if gray > 255 {
				gray = 255
			}
			style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(gray, gray, gray))
			r.screen.SetContent(col, row, shadeRamp[shade], nil, style)
		}
	}

	status := fmt.Sprintf(" points %d/%d  queue %d  [space] scan  [v] sweep  [c] clear  [q] quit",
		r.engine.Count(), len(positions)/3, r.engine.QueueLen())
	statusStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	for i, ch := range status {
		if i >= width {
			break
		}
		r.screen.SetContent(i, height-1, ch, nil, statusStyle)
	}

	r.screen.Show()
	r.stats.PointsUploaded = count
}

func (r *terminalViewer) Close() {
	if r.screen != nil {
		r.screen.Fini()
		r.screen = nil
	}
}

func (r *terminalViewer) Stats() FrameStats {
	return r.stats
}
