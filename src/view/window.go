//go:build ebiten

package view

import (
	"errors"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"gameoflife/src/simulation"
)

//Window paints the universe in an ebiten window
type Window struct {
	c     simulation.Controller
	scale int

	mu     sync.Mutex
	frame  simulation.Frame
	status simulation.Status

	img        *ebiten.Image
	imgW, imgH uint32
	buf        []byte

	onColor  color.Color
	offColor color.Color
	log      logrus.FieldLogger
}

//NewWindow creates the window viewer, every cell takes scale x scale pixels
func NewWindow(scale int, log logrus.FieldLogger) (*Window, error) {
	if scale <= 0 {
		scale = 8
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Window{
		scale:    scale,
		onColor:  color.White,
		offColor: color.Black,
		log:      log,
	}, nil
}

func (w *Window) Register(c simulation.Controller) {
	w.c = c
}

func (w *Window) Refresh(f simulation.Frame, s simulation.Status) {
	w.mu.Lock()
	w.frame = f
	w.status = s
	w.mu.Unlock()
}

//Start opens the window and blocks until it is closed
func (w *Window) Start() error {
	f, _ := w.current()
	ebiten.SetWindowTitle("The Life")
	ebiten.SetWindowSize(int(f.Width)*w.scale, int(f.Height)*w.scale)
	if err := ebiten.RunGame(w); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func (w *Window) current() (simulation.Frame, simulation.Status) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frame, w.status
}

//Update handles the input, the simulation runs on its own goroutine
func (w *Window) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	f, s := w.current()
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if s.RunningMode == simulation.RunningStateRun {
			w.c.Stop()
		} else {
			w.c.Run()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		w.c.Step()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		w.report("clear", w.c.Clear())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		w.report("random", w.c.Randomize())
	}

	x, y := ebiten.CursorPosition()
	row, col, ok := cellAt(x, y, w.scale, f.Width, f.Height)
	if !ok {
		return nil
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		w.report("toggle", w.c.ToggleCell(row, col))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		w.report("glider", w.c.AddPattern("glider", int32(row), int32(col)))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		w.report("pulsar", w.c.AddPattern("pulsar", int32(row), int32(col)))
	}
	return nil
}

//Draw renders the last received frame
func (w *Window) Draw(screen *ebiten.Image) {
	f, _ := w.current()
	if f.Width == 0 || f.Height == 0 {
		return
	}
	if w.img == nil || w.imgW != f.Width || w.imgH != f.Height {
		w.img = ebiten.NewImage(int(f.Width), int(f.Height))
		w.imgW, w.imgH = f.Width, f.Height
		w.buf = make([]byte, 4*len(f.Cells))
	}
	fillBinaryRGBA(w.buf, f.Bytes(), w.onColor, w.offColor)
	w.img.WritePixels(w.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w.scale), float64(w.scale))
	screen.DrawImage(w.img, op)
}

//Layout returns the logical screen size
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	f, _ := w.current()
	if f.Width == 0 || f.Height == 0 {
		return outsideWidth, outsideHeight
	}
	return int(f.Width) * w.scale, int(f.Height) * w.scale
}

func (w *Window) report(action string, err error) {
	if err != nil {
		w.log.WithError(err).WithField("action", action).Warn("command failed")
	}
}
