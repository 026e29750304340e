package simulation

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"gameoflife/src/universe"
)

//Options represents the simulation's configurable options
type Options struct {
	Interval time.Duration //pause between generations while running, 0 runs as fast as possible
	MaxSteps int           //0 means no limit
}

//Status represents the status of the simulation at concrete moment
type Status struct {
	IterationNum  int
	RunningMode   RunningState
	LiveCells     int
	IterationTime time.Duration
	Width         uint32
	Height        uint32
}

//Frame is the copy of the universe cells taken between two commands
type Frame struct {
	Width  uint32
	Height uint32
	Cells  []universe.Cell
}

//Alive reports whether the cell at row, col is alive, false outside the frame
func (f Frame) Alive(row, col uint32) bool {
	if row >= f.Height || col >= f.Width {
		return false
	}
	return f.Cells[int(row)*int(f.Width)+int(col)] == universe.Alive
}

//Bytes returns the frame cells as bytes, 0 dead and 1 alive
func (f Frame) Bytes() []byte {
	return universe.CellBytes(f.Cells)
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
//Refresh is called from the simulation goroutine and must not call synchronous Controller methods
type Viewer interface {
	Register(c Controller)
	Refresh(f Frame, s Status)
	Start() error
}

//Controller is the part of Simulation used by the viewers
type Controller interface {
	Status() Status
	Options() Options
	Snapshot() (Frame, error)
	Patterns() ([]string, error)
	Run()
	Stop()
	Step()
	Clear() error
	Randomize() error
	ToggleCell(row, col uint32) error
	AddPattern(name string, row, col int32) error
}

//The simulation running status at the concrete moment
type RunningState int

const (
	RunningStateManual RunningState = iota
	RunningStateStep
	RunningStateRun
	RunningStateFinished
)

func (rs RunningState) String() string {
	switch rs {
	case RunningStateManual:
		return "manual"
	case RunningStateStep:
		return "step"
	case RunningStateRun:
		return "run"
	case RunningStateFinished:
		return "finished"
	}
	return "unknown"
}

//default options
const (
	DefSimulationInterval = time.Millisecond * 100
	DefMaxSteps           = 1000
)

var DefaultOptions = Options{
	Interval: DefSimulationInterval,
	MaxSteps: DefMaxSteps,
}

var ErrClosed = errors.New("simulation is closed")

//alwaysReady drives the run loop when there is no interval between the steps
var alwaysReady = func() <-chan time.Time {
	c := make(chan time.Time)
	close(c)
	return c
}()

//Simulation drives a universe from its own goroutine
//every operation is a command executed by that goroutine, so the universe is never shared
type Simulation struct {
	options Options
	u       *universe.Universe
	library *universe.Library
	state   struct {
		Status
		sync.Mutex
	}
	stateCh   chan Status
	views     []Viewer
	controlCh chan func()
	closeCh   chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once

	//owned by the main loop
	ticker *time.Ticker
	tickC  <-chan time.Time

	log *logrus.Entry
}

//New creates the simulation and starts its main loop
//the simulation takes the ownership of u, stateCh receives the status after every change if not nil
func New(u *universe.Universe, o Options, stateCh chan Status) *Simulation {
	s := &Simulation{
		options:   o,
		u:         u,
		library:   universe.NewLibrary(),
		controlCh: make(chan func(), 16),
		closeCh:   make(chan struct{}),
		doneCh:    make(chan struct{}),
		stateCh:   stateCh,
		log:       logrus.WithField("component", "simulation"),
	}
	s.state.Width = u.Width()
	s.state.Height = u.Height()
	s.state.LiveCells = u.LiveCells()
	s.log.WithFields(logrus.Fields{
		"width":    u.Width(),
		"height":   u.Height(),
		"engine":   u.Engine(),
		"interval": o.Interval,
		"maxSteps": o.MaxSteps,
	}).Debug("simulation created")
	go s.mainLoop()
	return s
}

//Status returns current simulation status
func (s *Simulation) Status() Status {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.Status
}

//Options returns the simulation configuration
func (s *Simulation) Options() Options {
	return s.options
}

//StateCh returns the channel with the status updates
func (s *Simulation) StateCh() chan Status {
	return s.stateCh
}

//Done is closed when the main loop is finished
func (s *Simulation) Done() <-chan struct{} {
	return s.doneCh
}

//Run starts the simulation, returns immediately
//simulation stops on Stop() calling or when the boundary conditions are reached
func (s *Simulation) Run() {
	s.send(s.run)
}

//Stop stops the running simulation, returns immediately
func (s *Simulation) Stop() {
	s.send(s.stop)
}

//Step does one simulation step, returns immediately
//ignored while running
func (s *Simulation) Step() {
	s.send(func() {
		if s.mode() == RunningStateRun {
			return
		}
		s.step()
	})
}

//Clear kills all cells and resets the counters
func (s *Simulation) Clear() error {
	return s.exec(func() error {
		s.u.Kill()
		s.restart()
		return nil
	})
}

//Randomize fills the universe with random data and resets the counters
func (s *Simulation) Randomize() error {
	return s.exec(func() error {
		s.u.Reset()
		s.restart()
		return nil
	})
}

//Resize reallocates the universe, all cells become dead
func (s *Simulation) Resize(width, height uint32) error {
	return s.exec(func() error {
		s.u.SetWidth(width)
		s.u.SetHeight(height)
		s.restart()
		return nil
	})
}

//ToggleCell inverses the cell state at row, col
func (s *Simulation) ToggleCell(row, col uint32) error {
	return s.edit(func() error {
		return s.u.ToggleCell(row, col)
	})
}

//SetCells makes the cells alive
func (s *Simulation) SetCells(coords []universe.Coord) error {
	return s.edit(func() error {
		return s.u.SetCells(coords)
	})
}

//AddPattern stamps the named pattern at row, col
func (s *Simulation) AddPattern(name string, row, col int32) error {
	return s.edit(func() error {
		p, err := s.library.Get(name)
		if err != nil {
			return err
		}
		return s.u.Stamp(p, row, col)
	})
}

//AddTemplate adds the pattern to the library, it can be used later by AddPattern
func (s *Simulation) AddTemplate(p universe.Pattern) error {
	return s.exec(func() error {
		return s.library.Add(p)
	})
}

//Patterns returns the names of the known patterns
func (s *Simulation) Patterns() (names []string, err error) {
	err = s.exec(func() error {
		names = s.library.Names()
		return nil
	})
	return
}

//Snapshot copies the current universe state
func (s *Simulation) Snapshot() (f Frame, err error) {
	err = s.exec(func() error {
		f = s.frame()
		return nil
	})
	return
}

//Render returns the text form of the universe
func (s *Simulation) Render() (text string, err error) {
	err = s.exec(func() error {
		text = s.u.Render()
		return nil
	})
	return
}

//RegisterViewer registers the viewer - the simulation will call the viewer when the state is changed
func (s *Simulation) RegisterViewer(v Viewer) error {
	v.Register(s)
	return s.exec(func() error {
		s.views = append(s.views, v)
		v.Refresh(s.frame(), s.Status())
		return nil
	})
}

//Close stops the main loop and waits for it
func (s *Simulation) Close() {
	s.closeOnce.Do(func() {
		close(s.closeCh)
	})
	<-s.doneCh
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command or the next tick and executes
func (s *Simulation) mainLoop() {
	defer close(s.doneCh)
	defer s.stopTicker()
	for {
		select {
		case cmd := <-s.controlCh:
			cmd()
		case <-s.tickC:
			s.step()
		case <-s.closeCh:
			s.log.Debug("simulation closed")
			return
		}
	}
}

//send queues the command without waiting for it
func (s *Simulation) send(cmd func()) {
	select {
	case s.controlCh <- cmd:
	case <-s.doneCh:
	}
}

//exec queues the command and waits for its result
func (s *Simulation) exec(cmd func() error) error {
	errCh := make(chan error, 1)
	select {
	case s.controlCh <- func() { errCh <- cmd() }:
	case <-s.doneCh:
		return ErrClosed
	}
	select {
	case err := <-errCh:
		return err
	case <-s.doneCh:
		select {
		case err := <-errCh:
			return err
		default:
			return ErrClosed
		}
	}
}

//edit executes the universe modification and publishes the new state
func (s *Simulation) edit(cmd func() error) error {
	return s.exec(func() error {
		if err := cmd(); err != nil {
			return err
		}
		s.state.Lock()
		s.state.LiveCells = s.u.LiveCells()
		s.state.Unlock()
		s.publish()
		return nil
	})
}

func (s *Simulation) mode() RunningState {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.RunningMode
}

//restart stops the run and resets all counters
func (s *Simulation) restart() {
	s.stopTicker()
	s.state.Lock()
	s.state.IterationNum = 0
	s.state.IterationTime = 0
	s.state.LiveCells = s.u.LiveCells()
	s.state.Width = s.u.Width()
	s.state.Height = s.u.Height()
	s.state.RunningMode = RunningStateManual
	s.state.Unlock()
	s.publish()
}

//run starts ticking
func (s *Simulation) run() {
	if s.mode() == RunningStateRun {
		return
	}
	if s.options.Interval > 0 {
		s.ticker = time.NewTicker(s.options.Interval)
		s.tickC = s.ticker.C
	} else {
		s.tickC = alwaysReady
	}
	s.switchRunningState(RunningStateRun)
	s.log.Debug("simulation started")
}

//stop stops the running cycle
func (s *Simulation) stop() {
	if s.mode() != RunningStateRun {
		return
	}
	s.stopTicker()
	s.switchRunningState(RunningStateManual)
	s.log.Debug("simulation stopped")
}

func (s *Simulation) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	s.tickC = nil
}

//step does the next generation calculation for entire universe
//the simulation is finished when MaxSteps is reached, no cells are alive or nothing has changed
func (s *Simulation) step() {
	s.state.Lock()
	rm := s.state.RunningMode
	if rm == RunningStateFinished {
		rm = RunningStateManual
	}
	if s.options.MaxSteps != 0 && s.state.IterationNum >= s.options.MaxSteps {
		s.state.Unlock()
		s.finish("max steps reached")
		return
	}
	s.state.RunningMode = RunningStateStep
	s.state.Unlock()

	start := time.Now()
	stats := s.u.Tick()
	elapsed := time.Since(start)

	s.state.Lock()
	s.state.IterationNum++
	s.state.LiveCells = stats.LiveCells
	s.state.IterationTime = elapsed
	s.state.RunningMode = rm
	iter := s.state.IterationNum
	s.state.Unlock()

	s.log.WithFields(logrus.Fields{
		"iteration": iter,
		"liveCells": stats.LiveCells,
		"elapsed":   elapsed,
	}).Trace("generation computed")

	switch {
	case stats.LiveCells == 0:
		s.finish("no live cells")
	case !stats.Changed:
		s.finish("universe is stable")
	case s.options.MaxSteps != 0 && iter >= s.options.MaxSteps:
		s.finish("max steps reached")
	default:
		s.publish()
	}
}

func (s *Simulation) finish(reason string) {
	s.stopTicker()
	s.switchRunningState(RunningStateFinished)
	st := s.Status()
	s.log.WithFields(logrus.Fields{
		"iteration": st.IterationNum,
		"liveCells": st.LiveCells,
		"reason":    reason,
	}).Info("simulation finished")
}

//switchRunningState switches the state and notifies the upper control software
func (s *Simulation) switchRunningState(to RunningState) {
	s.state.Lock()
	s.state.RunningMode = to
	s.state.Unlock()
	s.publish()
}

//publish writes the status to the stateCh and refreshes the views
//manual mode updates (edits, clear, single steps) are dropped when the stateCh is full,
//run and finish updates wait for the reader
func (s *Simulation) publish() {
	st := s.Status()
	if s.stateCh != nil {
		if st.RunningMode == RunningStateManual {
			select {
			case s.stateCh <- st:
			default:
				s.log.WithField("iteration", st.IterationNum).Debug("state channel is full, status dropped")
			}
		} else {
			select {
			case s.stateCh <- st:
			case <-s.closeCh:
			}
		}
	}
	if len(s.views) == 0 {
		return
	}
	f := s.frame()
	for _, v := range s.views {
		v.Refresh(f, st)
	}
}

func (s *Simulation) frame() Frame {
	return Frame{
		Width:  s.u.Width(),
		Height: s.u.Height(),
		Cells:  append([]universe.Cell(nil), s.u.Cells()...),
	}
}
