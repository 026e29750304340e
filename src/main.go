package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/integrii/flaggy"
	"github.com/sirupsen/logrus"

	"gameoflife/src/config"
	"gameoflife/src/simulation"
	"gameoflife/src/universe"
	"gameoflife/src/view"
)

//EnvOptions are the command line options which are not part of the config file
type EnvOptions struct {
	configPath  string
	interactive bool
	gui         bool
	print       bool
	scale       int
}

//overrides hold the flags which replace the config values when set
type overrides struct {
	width    int
	height   int
	interval time.Duration
	maxSteps int
	seed     int64
	engine   string
	pattern  string
	random   bool
	logLevel string
}

func main() {
	eo, ov := initOptions()

	cfg := config.Default()
	if eo.configPath != "" {
		var err error
		if cfg, err = config.Load(eo.configPath); err != nil {
			logrus.Fatal(err)
		}
	}
	cfg = ov.apply(cfg)
	if err := cfg.Validate(); err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}
	logrus.SetLevel(cfg.Level())

	if err := run(eo, cfg); err != nil {
		logrus.Fatal(err)
	}
}

func initOptions() (eo *EnvOptions, ov *overrides) {
	eo = &EnvOptions{scale: 8}
	ov = &overrides{interval: -1, maxSteps: -1}

	flaggy.SetName("gameoflife")
	flaggy.SetDescription("\"The Life\" game simulation on a toroidal field")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.String(&eo.configPath, "c", "config", "YAML configuration file")
	flaggy.Int(&ov.width, "x", "width", "Width of a simulation field")
	flaggy.Int(&ov.height, "y", "height", "Height of a simulation field")
	flaggy.Duration(&ov.interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&ov.maxSteps, "s", "maxSteps", "Limit the simulation to maxSteps, 0 is unlimited")
	flaggy.Int64(&ov.seed, "", "seed", "Seed of the random data")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.Bool(&eo.gui, "g", "gui", "Open the window (requires the ebiten build tag)")
	flaggy.Int(&eo.scale, "", "scale", "Window pixels per cell")
	flaggy.Bool(&ov.random, "r", "random", "Settle with random data")
	flaggy.String(&ov.engine, "e", "engine", "Engine to use ["+strings.Join(universe.Engines(), "|")+"]")
	flaggy.String(&ov.pattern, "p", "pattern", "Settle with the pattern in the center of the field")
	flaggy.String(&ov.logLevel, "", "logLevel", "Log level [trace|debug|info|warn|error]")
	flaggy.Bool(&eo.print, "", "print", "Print the field when the simulation is finished")

	flaggy.Parse()
	return
}

//apply replaces the config values by the flags given on the command line
func (ov *overrides) apply(c config.Config) config.Config {
	if ov.width > 0 {
		c.Width = dimensionFlag(ov.width)
	}
	if ov.height > 0 {
		c.Height = dimensionFlag(ov.height)
	}
	if ov.interval >= 0 {
		c.Interval = ov.interval
	}
	if ov.maxSteps >= 0 {
		c.MaxSteps = ov.maxSteps
	}
	if ov.seed != 0 {
		c.Seed = ov.seed
	}
	if ov.engine != "" {
		c.Engine = ov.engine
	}
	if ov.logLevel != "" {
		c.LogLevel = ov.logLevel
	}
	if ov.random {
		c.Random = true
	}
	if ov.pattern != "" {
		c.Seeds = []config.SeedSpec{{Pattern: ov.pattern, Row: int32(c.Height / 2), Col: int32(c.Width / 2)}}
	}
	return c
}

//dimensionFlag converts the flag value, too large values stay invalid instead of wrapping around uint32
func dimensionFlag(v int) uint32 {
	if v > config.MaxDimension {
		return config.MaxDimension + 1
	}
	return uint32(v)
}

//newSimulation creates the universe and settles it as configured
func newSimulation(cfg config.Config, stateCh chan simulation.Status) (*simulation.Simulation, error) {
	engine, err := universe.ParseEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	u := universe.NewEmpty(cfg.Width, cfg.Height,
		universe.WithEngine(engine),
		universe.WithRandomSource(rand.New(rand.NewSource(seed))),
	)
	s := simulation.New(u, cfg.SimulationOptions(), stateCh)
	if err := settle(s, cfg); err != nil {
		s.Close()
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"width":  cfg.Width,
		"height": cfg.Height,
		"engine": engine,
		"seed":   seed,
	}).Debug("universe created")
	return s, nil
}

func settle(s *simulation.Simulation, cfg config.Config) error {
	for _, p := range cfg.UserPatterns() {
		if err := s.AddTemplate(p); err != nil {
			return err
		}
	}
	if cfg.Random {
		return s.Randomize()
	}
	for _, seed := range cfg.Seeds {
		if err := s.AddPattern(seed.Pattern, seed.Row, seed.Col); err != nil {
			return fmt.Errorf("seed %s at (%d, %d): %w", seed.Pattern, seed.Row, seed.Col, err)
		}
	}
	return nil
}

func run(eo *EnvOptions, cfg config.Config) error {
	if eo.interactive || eo.gui {
		s, err := newSimulation(cfg, nil)
		if err != nil {
			return err
		}
		defer s.Close()

		var v simulation.Viewer
		if eo.gui {
			if v, err = view.NewWindow(eo.scale, logrus.StandardLogger()); err != nil {
				return err
			}
		} else {
			if v, err = view.NewConsoleUI(logrus.StandardLogger()); err != nil {
				return err
			}
			//the terminal belongs to the ui now
			logrus.SetOutput(io.Discard)
		}
		if err := s.RegisterViewer(v); err != nil {
			return err
		}
		return v.Start()
	}

	stateCh := make(chan simulation.Status, 10) //the buffered channel to getting the simulation status
	s, err := newSimulation(cfg, stateCh)
	if err != nil {
		return err
	}
	defer s.Close()

	out := view.NewConsoleOut(logrus.StandardLogger(), 10)
	if err := s.RegisterViewer(out); err != nil {
		return err
	}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	if err := out.Start(); err != nil {
		return err
	}
	if !waitFinished(stateCh, interrupt) {
		logrus.Warn("interrupted")
		go drain(stateCh, s.Done())
		s.Stop()
	}
	if eo.print {
		text, err := s.Render()
		if err != nil {
			return err
		}
		fmt.Print(text)
	}
	return nil
}

//waitFinished reads the status updates until the simulation is finished, false when interrupted
func waitFinished(stateCh chan simulation.Status, interrupt <-chan os.Signal) bool {
	for {
		select {
		case st := <-stateCh:
			if st.RunningMode == simulation.RunningStateFinished {
				return true
			}
		case <-interrupt:
			return false
		}
	}
}

//drain discards the status updates until the simulation is closed
func drain(stateCh chan simulation.Status, done <-chan struct{}) {
	for {
		select {
		case <-stateCh:
		case <-done:
			return
		}
	}
}
