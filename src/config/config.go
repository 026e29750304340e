package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"gameoflife/src/simulation"
	"gameoflife/src/universe"
)

//Config is the run configuration loaded from YAML and overridden by the command line flags
type Config struct {
	Width    uint32        `yaml:"width"`
	Height   uint32        `yaml:"height"`
	Seed     int64         `yaml:"seed"` //0 picks a time based seed
	Engine   string        `yaml:"engine"`
	Interval time.Duration `yaml:"interval"`
	MaxSteps int           `yaml:"max_steps"` //0 is unlimited
	LogLevel string        `yaml:"log_level"`
	Random   bool          `yaml:"random"` //fill with random data instead of the seeds
	Patterns []PatternSpec `yaml:"patterns,omitempty"`
	Seeds    []SeedSpec    `yaml:"seeds,omitempty"`
}

//PatternSpec defines the user pattern, cells are [row, col] offsets
type PatternSpec struct {
	Name  string     `yaml:"name"`
	Descr string     `yaml:"descr,omitempty"`
	Cells [][2]int32 `yaml:"cells"`
}

//SeedSpec places the pattern into the universe
type SeedSpec struct {
	Pattern string `yaml:"pattern"`
	Row     int32  `yaml:"row"`
	Col     int32  `yaml:"col"`
}

//MaxDimension limits the width and the height of the field
const MaxDimension = 16384

var ErrInvalid = errors.New("invalid configuration")

//Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Width:    universe.DefWidth,
		Height:   universe.DefHeight,
		Engine:   string(universe.EngineBase),
		Interval: simulation.DefSimulationInterval,
		MaxSteps: simulation.DefMaxSteps,
		LogLevel: logrus.InfoLevel.String(),
		Seeds: []SeedSpec{
			{Pattern: universe.Pulsar().Name, Row: universe.DefHeight / 2, Col: universe.DefWidth / 2},
			{Pattern: universe.Glider().Name, Row: 4, Col: 4},
		},
	}
}

//Load reads the YAML file on top of the defaults and validates the result
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return c, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	logrus.WithField("path", path).Debug("config loaded")
	return c, nil
}

//Validate checks the values and the pattern references
func (c Config) Validate() error {
	if c.Width == 0 || c.Height == 0 {
		return fmt.Errorf("%w: dimension %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.Width > MaxDimension || c.Height > MaxDimension {
		return fmt.Errorf("%w: dimension %dx%d exceeds %d", ErrInvalid, c.Width, c.Height, MaxDimension)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: negative interval %v", ErrInvalid, c.Interval)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: negative max_steps %d", ErrInvalid, c.MaxSteps)
	}
	if _, err := universe.ParseEngine(c.Engine); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	lib, err := c.Library()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for _, s := range c.Seeds {
		if _, err := lib.Get(s.Pattern); err != nil {
			return fmt.Errorf("%w: seed: %v", ErrInvalid, err)
		}
	}
	return nil
}

//UserPatterns converts the pattern definitions
func (c Config) UserPatterns() []universe.Pattern {
	patterns := make([]universe.Pattern, 0, len(c.Patterns))
	for _, ps := range c.Patterns {
		p := universe.Pattern{Name: ps.Name, Descr: ps.Descr, Cells: make([]universe.Offset, 0, len(ps.Cells))}
		for _, rc := range ps.Cells {
			p.Cells = append(p.Cells, universe.Offset{Row: rc[0], Col: rc[1]})
		}
		patterns = append(patterns, p)
	}
	return patterns
}

//Library returns the built-in patterns together with the user ones
func (c Config) Library() (*universe.Library, error) {
	lib := universe.NewLibrary()
	for _, p := range c.UserPatterns() {
		if err := lib.Add(p); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

//SimulationOptions returns the options for simulation.New
func (c Config) SimulationOptions() simulation.Options {
	return simulation.Options{
		Interval: c.Interval,
		MaxSteps: c.MaxSteps,
	}
}

//Level returns the parsed log level, Info if it isn't valid
func (c Config) Level() logrus.Level {
	l, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return l
}
