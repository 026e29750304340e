package universe

import (
	"errors"
	"fmt"
	"sort"
)

//Offset is the position of a pattern cell relative to the stamp origin
type Offset struct {
	Row int32
	Col int32
}

//Pattern represents the seeding template which can be stamped into the universe
type Pattern struct {
	Name  string
	Descr string
	Cells []Offset
}

var (
	ErrUnknownPattern   = errors.New("unknown pattern")
	ErrDuplicatePattern = errors.New("pattern already registered")
	ErrInvalidPattern   = errors.New("invalid pattern")
)

var (
	glider = Pattern{
		Name:  "glider",
		Descr: "5 cells moving one cell diagonally every 4 generations",
		Cells: []Offset{{-1, 0}, {0, 1}, {1, -1}, {1, 0}, {1, 1}},
	}

	pulsar = Pattern{
		Name:  "pulsar",
		Descr: "48 cells oscillator with period 3",
		Cells: []Offset{
			{-6, -4}, {-6, -3}, {-6, -2}, {-6, 2}, {-6, 3}, {-6, 4},
			{-4, -6}, {-4, -1}, {-4, 1}, {-4, 6},
			{-3, -6}, {-3, -1}, {-3, 1}, {-3, 6},
			{-2, -6}, {-2, -1}, {-2, 1}, {-2, 6},
			{-1, -4}, {-1, -3}, {-1, -2}, {-1, 2}, {-1, 3}, {-1, 4},
			{6, -4}, {6, -3}, {6, -2}, {6, 2}, {6, 3}, {6, 4},
			{4, -6}, {4, -1}, {4, 1}, {4, 6},
			{3, -6}, {3, -1}, {3, 1}, {3, 6},
			{2, -6}, {2, -1}, {2, 1}, {2, 6},
			{1, -4}, {1, -3}, {1, -2}, {1, 2}, {1, 3}, {1, 4},
		},
	}

	block = Pattern{
		Name:  "block",
		Descr: "2x2 still life",
		Cells: []Offset{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
	}

	blinker = Pattern{
		Name:  "blinker",
		Descr: "3 cells oscillator with period 2",
		Cells: []Offset{{0, -1}, {0, 0}, {0, 1}},
	}
)

//Glider returns a copy of the glider pattern
func Glider() Pattern { return glider.clone() }

//Pulsar returns a copy of the pulsar pattern
func Pulsar() Pattern { return pulsar.clone() }

func Block() Pattern { return block.clone() }

func Blinker() Pattern { return blinker.clone() }

//clone copies the cells so the caller can't change the stored pattern
func (p Pattern) clone() Pattern {
	p.Cells = append([]Offset(nil), p.Cells...)
	return p
}

//Library is the named pattern storage
type Library struct {
	patterns map[string]Pattern
}

//NewLibrary creates the library holding the built-in patterns
func NewLibrary() *Library {
	l := &Library{patterns: map[string]Pattern{}}
	for _, p := range []Pattern{glider, pulsar, block, blinker} {
		l.patterns[p.Name] = p
	}
	return l
}

//Add registers the pattern, names are unique
func (l *Library) Add(p Pattern) error {
	if p.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPattern)
	}
	if len(p.Cells) == 0 {
		return fmt.Errorf("%w %q: no cells", ErrInvalidPattern, p.Name)
	}
	if _, ok := l.patterns[p.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicatePattern, p.Name)
	}
	l.patterns[p.Name] = p.clone()
	return nil
}

//Get returns the pattern by name
func (l *Library) Get(name string) (Pattern, error) {
	p, ok := l.patterns[name]
	if !ok {
		return Pattern{}, fmt.Errorf("%w %q", ErrUnknownPattern, name)
	}
	return p.clone(), nil
}

//Names returns the sorted pattern names
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.patterns))
	for n := range l.patterns {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
