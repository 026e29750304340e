package universe

import (
	"errors"
	"math/rand"
	"time"
)

//Cell is the state of one grid position
//the numeric values are fixed so the cell buffer can be read as raw bytes
type Cell uint8

const (
	Dead  Cell = 0
	Alive Cell = 1
)

//glyphs used by Render
const (
	DeadGlyph  = '◻'
	AliveGlyph = '◼'
)

//Toggle flips the cell between Dead and Alive
func (c *Cell) Toggle() {
	if *c == Dead {
		*c = Alive
	} else {
		*c = Dead
	}
}

func (c Cell) String() string {
	if c == Dead {
		return string(DeadGlyph)
	}
	return string(AliveGlyph)
}

//Coord addresses a single cell
type Coord struct {
	Row uint32
	Col uint32
}

//RandomSource is the uniform [0,1) sampler used to seed the grid
//*rand.Rand satisfies it
type RandomSource interface {
	Float64() float64
}

//TickStats describes the generation produced by Tick
type TickStats struct {
	LiveCells int
	Changed   bool
}

//default universe size
const (
	DefWidth  = 64
	DefHeight = 64
)

//deathThreshold: a sample above it produces a Dead cell, otherwise Alive
const deathThreshold = 0.5

var (
	ErrOutOfRange    = errors.New("cell coordinates out of range")
	ErrEmptyUniverse = errors.New("universe has zero width or height")
	ErrUnknownEngine = errors.New("unknown engine")
)

//Option configures a Universe at construction time
type Option func(u *Universe)

//WithRandomSource injects the random source used by New and Reset
func WithRandomSource(src RandomSource) Option {
	return func(u *Universe) {
		if src != nil {
			u.rnd = src
		}
	}
}

//WithSize overrides the default 64x64 size
func WithSize(width, height uint32) Option {
	return func(u *Universe) {
		u.width = width
		u.height = height
	}
}

//WithEngine selects the algorithm used by Tick
func WithEngine(e Engine) Option {
	return func(u *Universe) {
		u.engine = e
	}
}

func newTimeSeededSource() RandomSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
