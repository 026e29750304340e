package universe

import (
	"fmt"
	"strings"
	"unsafe"
)

//Universe is the toroidal Game of Life grid
//cells are stored row-major: index = row*width + column
//
//A Universe is not safe for concurrent use. Slices returned by Cells and Bytes
//are views of the internal buffer and are stale after any mutating call.
type Universe struct {
	width   uint32
	height  uint32
	cells   []Cell
	scratch []Cell //second buffer for engines that swap instead of allocating
	rnd     RandomSource
	engine  Engine
}

//New creates the universe (64x64 unless WithSize is given) filled with random data
func New(opts ...Option) *Universe {
	u := build(opts)
	u.randomize()
	return u
}

//NewEmpty creates the universe of the given size with all cells dead
func NewEmpty(width, height uint32, opts ...Option) *Universe {
	return build(append(opts, WithSize(width, height)))
}

func build(opts []Option) *Universe {
	u := &Universe{
		width:  DefWidth,
		height: DefHeight,
		engine: EngineBase,
	}
	for _, o := range opts {
		o(u)
	}
	if u.rnd == nil {
		u.rnd = newTimeSeededSource()
	}
	u.cells = make([]Cell, u.size())
	return u
}

func (u *Universe) Width() uint32 {
	return u.width
}

func (u *Universe) Height() uint32 {
	return u.height
}

//Engine returns the engine used by Tick
func (u *Universe) Engine() Engine {
	return u.engine
}

//Cells returns the cell buffer without copying
func (u *Universe) Cells() []Cell {
	return u.cells
}

//Bytes returns the cell buffer reinterpreted as bytes (0 dead, 1 alive)
func (u *Universe) Bytes() []byte {
	return CellBytes(u.cells)
}

//CellBytes reinterprets the cells as bytes without copying
func CellBytes(cells []Cell) []byte {
	if len(cells) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(cells))), len(cells))
}

//SetWidth changes the width and clears the universe
func (u *Universe) SetWidth(width uint32) {
	u.width = width
	u.cells = make([]Cell, u.size())
	u.scratch = nil
}

//SetHeight changes the height and clears the universe
func (u *Universe) SetHeight(height uint32) {
	u.height = height
	u.cells = make([]Cell, u.size())
	u.scratch = nil
}

//Kill sets every cell to Dead
func (u *Universe) Kill() {
	for i := range u.cells {
		u.cells[i] = Dead
	}
}

//Reset fills the universe with random data
func (u *Universe) Reset() {
	u.randomize()
}

//GetIndex returns the buffer index of (row, column)
func (u *Universe) GetIndex(row, column uint32) (int, error) {
	if err := u.check(row, column); err != nil {
		return 0, err
	}
	return u.index(row, column), nil
}

//LiveNeighborCount counts the live cells among the 8 wrapped neighbours of (row, column)
func (u *Universe) LiveNeighborCount(row, column uint32) (uint8, error) {
	if err := u.check(row, column); err != nil {
		return 0, err
	}
	return u.liveNeighbors(row, column), nil
}

//LiveCells counts the live cells of the current generation
func (u *Universe) LiveCells() int {
	n := 0
	for _, c := range u.cells {
		n += int(c)
	}
	return n
}

//Tick advances the universe by one generation
func (u *Universe) Tick() TickStats {
	switch u.engine {
	case EngineDouble:
		return u.tickDouble()
	case EngineParallel:
		return u.tickParallel()
	default:
		return u.tickBase()
	}
}

//SetCells makes all given cells alive
//nothing is changed if any coordinate is outside the universe
func (u *Universe) SetCells(coords []Coord) error {
	for _, c := range coords {
		if err := u.check(c.Row, c.Col); err != nil {
			return err
		}
	}
	for _, c := range coords {
		u.cells[u.index(c.Row, c.Col)] = Alive
	}
	return nil
}

//ToggleCell inverts the cell state at (row, column)
func (u *Universe) ToggleCell(row, column uint32) error {
	if err := u.check(row, column); err != nil {
		return err
	}
	u.cells[u.index(row, column)].Toggle()
	return nil
}

//AddGlider stamps a glider centered at (row, column)
func (u *Universe) AddGlider(row, column int32) error {
	return u.Stamp(glider, row, column)
}

//AddPulsar stamps a pulsar centered at (row, column)
func (u *Universe) AddPulsar(row, column int32) error {
	return u.Stamp(pulsar, row, column)
}

//Stamp makes the pattern cells alive relative to (row, column)
//coordinates wrap around the edges, so any origin is accepted
func (u *Universe) Stamp(p Pattern, row, column int32) error {
	if u.width == 0 || u.height == 0 {
		return ErrEmptyUniverse
	}
	h, w := int64(u.height), int64(u.width)
	for _, o := range p.Cells {
		r := euclidMod(int64(row)+int64(o.Row), h)
		c := euclidMod(int64(column)+int64(o.Col), w)
		u.cells[u.index(uint32(r), uint32(c))] = Alive
	}
	return nil
}

//Render returns the text form of the universe, one line per row
func (u *Universe) Render() string {
	return u.String()
}

func (u *Universe) String() string {
	var b strings.Builder
	b.Grow(len(u.cells)*3 + int(u.height))
	for row := uint32(0); row < u.height; row++ {
		line := u.cells[u.index(row, 0) : u.index(row, 0)+int(u.width)]
		for _, c := range line {
			if c == Dead {
				b.WriteRune(DeadGlyph)
			} else {
				b.WriteRune(AliveGlyph)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (u *Universe) size() int {
	return int(u.width) * int(u.height)
}

func (u *Universe) index(row, column uint32) int {
	return int(row)*int(u.width) + int(column)
}

func (u *Universe) check(row, column uint32) error {
	if row >= u.height || column >= u.width {
		return fmt.Errorf("%w: (%d, %d) in %dx%d universe", ErrOutOfRange, row, column, u.width, u.height)
	}
	return nil
}

func (u *Universe) randomize() {
	for i := range u.cells {
		if u.rnd.Float64() > deathThreshold {
			u.cells[i] = Dead
		} else {
			u.cells[i] = Alive
		}
	}
}

//liveNeighbors is the unchecked neighbour count, (row, column) must be inside the universe
func (u *Universe) liveNeighbors(row, column uint32) uint8 {
	var count uint8
	for _, dr := range [3]uint32{u.height - 1, 0, 1} {
		for _, dc := range [3]uint32{u.width - 1, 0, 1} {
			if dr == 0 && dc == 0 {
				continue
			}
			nr := (row + dr) % u.height
			nc := (column + dc) % u.width
			count += uint8(u.cells[u.index(nr, nc)])
		}
	}
	return count
}

//cellNextState applies B3/S23 to a cell with n live neighbours
func cellNextState(c Cell, n uint8) Cell {
	switch {
	case c == Alive && n < 2:
		return Dead
	case c == Alive && (n == 2 || n == 3):
		return Alive
	case c == Alive && n > 3:
		return Dead
	case c == Dead && n == 3:
		return Alive
	}
	return c
}

//nextRows computes rows [from, to) of the next generation into dst
func (u *Universe) nextRows(dst []Cell, from, to uint32) (stats TickStats) {
	for row := from; row < to; row++ {
		for col := uint32(0); col < u.width; col++ {
			idx := u.index(row, col)
			cur := u.cells[idx]
			next := cellNextState(cur, u.liveNeighbors(row, col))
			dst[idx] = next
			if next == Alive {
				stats.LiveCells++
			}
			stats.Changed = stats.Changed || next != cur
		}
	}
	return
}

//tickBase allocates the new buffer on each call and replaces the old one
func (u *Universe) tickBase() TickStats {
	next := make([]Cell, len(u.cells))
	stats := u.nextRows(next, 0, u.height)
	u.cells = next
	return stats
}

func euclidMod(a, m int64) int64 {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
