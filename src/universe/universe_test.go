package universe

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//seqSource replays the listed samples in a loop
type seqSource struct {
	vals []float64
	i    int
}

func (s *seqSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func aliveSet(u *Universe) map[Coord]bool {
	set := map[Coord]bool{}
	for row := uint32(0); row < u.Height(); row++ {
		for col := uint32(0); col < u.Width(); col++ {
			idx, _ := u.GetIndex(row, col)
			if u.Cells()[idx] == Alive {
				set[Coord{row, col}] = true
			}
		}
	}
	return set
}

func TestCell_Toggle(t *testing.T) {
	c := Dead
	c.Toggle()
	assert.Equal(t, Alive, c)
	c.Toggle()
	assert.Equal(t, Dead, c)
	assert.Equal(t, uint8(0), uint8(Dead))
	assert.Equal(t, uint8(1), uint8(Alive))
}

func TestNew_DefaultSize(t *testing.T) {
	u := New()
	assert.Equal(t, uint32(DefWidth), u.Width())
	assert.Equal(t, uint32(DefHeight), u.Height())
	assert.Len(t, u.Cells(), DefWidth*DefHeight)
	assert.Equal(t, EngineBase, u.Engine())
}

func TestNew_RandomPolarity(t *testing.T) {
	src := &seqSource{vals: []float64{0.9, 0.5, 0.1, 0.51}}
	u := New(WithSize(2, 2), WithRandomSource(src))
	assert.Equal(t, []Cell{Dead, Alive, Alive, Dead}, u.Cells())
}

func TestReset_KeepsSizeAndRandomizes(t *testing.T) {
	src := &seqSource{vals: []float64{0.0}}
	u := NewEmpty(5, 3, WithRandomSource(src))
	assert.Equal(t, 0, u.LiveCells())
	u.Reset()
	assert.Equal(t, uint32(5), u.Width())
	assert.Equal(t, uint32(3), u.Height())
	assert.Equal(t, 15, u.LiveCells())
}

func TestKill(t *testing.T) {
	u := New(WithSize(7, 4), WithRandomSource(&seqSource{vals: []float64{0.2}}))
	require.Equal(t, 28, u.LiveCells())
	u.Kill()
	assert.Len(t, u.Cells(), 28)
	assert.Equal(t, 0, u.LiveCells())
}

func TestResize_ClearsContent(t *testing.T) {
	u := New(WithRandomSource(&seqSource{vals: []float64{0.2}}))
	u.SetWidth(10)
	assert.Equal(t, uint32(10), u.Width())
	assert.Len(t, u.Cells(), 10*DefHeight)
	assert.Equal(t, 0, u.LiveCells())

	require.NoError(t, u.AddGlider(5, 5))
	u.SetHeight(3)
	assert.Len(t, u.Cells(), 30)
	assert.Equal(t, 0, u.LiveCells())

	u.SetWidth(0)
	assert.Empty(t, u.Cells())
	assert.Equal(t, "\n\n\n", u.Render())
}

func TestGetIndex(t *testing.T) {
	u := NewEmpty(5, 3)
	idx, err := u.GetIndex(2, 4)
	require.NoError(t, err)
	assert.Equal(t, 14, idx)

	_, err = u.GetIndex(3, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = u.GetIndex(0, 5)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestLiveNeighborCount_Wraps(t *testing.T) {
	//non square on purpose: rows wrap on height, columns on width
	u := NewEmpty(6, 4)
	require.NoError(t, u.SetCells([]Coord{{0, 0}}))

	for _, c := range []Coord{{3, 5}, {3, 0}, {0, 5}, {1, 1}, {3, 1}, {1, 5}} {
		n, err := u.LiveNeighborCount(c.Row, c.Col)
		require.NoError(t, err)
		assert.Equal(t, uint8(1), n, "neighbour count of %v", c)
	}
	n, err := u.LiveNeighborCount(0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), n)
	n, _ = u.LiveNeighborCount(2, 3)
	assert.Equal(t, uint8(0), n)

	_, err = u.LiveNeighborCount(4, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestLiveNeighborCount_Full(t *testing.T) {
	u := New(WithSize(3, 3), WithRandomSource(&seqSource{vals: []float64{0}}))
	n, err := u.LiveNeighborCount(1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(8), n)
}

func TestCellNextState(t *testing.T) {
	tests := []struct {
		cell Cell
		n    uint8
		want Cell
	}{
		{Alive, 0, Dead},
		{Alive, 1, Dead},
		{Alive, 2, Alive},
		{Alive, 3, Alive},
		{Alive, 4, Dead},
		{Alive, 8, Dead},
		{Dead, 2, Dead},
		{Dead, 3, Alive},
		{Dead, 4, Dead},
		{Dead, 0, Dead},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cellNextState(tt.cell, tt.n), "cell %v with %d neighbours", tt.cell, tt.n)
	}
}

func forEachEngine(t *testing.T, f func(t *testing.T, e Engine)) {
	for _, name := range Engines() {
		e := Engine(name)
		t.Run(name, func(t *testing.T) { f(t, e) })
	}
}

func TestTick_IsolatedCellDies(t *testing.T) {
	forEachEngine(t, func(t *testing.T, e Engine) {
		u := NewEmpty(3, 3, WithEngine(e))
		require.NoError(t, u.ToggleCell(1, 1))
		stats := u.Tick()
		assert.Equal(t, 0, u.LiveCells())
		assert.Equal(t, TickStats{LiveCells: 0, Changed: true}, stats)
	})
}

func TestTick_StableBlock(t *testing.T) {
	forEachEngine(t, func(t *testing.T, e Engine) {
		u := NewEmpty(6, 6, WithEngine(e))
		require.NoError(t, u.Stamp(Block(), 2, 2))
		before := append([]Cell(nil), u.Cells()...)
		stats := u.Tick()
		assert.Equal(t, before, u.Cells())
		assert.Equal(t, TickStats{LiveCells: 4, Changed: false}, stats)
	})
}

func TestTick_Blinker(t *testing.T) {
	forEachEngine(t, func(t *testing.T, e Engine) {
		u := NewEmpty(5, 5, WithEngine(e))
		require.NoError(t, u.Stamp(Blinker(), 2, 2))
		u.Tick()
		assert.Equal(t, map[Coord]bool{{1, 2}: true, {2, 2}: true, {3, 2}: true}, aliveSet(u))
		u.Tick()
		assert.Equal(t, map[Coord]bool{{2, 1}: true, {2, 2}: true, {2, 3}: true}, aliveSet(u))
	})
}

func TestTick_GliderTranslation(t *testing.T) {
	forEachEngine(t, func(t *testing.T, e Engine) {
		//start at the corner so the translation goes across the edges
		const size = 8
		u := NewEmpty(size, size, WithEngine(e))
		require.NoError(t, u.AddGlider(size-1, size-1))
		for i := 0; i < 4; i++ {
			u.Tick()
		}
		want := NewEmpty(size, size)
		require.NoError(t, want.AddGlider(0, 0))
		assert.Equal(t, want.Cells(), u.Cells())
		assert.Equal(t, 5, u.LiveCells())
	})
}

func TestTick_PulsarPeriod(t *testing.T) {
	forEachEngine(t, func(t *testing.T, e Engine) {
		u := NewEmpty(32, 32, WithEngine(e))
		require.NoError(t, u.AddPulsar(16, 16))
		require.Equal(t, 48, u.LiveCells())
		start := append([]Cell(nil), u.Cells()...)
		u.Tick()
		assert.NotEqual(t, start, u.Cells())
		u.Tick()
		u.Tick()
		assert.Equal(t, start, u.Cells())
	})
}

func TestTick_Deterministic(t *testing.T) {
	a := New(WithSize(20, 20), WithRandomSource(rand.New(rand.NewSource(3))))
	b := NewEmpty(20, 20)
	copy(b.Cells(), a.Cells())
	a.Tick()
	b.Tick()
	assert.Equal(t, a.Cells(), b.Cells())
}

func TestTick_EnginesAgree(t *testing.T) {
	universes := map[string]*Universe{}
	for _, name := range Engines() {
		universes[name] = New(
			WithSize(41, 29),
			WithRandomSource(rand.New(rand.NewSource(42))),
			WithEngine(Engine(name)),
		)
	}
	ref := universes[string(EngineBase)]
	for i := 0; i < 30; i++ {
		want := ref.Tick()
		for name, u := range universes {
			if u == ref {
				continue
			}
			got := u.Tick()
			require.Equal(t, want, got, "engine %s at tick %d", name, i)
			require.Equal(t, ref.Cells(), u.Cells(), "engine %s at tick %d", name, i)
		}
	}
}

func TestTick_EmptyUniverse(t *testing.T) {
	forEachEngine(t, func(t *testing.T, e Engine) {
		u := NewEmpty(0, 5, WithEngine(e))
		assert.Equal(t, TickStats{}, u.Tick())
		assert.Empty(t, u.Cells())
	})
}

func TestToggleCell_Twice(t *testing.T) {
	u := New(WithSize(9, 7), WithRandomSource(rand.New(rand.NewSource(1))))
	before := append([]Cell(nil), u.Cells()...)
	require.NoError(t, u.ToggleCell(3, 8))
	assert.NotEqual(t, before, u.Cells())
	require.NoError(t, u.ToggleCell(3, 8))
	assert.Equal(t, before, u.Cells())

	assert.ErrorIs(t, u.ToggleCell(7, 0), ErrOutOfRange)
	assert.Equal(t, before, u.Cells())
}

func TestSetCells(t *testing.T) {
	u := NewEmpty(4, 4)
	require.NoError(t, u.SetCells([]Coord{{0, 0}, {3, 3}, {0, 0}}))
	assert.Equal(t, map[Coord]bool{{0, 0}: true, {3, 3}: true}, aliveSet(u))

	err := u.SetCells([]Coord{{1, 1}, {4, 0}})
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, 2, u.LiveCells(), "nothing changes when a coordinate is invalid")
}

func TestStamp_WrapsNegativeOrigin(t *testing.T) {
	u := NewEmpty(5, 5)
	require.NoError(t, u.AddGlider(-5, 10))
	want := NewEmpty(5, 5)
	require.NoError(t, want.AddGlider(0, 0))
	assert.Equal(t, want.Cells(), u.Cells())
	assert.Equal(t, map[Coord]bool{{4, 0}: true, {0, 1}: true, {1, 4}: true, {1, 0}: true, {1, 1}: true}, aliveSet(u))
}

func TestStamp_EmptyUniverse(t *testing.T) {
	u := NewEmpty(0, 0)
	assert.ErrorIs(t, u.AddGlider(0, 0), ErrEmptyUniverse)
	assert.ErrorIs(t, u.AddPulsar(0, 0), ErrEmptyUniverse)
}

func TestRender(t *testing.T) {
	u := NewEmpty(3, 2)
	require.NoError(t, u.ToggleCell(0, 1))
	require.NoError(t, u.ToggleCell(1, 2))
	assert.Equal(t, "◻◼◻\n◻◻◼\n", u.Render())
	assert.Equal(t, u.Render(), u.String())
}

func TestBytes_SharesBuffer(t *testing.T) {
	u := NewEmpty(4, 2)
	require.NoError(t, u.ToggleCell(1, 2))
	b := u.Bytes()
	require.Len(t, b, 8)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 0}, b)

	u.Cells()[0] = Alive
	assert.Equal(t, byte(1), b[0])

	assert.Nil(t, NewEmpty(0, 3).Bytes())
}

func TestParseEngine(t *testing.T) {
	e, err := ParseEngine("")
	require.NoError(t, err)
	assert.Equal(t, EngineBase, e)

	e, err = ParseEngine("parallel")
	require.NoError(t, err)
	assert.Equal(t, EngineParallel, e)
	assert.NotEmpty(t, e.Descr())

	_, err = ParseEngine("smallBuff")
	assert.ErrorIs(t, err, ErrUnknownEngine)

	assert.Equal(t, []string{"base", "double", "parallel"}, Engines())
}

func TestSplitRows(t *testing.T) {
	bands := func(areas []workArea) (r [][2]uint32) {
		for _, a := range areas {
			r = append(r, [2]uint32{a.y1, a.y2})
		}
		return
	}
	assert.Equal(t, [][2]uint32{{0, 3}, {3, 6}, {6, 9}, {9, 10}}, bands(splitRows(10, 4)))
	assert.Equal(t, [][2]uint32{{0, 25}, {25, 50}, {50, 75}, {75, 100}}, bands(splitRows(100, 4)))
	assert.Equal(t, [][2]uint32{{0, 26}, {26, 52}, {52, 78}, {78, 101}}, bands(splitRows(101, 4)))
	assert.Empty(t, splitRows(0, 4))
	assert.Equal(t, [][2]uint32{{0, 2}}, bands(splitRows(2, 1)))
}
