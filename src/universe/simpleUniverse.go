package universe

import (
	"fmt"
	"sort"
)

//Engine selects how the next generation buffer is produced
//every engine yields the same generation, they differ in allocation and parallelism
type Engine string

const (
	EngineBase     Engine = "base"     //fresh buffer per tick
	EngineDouble   Engine = "double"   //two buffers swapped on every tick
	EngineParallel Engine = "parallel" //row bands computed by goroutines
)

var engines = map[Engine]string{
	EngineBase:     "allocates the next generation buffer on each tick",
	EngineDouble:   "reuses a second buffer and swaps it with the current one",
	EngineParallel: "splits the rows between workers, then swaps buffers",
}

//Engines returns the sorted list of engine names
func Engines() []string {
	names := make([]string, 0, len(engines))
	for e := range engines {
		names = append(names, string(e))
	}
	sort.Strings(names)
	return names
}

//ParseEngine resolves the engine by name, empty name means EngineBase
func ParseEngine(name string) (Engine, error) {
	if name == "" {
		return EngineBase, nil
	}
	e := Engine(name)
	if _, ok := engines[e]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownEngine, name)
	}
	return e, nil
}

//Descr returns the short engine description
func (e Engine) Descr() string {
	return engines[e]
}

/*
	Double buffer engine
	All cells state is calculated to the scratch buffer and then the buffers are swapped,
	so no allocation happens after the first tick
*/
func (u *Universe) tickDouble() TickStats {
	u.ensureScratch()
	stats := u.nextRows(u.scratch, 0, u.height)
	u.cells, u.scratch = u.scratch, u.cells
	return stats
}

func (u *Universe) ensureScratch() {
	if len(u.scratch) != len(u.cells) {
		u.scratch = make([]Cell, len(u.cells))
	}
}
