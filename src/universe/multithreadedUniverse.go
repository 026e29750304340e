package universe

import (
	"runtime"
	"sync"
)

/*
	Engine with multithreaded computation algorithm
	the field is splitted into row bands each of which is computed by individual goroutine
	into the scratch buffer; the buffers are swapped after all workers are done
*/

const (
	DefMinRowsPerWorker = 3 //minimum rows for one worker
)

//workArea describes the band of rows [y1, y2) for the worker
type workArea struct {
	y1    uint32
	y2    uint32
	stats TickStats
}

//splitRows divides height rows into at most workers bands
func splitRows(height uint32, workers int) []workArea {
	if height == 0 || workers < 1 {
		return nil
	}
	rowsPerWorker := height / uint32(workers)
	if rowsPerWorker < DefMinRowsPerWorker {
		rowsPerWorker = DefMinRowsPerWorker
	} else if rowsPerWorker*uint32(workers) < height {
		rowsPerWorker++
	}
	areas := make([]workArea, 0, workers)
	for y1 := uint32(0); y1 < height; y1 += rowsPerWorker {
		y2 := y1 + rowsPerWorker
		if y2 > height {
			y2 = height
		}
		areas = append(areas, workArea{y1: y1, y2: y2})
	}
	return areas
}

//tickParallel starts the workers, waits for all of them and merges their stats
func (u *Universe) tickParallel() (stats TickStats) {
	u.ensureScratch()
	areas := splitRows(u.height, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for i := range areas {
		wa := &areas[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			wa.stats = u.nextRows(u.scratch, wa.y1, wa.y2)
		}()
	}
	wg.Wait()
	for _, wa := range areas {
		stats.LiveCells += wa.stats.LiveCells
		stats.Changed = stats.Changed || wa.stats.Changed
	}
	u.cells, u.scratch = u.scratch, u.cells
	return
}
