package view

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"gameoflife/src/simulation"
)

//ConsoleOut is the non-interactive viewer, it logs the progress of the simulation
type ConsoleOut struct {
	c         simulation.Controller
	startTime time.Time
	every     int
	log       logrus.FieldLogger
}

//NewConsoleOut creates the viewer logging every n-th iteration
func NewConsoleOut(log logrus.FieldLogger, every int) *ConsoleOut {
	if every <= 0 {
		every = 10
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ConsoleOut{log: log, every: every}
}

func (c *ConsoleOut) Refresh(_ simulation.Frame, st simulation.Status) {
	switch st.RunningMode {
	case simulation.RunningStateFinished:
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		c.log.WithFields(logrus.Fields{
			"lastIteration": st.IterationNum,
			"totalTime":     totalTime,
			"liveCells":     st.LiveCells,
		}).Info("finished")
	case simulation.RunningStateRun:
		if st.IterationNum > 0 && st.IterationNum%c.every == 0 {
			c.log.WithFields(logrus.Fields{
				"iteration": st.IterationNum,
				"liveCells": st.LiveCells,
				"evalTime":  st.IterationTime.Round(time.Microsecond),
			}).Info("iterations done")
		}
	}
}

func (c *ConsoleOut) Register(ctrl simulation.Controller) {
	c.c = ctrl
	o := ctrl.Options()
	st := ctrl.Status()
	c.log.WithFields(logrus.Fields{
		"dimension": dimension(st.Width, st.Height),
		"interval":  o.Interval,
		"maxSteps":  o.MaxSteps,
	}).Info("running configuration")
}

func (c *ConsoleOut) Start() error {
	c.startTime = time.Now()
	c.log.Info("simulation started")
	c.c.Run()
	return nil
}

func dimension(w, h uint32) string {
	return fmt.Sprintf("%v x %v", w, h)
}
