//go:build !ebiten

package view

import (
	"errors"

	"github.com/sirupsen/logrus"

	"gameoflife/src/simulation"
)

var ErrNoGUI = errors.New("the window requires building with the 'ebiten' tag")

//Window is a placeholder that satisfies the API expected by the GUI build
type Window struct{}

//NewWindow always fails in the headless build
func NewWindow(int, logrus.FieldLogger) (*Window, error) {
	return nil, ErrNoGUI
}

func (w *Window) Register(simulation.Controller) {}

func (w *Window) Refresh(simulation.Frame, simulation.Status) {}

func (w *Window) Start() error {
	return ErrNoGUI
}
