package view

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"
	"github.com/sirupsen/logrus"

	"gameoflife/src/simulation"
)

type keyBindings struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

//ConsoleUI is the interactive terminal viewer
type ConsoleUI struct {
	c simulation.Controller
	g *gocui.Gui
	k []keyBindings

	mu     sync.Mutex
	frame  simulation.Frame
	status simulation.Status

	patterns   []string
	liveFiller string
	deadFiller string
	log        logrus.FieldLogger
}

var (
	runningStateDescr = map[simulation.RunningState]string{
		simulation.RunningStateManual:   aurora.Colorize("waiting", aurora.BlueFg).String(),
		simulation.RunningStateStep:     "do the step",
		simulation.RunningStateRun:      aurora.Colorize("running", aurora.CyanFg).String(),
		simulation.RunningStateFinished: aurora.Colorize("finished", aurora.RedFg).String(),
	}
)

//NewConsoleUI creates the terminal UI, it takes over the terminal until Start returns
func NewConsoleUI(log logrus.FieldLogger) (*ConsoleUI, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	t := ConsoleUI{
		liveFiller: aurora.Green("█").BgBrightGreen().String(),
		deadFiller: "░",
		log:        log,
	}

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, fmt.Errorf("terminal ui: %w", err)
	}
	t.g = g
	t.g.Mouse = true
	t.k = []keyBindings{
		{gocui.KeyCtrlC, "^C", "Exit", t.cmdQuit, ""},
		{'n', "N", "Next step", t.cmdNextRound, ""},
		{'r', "R", "Run", t.cmdRun, ""},
		{'s', "S", "Stop", t.cmdStop, ""},
		{'c', "C", "Clear", t.cmdClear, ""},
		{'w', "W", "Settle with random", t.cmdSettleWithRandom, ""},
		{'g', "G", "Glider", t.cmdPattern("glider"), "battlefield"},
		{'p', "P", "Pulsar", t.cmdPattern("pulsar"), "battlefield"},
		{gocui.MouseLeft, "MOUSE", "Toggle the cell", t.cmdMouseClick, "battlefield"},
	}
	t.g.SetManagerFunc(t.layout)

	if err := t.initKeyBindings(t.k); err != nil {
		t.g.Close()
		return nil, err
	}
	return &t, nil
}

func (t *ConsoleUI) initKeyBindings(k []keyBindings) error {
	for _, kb := range k {
		h := kb.handler
		if err := t.g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(gui *gocui.Gui, view *gocui.View) error { return h(view) }); err != nil {
			return fmt.Errorf("key binding %s: %w", kb.name, err)
		}
	}
	return nil
}

func (t *ConsoleUI) Register(c simulation.Controller) {
	t.c = c
}

//Start runs the terminal main loop until the user quits
func (t *ConsoleUI) Start() error {
	defer t.g.Close()
	if names, err := t.c.Patterns(); err == nil {
		t.patterns = names
	}
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

func (t *ConsoleUI) Refresh(f simulation.Frame, s simulation.Status) {
	t.mu.Lock()
	t.frame = f
	t.status = s
	t.mu.Unlock()
	//it needs to call Update when calls from goroutine
	t.g.Update(func(g *gocui.Gui) error {
		t.renderField()
		t.renderConfiguration()
		t.renderStatus()
		return nil
	})
}

func (t *ConsoleUI) current() (simulation.Frame, simulation.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frame, t.status
}

func (t *ConsoleUI) renderField() {
	v, e := t.g.View("battlefield")
	if e != nil {
		return
	}
	f, _ := t.current()
	//the entire field is redrawing at once now
	v.Clear()
	maxW, maxH := v.Size()
	_, _ = fmt.Fprint(v, fieldText(f, maxW, maxH, t.liveFiller, t.deadFiller,
		aurora.Red("The field size is larger than the viewing area").BgBlack().String()))
}

//fieldText renders the frame cropped to maxW x maxH characters
func fieldText(f simulation.Frame, maxW, maxH int, live, dead, cropped string) string {
	crop := int(f.Width) > maxW || int(f.Height) > maxH
	var b bytes.Buffer
	for row := 0; row < int(f.Height); row++ {
		//discard the data outside the view area
		if row >= maxH {
			break
		}
		//line feed char
		if row != 0 {
			b.WriteByte('\n')
		}
		if crop && row == maxH-1 {
			b.WriteString(cropped)
			break
		}
		for col := 0; col < int(f.Width) && col < maxW; col++ {
			if f.Alive(uint32(row), uint32(col)) {
				b.WriteString(live)
			} else {
				b.WriteString(dead)
			}
		}
	}
	return b.String()
}

func (t *ConsoleUI) renderStatus() {
	_, s := t.current()
	if v, e := t.g.View("status"); e == nil {
		v.Clear()
		_, _ = fmt.Fprintln(v, t.renderProp("Step", "%v", s.IterationNum))
		_, _ = fmt.Fprintln(v, t.renderProp("Live Cells", "%v", s.LiveCells))
		_, _ = fmt.Fprintln(v, t.renderProp("Evaluation time", "%v", s.IterationTime.Round(time.Microsecond)))
		_, _ = fmt.Fprintln(v, t.renderProp("Mode", "%v", runningStateDescr[s.RunningMode]))
	}
}

func (t *ConsoleUI) renderConfiguration() {
	o := t.c.Options()
	_, s := t.current()
	if v, e := t.g.View("configuration"); e == nil {
		v.Clear()
		_, _ = fmt.Fprintln(v, t.renderProp("Dimension", "%v", dimension(s.Width, s.Height)))
		_, _ = fmt.Fprintln(v, t.renderProp("Interval", "%v", o.Interval))
		_, _ = fmt.Fprintln(v, t.renderProp("Iterations", "%v steps", o.MaxSteps))
		_, _ = fmt.Fprintln(v, t.renderProp("Patterns", "%v", strings.Join(t.patterns, ", ")))
	}
}

func (t *ConsoleUI) renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	leftColumnWidth := 28
	minWindowHeight := 20

	if maxY < minWindowHeight {
		if _, err := t.headerLayout(g, maxY, "Terminal height too small"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
		_ = g.DeleteView("configuration")
		_ = g.DeleteView("status")
		_ = g.DeleteView("battlefield")
		return nil
	}
	if _, err := t.headerLayout(g, 3, "This is \"The Life\" game simulation"); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
	}

	if v, err := g.SetView("configuration", 0, 3, leftColumnWidth, 3+(maxY-5-3)/2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Configuration"
		v.Frame = true
		t.renderConfiguration()
	}

	if v, err := g.SetView("status", 0, 3+(maxY-5-3)/2+1, leftColumnWidth, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Status"
		v.Frame = true
		t.renderStatus()
	}

	if v, err := g.SetView("battlefield", leftColumnWidth+1, 3, maxX-1, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Battle Field"
		v.Frame = true
		if _, err := g.SetCurrentView("battlefield"); err != nil {
			return err
		}
	}
	t.renderField()

	if v, err := g.SetView("help", -1, maxY-5, maxX, maxY-3); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		b := bytes.Buffer{}
		b.WriteString("KEYBINDINGS: ")
		for i, k := range t.k {
			if i != 0 {
				b.WriteString(", ")
			}
			b.WriteString(aurora.Green(k.name).String())
			b.WriteString(": ")
			b.WriteString(k.descr)
		}
		_, _ = fmt.Fprintln(v, b.String())
	}

	return nil
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView("header", -1, -1, maxX+1, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		pad := 0
		if maxX > len(text) {
			pad = (maxX - len(text)) / 2
		}
		_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2+1)+strings.Repeat(" ", pad)+text)
	}
	return
}

//report logs the controller error, the ui keeps running
func (t *ConsoleUI) report(action string, err error) error {
	if err != nil {
		t.log.WithError(err).WithField("action", action).Warn("command failed")
	}
	return nil
}

func (t *ConsoleUI) cmdQuit(_ *gocui.View) error {
	return gocui.ErrQuit
}

func (t *ConsoleUI) cmdNextRound(_ *gocui.View) error {
	t.c.Step()
	return nil
}

func (t *ConsoleUI) cmdRun(_ *gocui.View) error {
	t.c.Run()
	return nil
}

func (t *ConsoleUI) cmdStop(_ *gocui.View) error {
	t.c.Stop()
	return nil
}

func (t *ConsoleUI) cmdClear(_ *gocui.View) error {
	return t.report("clear", t.c.Clear())
}

func (t *ConsoleUI) cmdSettleWithRandom(_ *gocui.View) error {
	return t.report("random", t.c.Randomize())
}

func (t *ConsoleUI) cmdPattern(name string) func(v *gocui.View) error {
	return func(v *gocui.View) error {
		cx, cy := v.Cursor()
		return t.report(name, t.c.AddPattern(name, int32(cy), int32(cx)))
	}
}

func (t *ConsoleUI) cmdMouseClick(v *gocui.View) error {
	cx, cy := v.Cursor()
	return t.report("toggle", t.c.ToggleCell(uint32(cy), uint32(cx)))
}
