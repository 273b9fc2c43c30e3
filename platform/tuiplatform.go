package platform

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"lautenbacher.net/potileds/config"
	"lautenbacher.net/potileds/hardware"
	"lautenbacher.net/potileds/logging"
	"lautenbacher.net/potileds/renderer"
)

// potiKey binds a pair of keys to turning one virtual poti.
type potiKey struct {
	name string
	pin  int
	down rune
	up   rune
}

// TUIPlatform simulates the potis and the LED strip in the terminal.
type TUIPlatform struct {
	config       *config.Config
	board        *hardware.SimulatedBoard
	history      *potiHistory
	keys         []potiKey
	ossignalChan chan os.Signal
	tviewapp     *tview.Application
	intro        *tview.TextView
	ledDisplay   *tview.TextView
	potiView     *tview.TextView
	logView      *tview.TextView
	logFlushOnce sync.Once
	// true while tviewapp.Run drains the update queue
	running      atomic.Bool
	ledsMutex    sync.Mutex
	leds         []renderer.Led
}

func NewTUIPlatform(conf *config.Config, ossignalchan chan os.Signal) *TUIPlatform {
	p := conf.Potis
	inst := &TUIPlatform{
		config:       conf,
		ossignalChan: ossignalchan,
		board:        hardware.NewSimulatedBoard(conf.Simulation.Noise),
		keys: []potiKey{
			{name: "hue", pin: p.HuePin, down: 'h', up: 'H'},
			{name: "saturation", pin: p.SaturationPin, down: 's', up: 'S'},
			{name: "brightness", pin: p.BrightnessPin, down: 'b', up: 'B'},
		},
	}
	sim := conf.Simulation
	inst.board.AttachPoti(p.HuePin, sim.Hue)
	inst.board.AttachPoti(p.BrightnessPin, sim.Brightness)
	inst.board.AttachPoti(p.SaturationPin, sim.Saturation)

	names := make(map[int]string, len(inst.keys))
	for _, k := range inst.keys {
		names[k.pin] = k.name
	}
	inst.history = newPotiHistory(names)
	inst.board.SetObserver(inst.history.record)
	return inst
}

func (s *TUIPlatform) Board() hardware.Board {
	return s.board
}

func (s *TUIPlatform) Start() error {
	s.initSimulationTUI()
	s.running.Store(true)
	go s.run()
	return nil
}

func (s *TUIPlatform) run() {
	err := s.tviewapp.Run()
	s.running.Store(false)
	if err != nil {
		slog.Error("Error running TUI", "error", err)
		s.ossignalChan <- os.Interrupt
	}
}

func (s *TUIPlatform) Stop() {
	logging.BufferOutput()
	if s.tviewapp != nil {
		s.tviewapp.Stop()
	}
}

func (s *TUIPlatform) DisplayLeds(leds []renderer.Led) {
	s.ledsMutex.Lock()
	s.leds = slices.Clone(leds)
	s.ledsMutex.Unlock()
	if !s.running.Load() {
		return
	}
	s.tviewapp.QueueUpdateDraw(s.redraw)
}

func (s *TUIPlatform) getIntroText() string {
	line1 := fmt.Sprintf("Turn potis: [blue]h[-]/[blue]H[-] hue, [blue]s[-]/[blue]S[-] saturation, [blue]b[-]/[blue]B[-] brightness (step %d)",
		s.config.Simulation.Step)
	line2 := "Hit [#ff0000]q[-] to exit, [#ff0000]r[-] to reload, [#ff0000]Up/Down[-] to scroll logs"
	return line1 + "\n" + line2
}

func (s *TUIPlatform) initSimulationTUI() {
	s.tviewapp = tview.NewApplication()

	s.intro = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	s.intro.SetText(s.getIntroText())
	s.intro.SetBorder(true).SetTitle(" POTILEDS Simulation ").SetTitleColor(tcell.ColorLightBlue)
	s.intro.SetBackgroundColor(tcell.NewRGBColor(20, 20, 20))

	s.ledDisplay = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	s.ledDisplay.SetBorder(true).SetTitle(" LEDs ").SetTitleColor(tcell.ColorLightBlue)
	s.ledDisplay.SetBackgroundColor(tcell.NewRGBColor(30, 30, 30))

	s.potiView = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	s.potiView.SetBorder(true).SetTitle(" Potis ").SetTitleColor(tcell.ColorLightBlue)
	s.potiView.SetBackgroundColor(tcell.ColorDarkSlateGray)

	s.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() {
			s.logView.ScrollToEnd()
			s.tviewapp.Draw()
		})
	s.logView.SetBorder(true).SetTitle(" Logs ").SetTitleColor(tcell.ColorLightBlue)
	s.logView.SetBackgroundColor(tcell.NewRGBColor(40, 40, 40))

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.intro, 4, 0, false).
		AddItem(s.ledDisplay, 4, 0, false).
		AddItem(s.potiView, 2+1+len(s.keys), 0, false).
		AddItem(s.logView, 0, 1, true)

	s.tviewapp.SetAfterDrawFunc(func(screen tcell.Screen) {
		s.logFlushOnce.Do(func() {
			logging.SetOutput(tview.ANSIWriter(s.logView))
		})
	})

	s.tviewapp.SetInputCapture(s.handleKey)
	s.tviewapp.SetRoot(layout, true)
	s.redraw()
}

func (s *TUIPlatform) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyCtrlC:
		s.ossignalChan <- os.Interrupt
		return nil
	case tcell.KeyUp:
		row, col := s.logView.GetScrollOffset()
		s.logView.ScrollTo(row-1, col)
		return nil
	case tcell.KeyDown:
		row, col := s.logView.GetScrollOffset()
		s.logView.ScrollTo(row+1, col)
		return nil
	case tcell.KeyRune:
		r := event.Rune()
		switch r {
		case 'q', 'Q':
			s.ossignalChan <- os.Interrupt
			return nil
		case 'r', 'R':
			s.ossignalChan <- syscall.SIGHUP
			return nil
		}
		if s.turnPoti(r) {
			s.redraw()
			return nil
		}
	}
	return event
}

// turnPoti moves the poti bound to r and reports whether r was bound.
func (s *TUIPlatform) turnPoti(r rune) bool {
	step := s.config.Simulation.Step
	for _, k := range s.keys {
		switch r {
		case k.down:
			value := s.board.TurnPoti(k.pin, -step)
			slog.Debug("Turned poti", "poti", k.name, "value", value)
			return true
		case k.up:
			value := s.board.TurnPoti(k.pin, step)
			slog.Debug("Turned poti", "poti", k.name, "value", value)
			return true
		}
	}
	return false
}

// redraw must run on the TUI go-routine.
func (s *TUIPlatform) redraw() {
	s.ledsMutex.Lock()
	leds := s.leds
	s.ledsMutex.Unlock()

	s.ledDisplay.SetText(simulateLeds(leds))
	s.potiView.SetText(s.history.render(s.potiValue))
}

func (s *TUIPlatform) potiValue(name string) int {
	for _, k := range s.keys {
		if k.name == name {
			return s.board.Poti(k.pin)
		}
	}
	return 0
}

func simulateLeds(leds []renderer.Led) string {
	var buf strings.Builder
	buf.WriteString(" ")
	for _, led := range leds {
		if led.IsEmpty() {
			buf.WriteString("·")
			continue
		}
		buf.WriteString(fmt.Sprintf("[#%02x%02x%02x]█[-]", led.Red, led.Green, led.Blue))
	}
	if len(leds) > 0 {
		state := leds[0]
		buf.WriteString(fmt.Sprintf("\n [yellow]rgb[white] %3d %3d %3d", state.Red, state.Green, state.Blue))
	}
	return buf.String()
}
