// Package renderer owns the global color state of the light and pushes
// it to the LED display. Changes are made through ColorUpdated, which
// never blocks; the display is refreshed from a separate go-routine
// with the latest state.
package renderer

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/kelindar/event"

	"lautenbacher.net/potileds/metrics"
)

var channelNames = [3]string{"red", "green", "blue"}

type Renderer struct {
	ledsTotal int
	display   Display
	bus       *event.Dispatcher
	mu        sync.RWMutex
	state     State
	// buffered with capacity 1, a pending refresh absorbs later ones
	refresh  chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func New(ledsTotal int, display Display) *Renderer {
	return &Renderer{
		ledsTotal: ledsTotal,
		display:   display,
		bus:       event.NewDispatcher(),
		refresh:   make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
}

// Start runs the display go-routine and shows the current state once.
func (s *Renderer) Start() {
	s.wg.Add(1)
	go s.displayDriver()
	s.scheduleRefresh()
}

// Stop ends the display go-routine. It is safe to call more than once.
func (s *Renderer) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	s.wg.Wait()
}

// ColorUpdated replaces the color state. Unless mode says otherwise the
// change is published to subscribers.
func (s *Renderer) ColorUpdated(col [3]int, bri int, mode CallMode) {
	state := State{Color: col, Brightness: bri}
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	for i, c := range col {
		metrics.RendererChannel.WithLabelValues(channelNames[i]).Set(float64(c))
	}
	metrics.RendererBrightness.Set(float64(bri))
	slog.Debug("Color updated", "col", col, "bri", bri, "mode", mode)

	s.scheduleRefresh()

	if mode.notifies() {
		metrics.RendererNotifications.Inc()
		event.Publish(s.bus, StateChanged{State: state, Mode: mode})
	}
}

// State returns the current color state.
func (s *Renderer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Frame renders the current state onto all LEDs.
func (s *Renderer) Frame() []Led {
	led := s.State().Render()
	return slices.Repeat([]Led{led}, s.ledsTotal)
}

// Subscribe registers fn for published state changes and returns a
// function that removes the subscription. fn runs on a go-routine of
// the event bus.
func (s *Renderer) Subscribe(fn func(StateChanged)) func() {
	return event.Subscribe(s.bus, fn)
}

func (s *Renderer) scheduleRefresh() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

func (s *Renderer) displayDriver() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stop:
			slog.Info("Ending DisplayDriver go-routine...")
			return
		case <-s.refresh:
			s.display.DisplayLeds(s.Frame())
		}
	}
}

