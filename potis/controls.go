package potis

import (
	"fmt"
	"time"

	"lautenbacher.net/potileds/hardware"
	"lautenbacher.net/potileds/metrics"
	"lautenbacher.net/potileds/renderer"
)

// Sink receives accepted color updates. The renderer is the sink on a
// running system.
type Sink interface {
	ColorUpdated(col [3]int, bri int, mode renderer.CallMode)
}

// Pins wires the potis to the board. Each poti is powered through its
// own select line and all of them share the Analog input.
type Pins struct {
	Hue        int
	Brightness int
	Saturation int
	Analog     int
}

// Controls is the usermod that samples the potis on a fixed interval
// and feeds the converter. It must be driven from a single go-routine.
type Controls struct {
	board    hardware.Board
	pins     Pins
	conv     *Converter
	sink     Sink
	interval uint32
	lastTime uint32
}

func NewControls(board hardware.Board, pins Pins, conv *Converter, interval time.Duration, sink Sink) *Controls {
	return &Controls{
		board:    board,
		pins:     pins,
		conv:     conv,
		sink:     sink,
		interval: uint32(interval.Milliseconds()),
	}
}

// Setup configures the analog input and drives all select lines low.
func (s *Controls) Setup() error {
	if err := s.board.PinMode(s.pins.Analog, hardware.Input); err != nil {
		return fmt.Errorf("failed to set analog pin %d to input: %w", s.pins.Analog, err)
	}
	for _, pin := range s.selectPins() {
		if err := s.board.PinMode(pin, hardware.Output); err != nil {
			return fmt.Errorf("failed to set select pin %d to output: %w", pin, err)
		}
	}
	for _, pin := range s.selectPins() {
		s.board.DigitalWrite(pin, false)
	}
	return nil
}

// Loop is called by the host on every loop iteration.
func (s *Controls) Loop(nowMillis uint32) {
	s.Tick(nowMillis, s.sink)
}

// Tick samples the potis if more than the interval has passed since the
// last sampling and hands an accepted update to sink.
func (s *Controls) Tick(nowMillis uint32, sink Sink) {
	if nowMillis-s.lastTime <= s.interval {
		return
	}
	s.lastTime = nowMillis

	update, ok := s.conv.Poll(s.Sample())
	if !ok {
		return
	}
	sink.ColorUpdated(update.Color, update.Brightness, renderer.CallModeNoNotify)
}

// Sample reads hue, brightness and saturation, in that order.
func (s *Controls) Sample() Sample {
	metrics.PotiCycles.Inc()
	sample := Sample{
		Hue:        s.readPoti(s.pins.Hue),
		Brightness: s.readPoti(s.pins.Brightness),
		Saturation: s.readPoti(s.pins.Saturation),
	}
	metrics.PotiRaw.WithLabelValues("hue").Set(float64(sample.Hue))
	metrics.PotiRaw.WithLabelValues("brightness").Set(float64(sample.Brightness))
	metrics.PotiRaw.WithLabelValues("saturation").Set(float64(sample.Saturation))
	return sample
}

func (s *Controls) readPoti(selectPin int) int {
	s.board.DigitalWrite(selectPin, true)
	value := s.board.AnalogRead(s.pins.Analog)
	s.board.DigitalWrite(selectPin, false)
	return value
}

func (s *Controls) selectPins() []int {
	return []int{s.pins.Hue, s.pins.Brightness, s.pins.Saturation}
}

// Converter gives access to the converter state, e.g. for tests.
func (s *Controls) Converter() *Converter {
	return s.conv
}
