package hardware

import (
	"math/rand/v2"
	"slices"
	"sync"
)

// AdcMax is the largest value a 10 bit ADC delivers.
const AdcMax = 1023

type EventKind int

const (
	WriteEvent EventKind = iota
	ReadEvent
)

// Event records a single interaction with the simulated board.
type Event struct {
	Kind    EventKind
	Pin     int
	High    bool
	Channel int
	Value   int
}

// SimulatedBoard models potis that each hang on their own select line
// and share one analog input. Reading the analog input returns the
// value of the poti whose select line is currently driven high.
type SimulatedBoard struct {
	mu       sync.Mutex
	modes    map[int]PinMode
	levels   map[int]bool
	potis    map[int]int
	order    []int
	noise    int
	events   []Event
	record   bool
	observer func(selectPin int, value int)
}

// NewSimulatedBoard creates a board without potis. Every analog read is
// disturbed by uniform noise in [-noise, noise].
func NewSimulatedBoard(noise int) *SimulatedBoard {
	return &SimulatedBoard{
		modes:  make(map[int]PinMode),
		levels: make(map[int]bool),
		potis:  make(map[int]int),
		noise:  noise,
	}
}

// AttachPoti adds a poti that is selected with selectPin.
func (b *SimulatedBoard) AttachPoti(selectPin int, value int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.potis[selectPin]; !found {
		b.order = append(b.order, selectPin)
		slices.Sort(b.order)
	}
	b.potis[selectPin] = clampAdc(value)
}

// SetPoti sets the raw value of an attached poti.
func (b *SimulatedBoard) SetPoti(selectPin int, value int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.potis[selectPin]; found {
		b.potis[selectPin] = clampAdc(value)
	}
}

// TurnPoti moves an attached poti by delta and returns its new value.
func (b *SimulatedBoard) TurnPoti(selectPin int, delta int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	value, found := b.potis[selectPin]
	if !found {
		return 0
	}
	value = clampAdc(value + delta)
	b.potis[selectPin] = value
	return value
}

// Poti returns the noise free value of a poti.
func (b *SimulatedBoard) Poti(selectPin int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.potis[selectPin]
}

// SetObserver installs a callback that sees every analog read together
// with the select pin that produced it. It is called without the board
// lock held.
func (b *SimulatedBoard) SetObserver(fn func(selectPin int, value int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observer = fn
}

// Record switches event recording on or off.
func (b *SimulatedBoard) Record(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record = on
	b.events = nil
}

// Events returns a copy of the recorded events.
func (b *SimulatedBoard) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.events)
}

func (b *SimulatedBoard) Mode(pin int) (PinMode, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	mode, found := b.modes[pin]
	return mode, found
}

func (b *SimulatedBoard) Level(pin int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.levels[pin]
}

func (b *SimulatedBoard) PinMode(pin int, mode PinMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modes[pin] = mode
	return nil
}

func (b *SimulatedBoard) DigitalWrite(pin int, high bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.levels[pin] = high
	if b.record {
		b.events = append(b.events, Event{Kind: WriteEvent, Pin: pin, High: high})
	}
}

func (b *SimulatedBoard) AnalogRead(channel int) int {
	b.mu.Lock()
	selected := -1
	value := 0
	for _, pin := range b.order {
		if b.levels[pin] {
			selected = pin
			value = b.potis[pin]
			break
		}
	}
	if selected >= 0 && b.noise > 0 {
		value = clampAdc(value + rand.IntN(2*b.noise+1) - b.noise)
	}
	if b.record {
		b.events = append(b.events, Event{Kind: ReadEvent, Pin: selected, Channel: channel, Value: value})
	}
	observer := b.observer
	b.mu.Unlock()

	if observer != nil && selected >= 0 {
		observer(selected, value)
	}
	return value
}

func clampAdc(value int) int {
	return max(0, min(value, AdcMax))
}
