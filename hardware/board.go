// Package hardware defines the pin level view of a controller board
// that poti reading works against, and a simulated board for running
// without real hardware.
package hardware

// PinMode selects the direction of a GPIO pin.
type PinMode int

const (
	Input PinMode = iota
	Output
)

func (m PinMode) String() string {
	switch m {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return "unknown"
	}
}

// Board is the capability a usermod needs from the host: digital
// outputs to drive select lines and a single analog input.
type Board interface {
	// PinMode configures the direction of a pin.
	PinMode(pin int, mode PinMode) error
	// DigitalWrite drives an output pin high or low.
	DigitalWrite(pin int, high bool)
	// AnalogRead samples the given analog channel. For a 10 bit ADC the
	// result is roughly in [0, 1023].
	AnalogRead(channel int) int
}
