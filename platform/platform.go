package platform

import (
	"lautenbacher.net/potileds/hardware"
	"lautenbacher.net/potileds/renderer"
)

// Platform abstracts away the real hardware from the TUI simulation.
type Platform interface {
	// Start initializes the platform (e.g., opens GPIO/SPI, or starts the TUI).
	Start() error

	// Stop cleans up all platform resources.
	Stop()

	// Board returns the pins and the analog input the usermods work with.
	// Only valid after Start.
	Board() hardware.Board

	// DisplayLeds sends the complete state of all LEDs to the output device.
	DisplayLeds(leds []renderer.Led)
}
