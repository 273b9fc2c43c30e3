package platform

import (
	"fmt"
	"math"
	"strings"

	"lautenbacher.net/potileds/config"
	"lautenbacher.net/potileds/renderer"
)

// ledDriver encodes a frame for a specific LED chip and hands it to the
// transmit function.
type ledDriver interface {
	write(leds []renderer.Led, transmit func([]byte)) error
}

func newLedDriver(display config.DisplayConfig, ledType string) (ledDriver, error) {
	switch strings.ToUpper(ledType) {
	case "APA102":
		return newApa102Driver(display), nil
	case "WS2801":
		return newWs2801Driver(display), nil
	default:
		return nil, fmt.Errorf("unknown LED type: %s", ledType)
	}
}

func correct(value byte, factor float64) byte {
	return byte(math.Min(float64(value)*factor, 255))
}

type ws2801Driver struct {
	displayConfig config.DisplayConfig
	buffer        []byte
}

func newWs2801Driver(displayConfig config.DisplayConfig) *ws2801Driver {
	return &ws2801Driver{
		displayConfig: displayConfig,
		buffer:        make([]byte, 3*displayConfig.LedsTotal),
	}
}

func (d *ws2801Driver) write(leds []renderer.Led, transmit func([]byte)) error {
	if 3*len(leds) > len(d.buffer) {
		return fmt.Errorf("frame of %d LEDs exceeds the %d configured", len(leds), len(d.buffer)/3)
	}
	display := d.buffer[:3*len(leds)]
	cc := d.displayConfig.ColorCorrection
	for idx, led := range leds {
		display[3*idx] = correct(led.Red, cc[0])
		display[3*idx+1] = correct(led.Green, cc[1])
		display[3*idx+2] = correct(led.Blue, cc[2])
	}
	transmit(display)
	return nil
}

type apa102Driver struct {
	displayConfig config.DisplayConfig
	buffer        []byte
}

func apa102FrameSize(numLeds int) int {
	return 4 + 4*numLeds + numLeds/16 + 1
}

func newApa102Driver(displayConfig config.DisplayConfig) *apa102Driver {
	return &apa102Driver{
		displayConfig: displayConfig,
		buffer:        make([]byte, apa102FrameSize(displayConfig.LedsTotal)),
	}
}

func (d *apa102Driver) write(leds []renderer.Led, transmit func([]byte)) error {
	requiredSize := apa102FrameSize(len(leds))
	if requiredSize > len(d.buffer) {
		return fmt.Errorf("frame of %d LEDs exceeds the %d configured", len(leds), d.displayConfig.LedsTotal)
	}
	display := d.buffer[:requiredSize]

	// Frame start: 4 zero bytes
	copy(display[0:4], []byte{0x00, 0x00, 0x00, 0x00})

	brightness := d.displayConfig.APA102_Brightness | 0xE0
	cc := d.displayConfig.ColorCorrection

	offset := 4
	for _, led := range leds {
		// protocol: brightness byte, blue, green, red
		display[offset] = brightness
		display[offset+1] = correct(led.Blue, cc[2])
		display[offset+2] = correct(led.Green, cc[1])
		display[offset+3] = correct(led.Red, cc[0])
		offset += 4
	}

	// Frame end
	for i := offset; i < requiredSize; i++ {
		display[i] = 0xFF
	}
	transmit(display)
	return nil
}
