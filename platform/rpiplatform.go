package platform

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"

	"lautenbacher.net/potileds/config"
	"lautenbacher.net/potileds/hardware"
	"lautenbacher.net/potileds/renderer"
)

// Highest BCM GPIO number on the pin header.
const maxGPIO = 27

// spiBus exchanges data in place on the device behind chipSelect.
type spiBus interface {
	exchange(chipSelect uint8, data []byte)
}

type gpioPins interface {
	setMode(pin int, mode hardware.PinMode)
	write(pin int, high bool)
}

// rpioHW talks to the real hardware through go-rpio.
type rpioHW struct{}

func (rpioHW) exchange(chipSelect uint8, data []byte) {
	rpio.SpiChipSelect(chipSelect)
	rpio.SpiExchange(data)
}

func (rpioHW) setMode(pin int, mode hardware.PinMode) {
	if mode == hardware.Output {
		rpio.Pin(pin).Output()
	} else {
		rpio.Pin(pin).Input()
	}
}

func (rpioHW) write(pin int, high bool) {
	if high {
		rpio.Pin(pin).High()
	} else {
		rpio.Pin(pin).Low()
	}
}

// RaspberryPiPlatform drives the select lines through GPIOs, reads the
// potis from an MCP3008 and writes the LED strip, both on SPI0.
type RaspberryPiPlatform struct {
	config    *config.Config
	ledDriver ledDriver
	spi       spiBus
	pins      gpioPins
	spiMutex  sync.Mutex
	outputs   map[int]bool
	opened    bool
}

func NewRaspberryPiPlatform(conf *config.Config) *RaspberryPiPlatform {
	return &RaspberryPiPlatform{
		config:  conf,
		spi:     rpioHW{},
		pins:    rpioHW{},
		outputs: make(map[int]bool),
	}
}

func (s *RaspberryPiPlatform) Start() error {
	var err error
	s.ledDriver, err = newLedDriver(s.config.Hardware.Display, s.config.Hardware.LEDType)
	if err != nil {
		return err
	}

	slog.Info("Initialise GPIO and Spi...")
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("failed to open rpio: %w", err)
	}
	if err := rpio.SpiBegin(rpio.Spi0); err != nil {
		rpio.Close()
		return fmt.Errorf("failed to begin spi: %w", err)
	}
	rpio.SpiSpeed(s.config.Hardware.SPIFrequency)
	s.opened = true
	return nil
}

func (s *RaspberryPiPlatform) Stop() {
	if !s.opened {
		return
	}
	s.spiMutex.Lock()
	defer s.spiMutex.Unlock()

	for pin := range s.outputs {
		s.pins.write(pin, false)
	}
	rpio.SpiEnd(rpio.Spi0)
	if err := rpio.Close(); err != nil {
		slog.Error("Error closing rpio", "error", err)
	}
	s.opened = false
}

func (s *RaspberryPiPlatform) Board() hardware.Board {
	return s
}

func (s *RaspberryPiPlatform) DisplayLeds(leds []renderer.Led) {
	if err := s.ledDriver.write(leds, s.transmitLeds); err != nil {
		slog.Error("Error writing to LED driver", "error", err)
	}
}

func (s *RaspberryPiPlatform) transmitLeds(data []byte) {
	s.spiMutex.Lock()
	defer s.spiMutex.Unlock()
	s.spi.exchange(s.config.Hardware.LEDChipSelect, data)
}

func (s *RaspberryPiPlatform) PinMode(pin int, mode hardware.PinMode) error {
	if pin < 0 || pin > maxGPIO {
		return fmt.Errorf("no such GPIO: %d", pin)
	}
	s.pins.setMode(pin, mode)
	if mode == hardware.Output {
		s.outputs[pin] = true
	} else {
		delete(s.outputs, pin)
	}
	return nil
}

func (s *RaspberryPiPlatform) DigitalWrite(pin int, high bool) {
	s.pins.write(pin, high)
}

// AnalogRead reads a single ended channel of the MCP3008.
func (s *RaspberryPiPlatform) AnalogRead(channel int) int {
	return s.readAdc(byte(channel))
}

func (s *RaspberryPiPlatform) readAdc(channel byte) int {
	data := []byte{1, (8 + channel) << 4, 0}
	s.spiMutex.Lock()
	s.spi.exchange(s.config.Hardware.ADCChipSelect, data)
	s.spiMutex.Unlock()
	return ((int(data[1]) & 3) << 8) + int(data[2])
}
