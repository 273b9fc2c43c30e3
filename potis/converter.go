package potis

import (
	"log/slog"

	"lautenbacher.net/potileds/metrics"
)

// Brightness values at or below this level switch the light off.
const brightnessOffLevel = 5

// Calibration describes the usable range of the potis as seen by the
// ADC and how much a reading has to move before it counts.
type Calibration struct {
	DeadZoneRadius int
	MinAnalog      int
	MaxAnalog      int
}

// Sample is one raw reading of the three potis.
type Sample struct {
	Hue        int
	Brightness int
	Saturation int
}

// ColorUpdate is the result of an accepted sample: the channel triple
// and the global brightness level. Brightness is not clamped to 255.
type ColorUpdate struct {
	Color      [3]int
	Brightness int
}

// Converter turns raw poti readings into color updates. It keeps the
// last accepted sample to suppress jitter and is not safe for
// concurrent use.
type Converter struct {
	cal         Calibration
	analogRange float32
	last        Sample
}

func NewConverter(cal Calibration) *Converter {
	return &Converter{
		cal:         cal,
		analogRange: float32(cal.MaxAnalog - cal.MinAnalog),
	}
}

// LastSample returns the most recently accepted raw readings.
func (s *Converter) LastSample() Sample {
	return s.last
}

func (s *Converter) Calibration() Calibration {
	return s.cal
}

// Poll decides whether the sample moved far enough from the last
// accepted one and, if so, computes the new color. The sample is
// dropped only if every poti stayed inside the dead zone.
func (s *Converter) Poll(sample Sample) (ColorUpdate, bool) {
	if s.inDeadZone(sample) {
		metrics.PotiSuppressed.Inc()
		return ColorUpdate{}, false
	}
	s.last = sample
	metrics.PotiUpdates.Inc()

	update := ColorUpdate{
		Color:      HSV(s.normalized(sample.Hue), s.normalized(sample.Saturation)),
		Brightness: s.brightness(sample.Brightness),
	}
	return update, true
}

func (s *Converter) inDeadZone(sample Sample) bool {
	r := s.cal.DeadZoneRadius
	return abs(sample.Hue-s.last.Hue) < r &&
		abs(sample.Brightness-s.last.Brightness) < r &&
		abs(sample.Saturation-s.last.Saturation) < r
}

// normalized maps a raw reading into [0,1] relative to the calibration.
// Readings outside the calibration range map outside [0,1].
func (s *Converter) normalized(raw int) float32 {
	return float32(raw-s.cal.MinAnalog) / s.analogRange
}

func (s *Converter) brightness(raw int) int {
	bri := int(s.normalized(raw) * 256)
	slog.Debug("Brightness from poti", "raw", raw, "level", bri)
	if bri <= brightnessOffLevel {
		bri = 0
	}
	return bri
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
