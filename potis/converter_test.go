package potis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConverter() *Converter {
	return NewConverter(Calibration{DeadZoneRadius: 4, MinAnalog: 37, MaxAnalog: 932})
}

func TestConverter_InitialSampleIsZero(t *testing.T) {
	conv := newTestConverter()
	assert.Equal(t, Sample{}, conv.LastSample())
}

func TestConverter_DeadZoneSuppressesQuietSamples(t *testing.T) {
	conv := newTestConverter()
	_, ok := conv.Poll(Sample{Hue: 400, Brightness: 500, Saturation: 600})
	require.True(t, ok)

	quiet := []Sample{
		{Hue: 400, Brightness: 500, Saturation: 600},
		{Hue: 403, Brightness: 497, Saturation: 603},
		{Hue: 397, Brightness: 503, Saturation: 597},
	}
	for _, s := range quiet {
		_, ok := conv.Poll(s)
		assert.False(t, ok, "sample %+v", s)
		assert.Equal(t, Sample{Hue: 400, Brightness: 500, Saturation: 600}, conv.LastSample())
	}
}

func TestConverter_OneMovingPotiUpdatesAll(t *testing.T) {
	tests := []struct {
		name   string
		sample Sample
	}{
		{"hue", Sample{Hue: 404, Brightness: 501, Saturation: 599}},
		{"brightness", Sample{Hue: 401, Brightness: 496, Saturation: 599}},
		{"saturation", Sample{Hue: 401, Brightness: 501, Saturation: 610}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := newTestConverter()
			_, ok := conv.Poll(Sample{Hue: 400, Brightness: 500, Saturation: 600})
			require.True(t, ok)

			_, ok = conv.Poll(tt.sample)
			assert.True(t, ok)
			assert.Equal(t, tt.sample, conv.LastSample(), "all three readings are taken over")
		})
	}
}

func TestConverter_MinimumCalibration(t *testing.T) {
	conv := newTestConverter()
	update, ok := conv.Poll(Sample{Hue: 37, Brightness: 37, Saturation: 37})
	require.True(t, ok)
	assert.Equal(t, [3]int{255, 255, 255}, update.Color)
	assert.Equal(t, 0, update.Brightness)
}

func TestConverter_FullBrightnessIsNotClamped(t *testing.T) {
	conv := newTestConverter()
	update, ok := conv.Poll(Sample{Hue: 502, Brightness: 932, Saturation: 932})
	require.True(t, ok)
	assert.Equal(t, 256, update.Brightness)
	assert.Equal(t, [3]int{0, 225, 255}, update.Color)
}

func TestConverter_BrightnessSnapsOff(t *testing.T) {
	tests := []struct {
		raw  int
		want int
	}{
		{raw: 0, want: 0},
		{raw: 37, want: 0},
		{raw: 57, want: 0}, // 5.72
		{raw: 58, want: 6}, // 6.01
		{raw: 500, want: 132},
		{raw: 1023, want: 282},
	}
	for _, tt := range tests {
		conv := newTestConverter()
		update, ok := conv.Poll(Sample{Hue: 500, Brightness: tt.raw, Saturation: 500})
		require.True(t, ok)
		assert.Equal(t, tt.want, update.Brightness, "raw %d", tt.raw)
	}
}

func TestConverter_OutOfRangeReadingsPropagate(t *testing.T) {
	conv := newTestConverter()
	// Readings below MinAnalog give a negative hue and saturation, which
	// push the channels above 255.
	update, ok := conv.Poll(Sample{Hue: 10, Brightness: 0, Saturation: 0})
	require.True(t, ok)
	assert.Equal(t, [3]int{255, 265, 263}, update.Color)
	assert.Equal(t, 0, update.Brightness)
}

func TestConverter_FreshConverterIgnoresReadingsNearZero(t *testing.T) {
	quiet := []Sample{
		{Hue: 0, Brightness: 0, Saturation: 0},
		{Hue: 3, Brightness: 3, Saturation: 3},
		{Hue: 0, Brightness: 3, Saturation: 0},
	}
	for _, s := range quiet {
		conv := newTestConverter()
		_, ok := conv.Poll(s)
		assert.False(t, ok, "sample %+v", s)
		assert.Equal(t, Sample{}, conv.LastSample())
	}

	conv := newTestConverter()
	_, ok := conv.Poll(Sample{Hue: 4, Brightness: 0, Saturation: 0})
	assert.True(t, ok, "a move of DeadZoneRadius leaves the dead zone")
	assert.Equal(t, Sample{Hue: 4}, conv.LastSample())
}
