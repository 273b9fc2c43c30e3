package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseConfig = `
Potis:
  Enabled: true
  DeadZoneRadius: 6
  MinAnalog: 10
  MaxAnalog: 1000
  PollInterval: 40ms
  HuePin: 5
  BrightnessPin: 6
  SaturationPin: 13
  AnalogChannel: 2
Hardware:
  LEDType: "WS2801"
  Display:
    LedsTotal: 20
    ColorCorrection: [1, 0.8, 0.6]
Logging:
  TUI:
    Level: "DEBUG"
    Format: "text"
    File: "/tmp/potileds-tui.log"
  HW:
    Level: "WARN"
    Format: "json"
`

func createConfigFile(t *testing.T, configData string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(configFile, []byte(configData), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return configFile
}

func TestReadConfig(t *testing.T) {
	configFile := createConfigFile(t, baseConfig)

	conf, err := ReadConfig(configFile, true)
	require.NoError(t, err, "ReadConfig should not return an error")

	assert.True(t, conf.RealHW)
	assert.Equal(t, configFile, conf.Configfile)
	assert.Equal(t, PotisConfig{
		Enabled:        true,
		DeadZoneRadius: 6,
		MinAnalog:      10,
		MaxAnalog:      1000,
		PollInterval:   40 * time.Millisecond,
		HuePin:         5,
		BrightnessPin:  6,
		SaturationPin:  13,
		AnalogChannel:  2,
	}, conf.Potis)
	assert.Equal(t, "WS2801", conf.Hardware.LEDType)
	assert.Equal(t, 20, conf.Hardware.Display.LedsTotal)
	assert.Equal(t, []float64{1, 0.8, 0.6}, conf.Hardware.Display.ColorCorrection)

	assert.Equal(t, "DEBUG", conf.Logging.TUI.Level)
	assert.Equal(t, "/tmp/potileds-tui.log", conf.Logging.TUI.File)
	assert.Equal(t, "WARN", conf.Logging.HW.Level)
	assert.Equal(t, "json", conf.Logging.HW.Format)
}

func TestReadConfig_DefaultsForMissingValues(t *testing.T) {
	configFile := createConfigFile(t, "Web:\n  Enabled: true\n")

	conf, err := ReadConfig(configFile, false)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Potis, conf.Potis)
	assert.Equal(t, def.Hardware, conf.Hardware)
	assert.Equal(t, def.Simulation, conf.Simulation)
	assert.True(t, conf.Web.Enabled)
	assert.Equal(t, ":8080", conf.Web.Listen)
}

func TestReadConfig_EmptyFile(t *testing.T) {
	conf, err := ReadConfig(createConfigFile(t, ""), false)
	require.NoError(t, err)
	assert.Equal(t, 4, conf.Potis.DeadZoneRadius)
	assert.Equal(t, 37, conf.Potis.MinAnalog)
	assert.Equal(t, 932, conf.Potis.MaxAnalog)
	assert.Equal(t, 25*time.Millisecond, conf.Potis.PollInterval)
}

func TestReadConfig_MissingFile(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "nope.yml"), false)
	assert.ErrorContains(t, err, "can't open config file")
}

func TestReadConfig_BrokenYAML(t *testing.T) {
	_, err := ReadConfig(createConfigFile(t, "Potis: [this is: not a map"), false)
	assert.ErrorContains(t, err, "can't decode config file")
}

func TestReadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr string
	}{
		{"max not above min", "MaxAnalog: 1000", "MaxAnalog: 10", "must be greater than Potis.MinAnalog"},
		{"zero dead zone", "DeadZoneRadius: 6", "DeadZoneRadius: 0", "Potis.DeadZoneRadius must be positive"},
		{"zero interval", "PollInterval: 40ms", "PollInterval: 0s", "Potis.PollInterval must be positive"},
		{"shared select pin", "SaturationPin: 13", "SaturationPin: 5", "Potis select pins must be distinct"},
		{"analog channel", "AnalogChannel: 2", "AnalogChannel: 8", "Potis.AnalogChannel must be between 0 and 7"},
		{"led type", `LEDType: "WS2801"`, `LEDType: "NEOPIXEL"`, "Hardware.LEDType must be APA102 or WS2801"},
		{"no leds", "LedsTotal: 20", "LedsTotal: 0", "Hardware.Display.LedsTotal must be positive"},
		{"color correction", "ColorCorrection: [1, 0.8, 0.6]", "ColorCorrection: [1, 0.8]", "ColorCorrection must have 3 entries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configData := strings.Replace(baseConfig, tt.from, tt.to, 1)
			require.NotEqual(t, baseConfig, configData, "replacement must change the config")

			_, err := ReadConfig(createConfigFile(t, configData), false)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	conf := Default()
	conf.Potis.DeadZoneRadius = 0
	conf.Hardware.LEDChipSelect = conf.Hardware.ADCChipSelect
	conf.Hardware.Display.APA102_Brightness = 32
	conf.Web = WebConfig{Enabled: true}

	err := conf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Potis.DeadZoneRadius must be positive")
	assert.Contains(t, err.Error(), "Hardware.ADCChipSelect and Hardware.LEDChipSelect must differ")
	assert.Contains(t, err.Error(), "APA102_Brightness must be between 0 and 31")
	assert.Contains(t, err.Error(), "Web.Listen must be set")
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
