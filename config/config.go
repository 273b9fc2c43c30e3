package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const CONFILE = "config.yml"

type Config struct {
	RealHW     bool             `yaml:"-"`
	Configfile string           `yaml:"-"`
	Potis      PotisConfig      `yaml:"Potis"`
	Hardware   HardwareConfig   `yaml:"Hardware"`
	Simulation SimulationConfig `yaml:"Simulation"`
	Web        WebConfig        `yaml:"Web"`
	Logging    LoggingConfig    `yaml:"Logging"`
}

// PotisConfig holds calibration and wiring of the three potis. The
// calibration defaults assume a 10 bit ADC.
type PotisConfig struct {
	Enabled        bool          `yaml:"Enabled" json:"Enabled"`
	DeadZoneRadius int           `yaml:"DeadZoneRadius" json:"DeadZoneRadius"`
	MinAnalog      int           `yaml:"MinAnalog" json:"MinAnalog"`
	MaxAnalog      int           `yaml:"MaxAnalog" json:"MaxAnalog"`
	PollInterval   time.Duration `yaml:"PollInterval" json:"PollInterval"`
	HuePin         int           `yaml:"HuePin" json:"HuePin"`
	BrightnessPin  int           `yaml:"BrightnessPin" json:"BrightnessPin"`
	SaturationPin  int           `yaml:"SaturationPin" json:"SaturationPin"`
	AnalogChannel  int           `yaml:"AnalogChannel" json:"AnalogChannel"`
}

type HardwareConfig struct {
	LEDType       string        `yaml:"LEDType"`
	SPIFrequency  int           `yaml:"SPIFrequency"`
	ADCChipSelect uint8         `yaml:"ADCChipSelect"`
	LEDChipSelect uint8         `yaml:"LEDChipSelect"`
	LoopDelay     time.Duration `yaml:"LoopDelay"`
	Display       DisplayConfig `yaml:"Display"`
}

type DisplayConfig struct {
	LedsTotal         int       `yaml:"LedsTotal"`
	ColorCorrection   []float64 `yaml:"ColorCorrection"`
	APA102_Brightness byte      `yaml:"APA102_Brightness"`
}

// SimulationConfig controls the virtual potis of the TUI platform.
type SimulationConfig struct {
	Step       int `yaml:"Step"`
	Noise      int `yaml:"Noise"`
	Hue        int `yaml:"Hue"`
	Brightness int `yaml:"Brightness"`
	Saturation int `yaml:"Saturation"`
}

type WebConfig struct {
	Enabled bool   `yaml:"Enabled"`
	Listen  string `yaml:"Listen"`
}

type LoggingConfig struct {
	TUI LogConfig `yaml:"TUI"`
	HW  LogConfig `yaml:"HW"`
}

type LogConfig struct {
	Level  string `yaml:"Level"`
	Format string `yaml:"Format"`
	File   string `yaml:"File"`
}

// Default returns the configuration used for every value the config
// file leaves out.
func Default() *Config {
	return &Config{
		Potis: PotisConfig{
			Enabled:        true,
			DeadZoneRadius: 4,
			MinAnalog:      37,
			MaxAnalog:      932,
			PollInterval:   25 * time.Millisecond,
			HuePin:         16,
			BrightnessPin:  14,
			SaturationPin:  12,
			AnalogChannel:  0,
		},
		Hardware: HardwareConfig{
			LEDType:       "APA102",
			SPIFrequency:  1000000,
			ADCChipSelect: 1,
			LEDChipSelect: 0,
			LoopDelay:     time.Millisecond,
			Display: DisplayConfig{
				LedsTotal:         60,
				ColorCorrection:   []float64{1, 1, 1},
				APA102_Brightness: 31,
			},
		},
		Simulation: SimulationConfig{
			Step:       16,
			Noise:      2,
			Hue:        37,
			Brightness: 500,
			Saturation: 932,
		},
		Web: WebConfig{
			Enabled: false,
			Listen:  ":8080",
		},
		Logging: LoggingConfig{
			TUI: LogConfig{Level: "INFO", Format: "text"},
			HW:  LogConfig{Level: "INFO", Format: "text"},
		},
	}
}

// ReadConfig reads and validates the config file. Values missing from
// the file keep their defaults.
func ReadConfig(cfile string, realhw bool) (*Config, error) {
	f, err := os.Open(cfile)
	if err != nil {
		return nil, fmt.Errorf("can't open config file %s: %w", cfile, err)
	}
	defer f.Close()

	conf := Default()
	if err := yaml.NewDecoder(f).Decode(conf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("can't decode config file %s: %w", cfile, err)
	}
	conf.RealHW = realhw
	conf.Configfile = cfile

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", cfile, err)
	}
	return conf, nil
}

// Validate checks the complete configuration and reports all problems
// at once.
func (c *Config) Validate() error {
	var errs []error
	errs = append(errs, c.Potis.validate()...)

	switch strings.ToUpper(c.Hardware.LEDType) {
	case "APA102", "WS2801":
	default:
		errs = append(errs, fmt.Errorf("Hardware.LEDType must be APA102 or WS2801, got %q", c.Hardware.LEDType))
	}
	if c.Hardware.LoopDelay <= 0 {
		errs = append(errs, errors.New("Hardware.LoopDelay must be positive"))
	}
	if c.Hardware.SPIFrequency <= 0 {
		errs = append(errs, errors.New("Hardware.SPIFrequency must be positive"))
	}
	if c.Hardware.ADCChipSelect == c.Hardware.LEDChipSelect {
		errs = append(errs, errors.New("Hardware.ADCChipSelect and Hardware.LEDChipSelect must differ"))
	}
	display := c.Hardware.Display
	if display.LedsTotal <= 0 {
		errs = append(errs, errors.New("Hardware.Display.LedsTotal must be positive"))
	}
	if len(display.ColorCorrection) != 3 {
		errs = append(errs, fmt.Errorf("Hardware.Display.ColorCorrection must have 3 entries, got %d", len(display.ColorCorrection)))
	}
	if display.APA102_Brightness > 31 {
		errs = append(errs, fmt.Errorf("Hardware.Display.APA102_Brightness must be between 0 and 31, got %d", display.APA102_Brightness))
	}
	if c.Simulation.Step <= 0 {
		errs = append(errs, errors.New("Simulation.Step must be positive"))
	}
	if c.Simulation.Noise < 0 {
		errs = append(errs, errors.New("Simulation.Noise must not be negative"))
	}
	if c.Web.Enabled && c.Web.Listen == "" {
		errs = append(errs, errors.New("Web.Listen must be set when the web server is enabled"))
	}
	return errors.Join(errs...)
}

func (p PotisConfig) validate() []error {
	var errs []error
	if p.DeadZoneRadius <= 0 {
		errs = append(errs, fmt.Errorf("Potis.DeadZoneRadius must be positive, got %d", p.DeadZoneRadius))
	}
	if p.MaxAnalog <= p.MinAnalog {
		errs = append(errs, fmt.Errorf("Potis.MaxAnalog (%d) must be greater than Potis.MinAnalog (%d)", p.MaxAnalog, p.MinAnalog))
	}
	if p.PollInterval <= 0 {
		errs = append(errs, errors.New("Potis.PollInterval must be positive"))
	}
	if p.HuePin == p.BrightnessPin || p.HuePin == p.SaturationPin || p.BrightnessPin == p.SaturationPin {
		errs = append(errs, fmt.Errorf("Potis select pins must be distinct, got %d, %d, %d", p.HuePin, p.BrightnessPin, p.SaturationPin))
	}
	if p.AnalogChannel < 0 || p.AnalogChannel > 7 {
		errs = append(errs, fmt.Errorf("Potis.AnalogChannel must be between 0 and 7, got %d", p.AnalogChannel))
	}
	return errs
}
