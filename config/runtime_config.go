package config

// RuntimeConfig defines the subset of the configuration that can be
// safely modified at runtime through the web API. It excludes
// hardware-specific and other sensitive settings.
type RuntimeConfig struct {
	Potis PotisConfig `yaml:"Potis" json:"Potis"`
}
