// Package config provides YAML configuration loading and validation
// for the hexagonrpc daemon.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/linux-msm/hexagonrpc/internal/constants"
)

// Config is the top-level configuration structure for the daemon.
// Command-line flags override anything set here.
type Config struct {
	// Device is the FastRPC device node to attach to
	// (e.g. "/dev/fastrpc-adsp"). Required unless given with -f.
	Device string `yaml:"device"`

	// DSP is the DSP name. The daemon reports it in its startup log
	// and does not use it to locate shared files. Defaults to "".
	DSP string `yaml:"dsp"`

	// Root is the directory of files served to the DSP. Defaults to
	// /usr/share/qcom/ when omitted.
	Root string `yaml:"root"`

	// AttachSensors selects the sensors protection domain instead of
	// the root one.
	AttachSensors bool `yaml:"attach_sensors"`

	// ShellELF, when set, creates a new protection domain running the
	// given ELF instead of attaching.
	ShellELF string `yaml:"shell_elf"`

	// Clients lists programs to spawn with the session fd exported in
	// the environment.
	Clients []string `yaml:"clients"`

	// LogLevel sets the minimum log severity: "debug", "info",
	// "warn", or "error". Defaults to "info" when omitted.
	LogLevel string `yaml:"log_level"`

	// MaxListenerInput caps the flat inbound stream of one reverse
	// call in bytes. Defaults to 256 when omitted.
	MaxListenerInput int `yaml:"max_listener_input"`
}

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the YAML file at path, unmarshals it, applies defaults,
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: cannot parse %q: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed for %q: %w", path, err)
	}

	return &cfg, nil
}

// applyDefaults fills in zero-value optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Root == "" {
		cfg.Root = constants.DefaultSharedDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MaxListenerInput == 0 {
		cfg.MaxListenerInput = constants.MaxListenerPrimInSize
	}
}

// validate checks enumerated fields and mutually exclusive options.
func validate(cfg *Config) error {
	var errs []error

	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level %q must be one of: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.MaxListenerInput < 0 {
		errs = append(errs, errors.New("max_listener_input must not be negative"))
	}
	if cfg.AttachSensors && cfg.ShellELF != "" {
		errs = append(errs, errors.New("attach_sensors and shell_elf are mutually exclusive"))
	}
	for i, prog := range cfg.Clients {
		if prog == "" {
			errs = append(errs, fmt.Errorf("clients[%d] is empty", i))
		}
	}

	return errors.Join(errs...)
}
