// Package config loads the single-server connection profile the host reads
// at startup. Grounded on the teacher's senpai.Config/LoadConfigFile
// (config.go), generalized from a multi-network bouncer-aware profile down
// to the single-server core this module implements.
package config

import (
	"errors"
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// SASL holds PLAIN credentials. Password is a pointer so a config file can
// omit it and have the host prompt interactively instead.
type SASL struct {
	User     string
	Password *string
}

// Config is the YAML-decoded connection profile.
type Config struct {
	Addr     string
	NoTLS    bool `yaml:"no-tls"`
	Nick     string
	User     string
	Real     string
	Channels []string
	SASL     *SASL

	Trace bool
}

// Parse decodes and validates a YAML connection profile.
func Parse(buf []byte) (cfg Config, err error) {
	err = yaml.Unmarshal(buf, &cfg)
	if err != nil {
		return cfg, err
	}
	if cfg.Addr == "" {
		return cfg, errors.New("addr is required")
	}
	if cfg.Nick == "" {
		return cfg, errors.New("nick is required")
	}
	if cfg.User == "" {
		cfg.User = cfg.Nick
	}
	if cfg.Real == "" {
		cfg.Real = cfg.Nick
	}
	return cfg, nil
}

// Load reads and parses the connection profile at path, wrapping read and
// parse failures distinctly so a caller can tell "file unreadable" from
// "file invalid" apart, matching the teacher's LoadConfigFile.
func Load(path string) (cfg Config, err error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read the config file: %w", err)
	}

	cfg, err = Parse(buf)
	if err != nil {
		return cfg, fmt.Errorf("invalid content in the config file: %w", err)
	}
	return cfg, nil
}
