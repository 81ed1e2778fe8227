// Package config loads the optional YAML file of static socket/report
// defaults that CLI flags can override.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Defaults is the set of socket options a config file can pre-set.
// Padding of -1 means "use the IMIX default", matching the CLI flag's
// own sentinel.
type Defaults struct {
	TOS           uint8  `yaml:"tos"`
	TTL           int    `yaml:"ttl"`
	Padding       int    `yaml:"padding"`
	DoNotFragment bool   `yaml:"do_not_fragment"`
	DSCP          string `yaml:"dscp"`
}

// Read parses a YAML config file at path into Defaults.
func Read(path string) (Defaults, error) {
	var d Defaults
	d.Padding = -1

	raw, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return d, nil
}
