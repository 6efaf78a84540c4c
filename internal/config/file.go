package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile overlays settings from the YAML file at path onto cfg. A missing
// file is not an error when optional is true, so the tool runs without a
// config file by default.
func LoadFile(path string, cfg *Config, optional bool) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) && optional {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	return nil
}
