//go:build !tinygo

package calibration

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileStore keeps the table in a YAML file on the host
type FileStore struct {
	Path string
}

var _ Store = FileStore{}

type fileContents struct {
	Neutral []uint16 `yaml:"neutral,flow"`
}

// Load implements Store. Missing entries are returned as 0 so Sanitize replaces them.
func (f FileStore) Load() (Neutrals, error) {
	var n Neutrals

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return n, fmt.Errorf("error reading calibration file: %w", err)
	}

	var contents fileContents
	err = yaml.Unmarshal(data, &contents)
	if err != nil {
		return n, fmt.Errorf("error decoding calibration file: %w", err)
	}

	copy(n[:], contents.Neutral)
	return n, nil
}

// Save implements Store
func (f FileStore) Save(n Neutrals) error {
	data, err := yaml.Marshal(fileContents{Neutral: n[:]})
	if err != nil {
		return fmt.Errorf("error encoding calibration: %w", err)
	}

	err = os.WriteFile(f.Path, data, 0o644)
	if err != nil {
		return fmt.Errorf("error writing calibration file: %w", err)
	}
	return nil
}
