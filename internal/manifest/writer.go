package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Write writes a manifest to a YAML file
func Write(m *Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Read reads a manifest from a YAML file, validates it and resolves relative
// paths against the file's directory
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if m.Version == "" {
		m.Version = "1.0"
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Resolve(path)

	return &m, nil
}
