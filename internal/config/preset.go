package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Preset is a saved analysis configuration: a tag filter plus a default query.
type Preset struct {
	Name     string   `yaml:"name"`
	Feeds    []string `yaml:"feeds,omitempty"`
	Query    string   `yaml:"query,omitempty"`
	Schedule string   `yaml:"schedule,omitempty"`
	Created  string   `yaml:"created,omitempty"`
}

func presetsDir(dir string) string {
	if dir == "" {
		dir = DefaultDir()
	}
	return filepath.Join(dir, "presets")
}

// SavePreset writes a preset file, overwriting any previous definition.
func SavePreset(dir string, p Preset) error {
	if p.Name == "" {
		return fmt.Errorf("preset name is required")
	}
	pd := presetsDir(dir)
	if err := os.MkdirAll(pd, 0o755); err != nil {
		return fmt.Errorf("creating presets dir: %w", err)
	}
	p.Created = time.Now().UTC().Format(time.RFC3339)
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(pd, p.Name+".yaml"), data, 0o644)
}

// LoadPreset reads a preset by name, returning nil when it does not exist.
func LoadPreset(dir, name string) (*Preset, error) {
	data, err := os.ReadFile(filepath.Join(presetsDir(dir), name+".yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading preset %s: %w", name, err)
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing preset %s: %w", name, err)
	}
	return &p, nil
}

// ListPresets returns the names of all saved presets, sorted.
func ListPresets(dir string) ([]string, error) {
	entries, err := os.ReadDir(presetsDir(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// DeletePreset removes a preset by name.
func DeletePreset(dir, name string) error {
	if err := os.Remove(filepath.Join(presetsDir(dir), name+".yaml")); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("preset not found: %s", name)
		}
		return err
	}
	return nil
}
