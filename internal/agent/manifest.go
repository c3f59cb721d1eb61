package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadManifest reads an agent definition written in YAML, the format
// `agents show -o yaml` prints. Server-owned fields in the file are ignored.
func LoadManifest(path string) (*Agent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var a Agent
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	a.ID = ""
	a.CreatedAt, a.UpdatedAt = time.Time{}, time.Time{}

	if err := validateManifest(&a); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", filepath.Base(path), err)
	}
	if a.Tools == nil {
		a.Tools = []string{}
	}
	return &a, nil
}

func validateManifest(a *Agent) error {
	if a.Name == "" {
		return fmt.Errorf("name is required")
	}
	if a.Type == "" {
		return fmt.Errorf("type is required")
	}
	if !slices.Contains(Types, a.Type) {
		return fmt.Errorf("unknown type %q", a.Type)
	}
	return nil
}

// SaveManifest writes a as YAML so it can be edited and applied again.
func SaveManifest(a *Agent, path string) error {
	data, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
