package tool

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadManifest reads a tool definition written in YAML. Missing method and
// auth type take the form defaults.
func LoadManifest(path string) (*Tool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var t Tool
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	t.ID = ""
	t.CreatedAt, t.UpdatedAt = time.Time{}, time.Time{}

	if t.Name == "" || t.Endpoint == "" {
		return nil, fmt.Errorf("invalid manifest %s: name and endpoint are required", filepath.Base(path))
	}
	if t.Type == "" {
		t.Type = TypeCustom
	}
	if t.Method == "" {
		t.Method = MethodGet
	}
	if t.Auth.Type == "" {
		t.Auth.Type = AuthNone
	}
	if t.Headers == nil {
		t.Headers = map[string]string{}
	}
	if t.Parameters == nil {
		t.Parameters = []Parameter{}
	}
	return &t, nil
}

func SaveManifest(t *Tool, path string) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
