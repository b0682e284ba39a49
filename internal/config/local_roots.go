package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// localRootsFile is the YAML shape of the local-browser allowlist:
//
//	roots:
//	  - /home/alice
//	  - /srv/shared
type localRootsFile struct {
	Roots []string `yaml:"roots"`
}

// LoadLocalRoots reads the local-browser root allowlist. An empty path
// means no allowlist (every directory is browsable).
func LoadLocalRoots(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read local roots file: %w", err)
	}

	var parsed localRootsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse local roots file: %w", err)
	}

	return parsed.Roots, nil
}
