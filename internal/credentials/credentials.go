// Package credentials loads the clouds.yaml-style credentials file named
// by the cloud_config_file configuration option. Parsing and authenticating
// against the concrete cloud APIs is out of the core's scope (spec §1,
// "Out of scope: ... Configuration loading, logging setup, credentials file
// parsing."); this package only exposes the raw per-cloud sections so that
// handler constructors (an external collaborator) can build sessions.
package credentials

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the decoded shape of a clouds.yaml-style credentials file: a map
// from cloud name to an opaque attribute bag, left untyped because the
// core never interprets auth fields itself.
type File struct {
	Clouds map[string]map[string]any `yaml:"clouds"`
}

// Load reads and decodes path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing credentials file %s: %w", path, err)
	}
	return &f, nil
}

// Cloud returns the attribute bag for the named cloud, or ok=false if absent.
func (f *File) Cloud(name string) (map[string]any, bool) {
	c, ok := f.Clouds[name]
	return c, ok
}
