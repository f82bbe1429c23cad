package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadTables reads a classification tables file and returns the parsed
// tables. The file replaces both the status code sets and the service prefix
// rules; partial overrides are not supported, since a half-replaced
// vocabulary is worse than either whole one.
func LoadTables(path string) (*TablesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read tables %s", path)
	}

	// The YAML has a top-level "tables" key.
	var wrapper struct {
		Tables TablesConfig `yaml:"tables"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "config: parse tables")
	}

	t := &wrapper.Tables
	if len(t.Statuses) == 0 {
		return nil, eris.Errorf("config: tables %s has no status sets", path)
	}
	if len(t.Services) == 0 {
		return nil, eris.Errorf("config: tables %s has no service rules", path)
	}

	return t, nil
}
