package expand

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	yaml2 "gopkg.in/yaml.v2"

	"github.com/example/hydrate/pkg/util/yamlx"
)

// Dir provides templates access to files in the directory of the template
// being expanded, for example {{ .Files.Get "extra.json" }}.
type Dir string

// Get returns the content of the file at a path relative to the receiver.
func (d Dir) Get(path string) (string, error) {
	b, err := os.ReadFile(filepath.Join(string(d), path))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Exists returns true when a path relative to the receiver exists.
func (d Dir) Exists(path string) bool {
	_, err := os.Stat(filepath.Join(string(d), path))
	return err == nil
}

// ToToml takes an interface, marshals it to toml, and returns a string.
func toToml(v interface{}) (string, error) {
	b := &strings.Builder{}
	err := toml.NewEncoder(b).Encode(v)
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// ToYaml takes an interface, marshals it to yaml, and returns a string
// without trailing newline.
func toYaml(v interface{}) (string, error) {
	b, err := yaml2.Marshal(v)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(b), "\n"), nil
}

// FromYaml converts a yaml document into Values.
func fromYaml(s string) (yamlx.Values, error) {
	return yamlx.Parse([]byte(s))
}

// ToJson takes an interface, marshals it to json, and returns a string.
func toJson(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FromJson converts a json document into Values.
func fromJson(s string) (yamlx.Values, error) {
	r := yamlx.Values{}
	err := json.Unmarshal([]byte(s), &r)
	if err != nil {
		return nil, err
	}
	return r, nil
}
