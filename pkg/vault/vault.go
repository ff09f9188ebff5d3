// Package vault reads secrets during template expansion.
// The backing store is selected by a config directory so source packages stay
// free of credentials.
package vault

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/example/hydrate/pkg/azure"
)

// Getter allows reading object fields in templates.
type Getter interface {
	// Get returns the value of an object field.
	// An object is identified by key.
	// For composite objects field selects the value, for non-composites field
	// should be empty or "."
	Get(key, field string) string
}

// New creates a Getter according to values in configPath.
// If no configPath is specified an empty vault is returned.
// The config directory contains one file per value;
//
//	type - vault to read from, valid values are: azure-key-vault | hashicorp-vault | file
//	other files depending on type, see the backend constructors.
func New(log logr.Logger, configPath string) (Getter, error) {
	if configPath == "" {
		return fileGet{}, nil
	}

	// read vault config directory.
	files, err := os.ReadDir(configPath)
	if err != nil {
		return nil, fmt.Errorf("vault-path: %w", err)
	}
	m := map[string]string{}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		b, err := os.ReadFile(filepath.Join(configPath, f.Name()))
		if err != nil {
			return nil, fmt.Errorf("vault-path: %w", err)
		}
		m[f.Name()] = string(b)
	}

	t, ok := m["type"]
	if !ok {
		return nil, fmt.Errorf("expected 'type' file")
	}
	switch t {
	case "azure-key-vault":
		g, err := azure.NewKeyVault(m)
		if err != nil {
			return nil, fmt.Errorf("Azure KeyVault config %s: %w", configPath, err)
		}
		return g, nil
	case "hashicorp-vault":
		g, err := newHashicorp(log, m)
		if err != nil {
			return nil, fmt.Errorf("Vault config %s: %w", configPath, err)
		}
		return g, nil
	case "file":
		return fileGet(m), nil
	default:
		return nil, fmt.Errorf("vault config %s must be one of [azure-key-vault,hashicorp-vault,file], got: %s", filepath.Join(configPath, "type"), t)
	}
}
