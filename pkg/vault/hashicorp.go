package vault

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/hashicorp/vault/api"

	"github.com/example/hydrate/pkg/util/backoff"
)

// Hashicorp reads secrets from a HashiCorp Vault KV store.
type hashicorp struct {
	client *api.Client
	log    logr.Logger
}

var _ Getter = &hashicorp{}

// NewHashicorp returns a Vault backend from config values;
//
//	url - Vault address
//	token - access token
//	ca - CA certificate path (optional)
//	tlsSkipVerify - "true" disables certificate checks
func newHashicorp(log logr.Logger, values map[string]string) (*hashicorp, error) {
	if values["url"] == "" {
		return nil, fmt.Errorf("no url")
	}

	c := api.DefaultConfig()
	c.Address = values["url"]
	err := c.ConfigureTLS(&api.TLSConfig{
		CACert:   values["ca"],
		Insecure: values["tlsSkipVerify"] == "true",
	})
	if err != nil {
		return nil, err
	}

	clnt, err := api.NewClient(c)
	if err != nil {
		return nil, err
	}
	clnt.SetToken(values["token"])

	return &hashicorp{client: clnt, log: log}, nil
}

// Get value addressed by key from vault.
// Key is the secret path, field selects a data field.
// If field is empty the whole secret is returned as JSON.
func (h *hashicorp) Get(key, field string) string {
	sec, err := h.read(key)
	if err != nil {
		return err.Error()
	}
	if sec == nil {
		return fmt.Sprintf("<not found: %s>", key)
	}

	data := sec.Data
	// kv version 2 stores the fields one level deeper.
	if d, ok := data["data"].(map[string]interface{}); ok {
		data = d
	}

	if field == "" || field == "." {
		b, err := json.Marshal(data)
		if err != nil {
			return err.Error()
		}
		return string(b)
	}

	v, ok := data[field]
	if !ok {
		return fmt.Sprintf("<not found: %s>", field)
	}
	return fmt.Sprintf("%v", v)
}

// Read reads a secret with retries; transient errors are common right after
// unseal.
func (h *hashicorp) read(key string) (*api.Secret, error) {
	var err error
	for exp := backoff.NewExponential(10 * time.Second); exp.Retries() < 10; exp.Sleep() {
		sec, e := h.client.Logical().Read(key)
		if e == nil {
			return sec, nil
		}
		err = e
		h.log.V(4).Info("Vault read error, retrying", "error", err)
	}
	return nil, fmt.Errorf("no secret %s: %w", key, err)
}
