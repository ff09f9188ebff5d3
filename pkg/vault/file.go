package vault

import (
	"encoding/json"
	"fmt"
)

// FileGet allows reading secrets from plain files.
type fileGet map[string]string

var _ Getter = fileGet{}

// Get value addressed by key from files.
// If field is empty return the value as-is.
// Otherwise expect the value to be a JSON object and field a field of the
// object.
func (fg fileGet) Get(key, field string) string {
	v, ok := fg[key]
	if !ok {
		return fmt.Sprintf("<not found: %s>", key)
	}

	if field == "" {
		return v
	}

	// assume v is in JSON and field is a key of the object.
	m := map[string]string{}
	err := json.Unmarshal([]byte(v), &m)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}

	v, ok = m[field]
	if !ok {
		return fmt.Sprintf("<not found: %s>", field)
	}
	return v
}
