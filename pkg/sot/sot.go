// Package sot reads the source of truth; the table that enumerates the
// clusters or cluster groups of a fleet.
package sot

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/mitchellh/mapstructure"

	"github.com/example/hydrate/pkg/util/stringset"
)

// Mode selects what a table row stands for.
type Mode string

const (
	// ModeCluster rows stand for a single cluster that belongs to a group.
	ModeCluster Mode = "cluster"
	// ModeGroup rows stand for a whole cluster group.
	ModeGroup Mode = "group"
)

// ModeFromString returns the Mode for s.
func ModeFromString(s string) (Mode, error) {
	switch s {
	case "cluster":
		return ModeCluster, nil
	case "group":
		return ModeGroup, nil
	}
	return "", fmt.Errorf("mode must be one of [cluster,group], got: %s", s)
}

// Subject returns what a row stands for, usable in texts like "2 clusters".
func (m Mode) Subject() string {
	return string(m)
}

// Column names required by mode.
const (
	colClusterName  = "cluster_name"
	colClusterGroup = "cluster_group"
	colClusterTags  = "cluster_tags"
	colGroup        = "group"
	colTags         = "tags"
)

func requiredColumns(m Mode) []string {
	if m == ModeGroup {
		return []string{colGroup, colTags}
	}
	return []string{colClusterName, colClusterGroup, colClusterTags}
}

// Row is one line of the source of truth.
type Row struct {
	// Name identifies the cluster (the group itself in group mode).
	Name string
	// Group selects the overlay and the group scoped constraints.
	Group string
	// Tags is the comma separated tag list of the row.
	Tags string
	// Extra holds the customer defined columns that pass through to templates.
	Extra map[string]string

	mode Mode
}

// Columns returns all columns of the row keyed by their source header name.
func (r Row) Columns() map[string]string {
	m := make(map[string]string, len(r.Extra)+3)
	for k, v := range r.Extra {
		m[k] = v
	}
	switch r.mode {
	case ModeGroup:
		m[colGroup] = r.Name
		m[colTags] = r.Tags
	default:
		m[colClusterName] = r.Name
		m[colClusterGroup] = r.Group
		m[colClusterTags] = r.Tags
	}
	return m
}

// TagSet returns the row tags as a set.
func (r Row) TagSet() stringset.Set {
	return splitTags(r.Tags)
}

func splitTags(s string) stringset.Set {
	r := stringset.New()
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		r.Add(t)
	}
	return r
}

// Table is an ordered collection of rows.
type Table struct {
	Mode   Mode
	Header []string
	Rows   []Row
}

// SchemaError reports header problems that make the table unusable.
// It is fatal; no task is scheduled when the schema is off.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("source of truth schema: %s", strings.Join(e.Problems, ", "))
}

// Load reads the source of truth file at path.
func Load(log logr.Logger, path string, mode Mode) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source of truth: %w", err)
	}
	defer f.Close()

	t, err := Read(log, f, mode)
	if err != nil {
		return nil, fmt.Errorf("source of truth %s: %w", path, err)
	}
	return t, nil
}

// Read reads comma separated rows with a header line.
// Rows without a name are skipped.
// The row order of the input is preserved.
func Read(log logr.Logger, r io.Reader, mode Mode) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	recs, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, &SchemaError{Problems: []string{"no header line"}}
	}

	header := recs[0]
	if err := checkHeader(header, mode); err != nil {
		return nil, err
	}

	answer := &Table{Mode: mode, Header: header}
	for i, rec := range recs[1:] {
		row, err := decodeRow(header, rec, mode)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if row.Name == "" {
			log.Info("skipping row with empty name", "row", i+2)
			continue
		}
		answer.Rows = append(answer.Rows, row)
	}

	return answer, nil
}

// CheckHeader checks that header has the columns mode needs and no duplicates.
func checkHeader(header []string, mode Mode) error {
	var problems []string

	seen := stringset.New()
	for _, h := range header {
		if !seen.Add(h) {
			problems = append(problems, fmt.Sprintf("duplicate %s column", h))
		}
	}

	for _, c := range requiredColumns(mode) {
		if !seen.Contains(c) {
			problems = append(problems, fmt.Sprintf("missing %s column", c))
		}
	}

	if len(problems) > 0 {
		return &SchemaError{Problems: problems}
	}
	return nil
}

// DecodeRow turns one record into a Row.
// Cells beyond the header are dropped, missing cells read as "".
func decodeRow(header, rec []string, mode Mode) (Row, error) {
	m := make(map[string]string, len(header))
	for i, h := range header {
		var v string
		if i < len(rec) {
			v = rec[i]
		}
		m[h] = v
	}

	row := Row{mode: mode}
	if mode == ModeGroup {
		var c struct {
			Name  string            `mapstructure:"group"`
			Tags  string            `mapstructure:"tags"`
			Extra map[string]string `mapstructure:",remain"`
		}
		if err := mapstructure.Decode(m, &c); err != nil {
			return Row{}, err
		}
		// a group is its own group.
		row.Name, row.Group, row.Tags, row.Extra = c.Name, c.Name, c.Tags, c.Extra
		return row, nil
	}

	var c struct {
		Name  string            `mapstructure:"cluster_name"`
		Group string            `mapstructure:"cluster_group"`
		Tags  string            `mapstructure:"cluster_tags"`
		Extra map[string]string `mapstructure:",remain"`
	}
	if err := mapstructure.Decode(m, &c); err != nil {
		return Row{}, err
	}
	row.Name, row.Group, row.Tags, row.Extra = c.Name, c.Group, c.Tags, c.Extra
	return row, nil
}
