package sot

import (
	"github.com/example/hydrate/pkg/util/stringset"
)

// Selector selects rows of interest.
// An empty field matches every row; set fields must all match.
type Selector struct {
	// Names match on row name.
	Names []string
	// Groups match on row group.
	Groups []string
	// Tags match when a row has at least one of these tags.
	Tags []string
}

// Select returns the rows passing s in table order.
// Rows are never modified by selection.
func (t *Table) Select(s Selector) []Row {
	names := stringset.New(s.Names...)
	groups := stringset.New(s.Groups...)
	tags := stringset.New(s.Tags...)

	var answer []Row
	for _, r := range t.Rows {
		if names.Cardinality() > 0 && !names.Contains(r.Name) {
			continue
		}
		if groups.Cardinality() > 0 && !groups.Contains(r.Group) {
			continue
		}
		if tags.Cardinality() > 0 && tags.Intersect(r.TagSet()).Cardinality() == 0 {
			continue
		}
		answer = append(answer, r)
	}
	return answer
}
