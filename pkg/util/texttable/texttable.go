// Package texttable writes space aligned text tables.
package texttable

import (
	"io"
	"strings"
)

type Table struct {
	Header []string
	Rows   [][]string
}

// New returns a Table with header columns.
func New(header ...string) *Table {
	return &Table{Header: header}
}

// Add appends a row.
// Missing cells are padded with "".
func (t *Table) Add(cells ...string) {
	for len(cells) < len(t.Header) {
		cells = append(cells, "")
	}
	t.Rows = append(t.Rows, cells)
}

func (t *Table) ColCnt() int {
	return len(t.Header)
}

func (t *Table) RowCnt() int {
	return len(t.Rows)
}

// Write writes a table formatted as text.
//  colSep is the columns separator string.
//  hdr includes a header.
func Write(table *Table, colSep string, hdr bool, output io.Writer) {
	colWidth := colWidth(table)

	last := table.ColCnt()

	if hdr {
		// output Header
		for i, s := range table.Header {
			io.WriteString(output, s)
			if i < last-1 {
				pad := colWidth[i] - len(s)
				io.WriteString(output, strings.Repeat(" ", pad))
				io.WriteString(output, colSep)
			}
		}
		io.WriteString(output, "\n")
	}

	// output Rows
	for _, row := range table.Rows {
		for i, s := range row {
			io.WriteString(output, s)
			if i < last-1 {
				pad := colWidth[i] - len(s)
				io.WriteString(output, strings.Repeat(" ", pad))
				io.WriteString(output, colSep)
			}
		}
		io.WriteString(output, "\n")
	}
}

func colWidth(table *Table) []int {
	var result []int

	for ci, h := range table.Header {
		w := len(h)
		for _, r := range table.Rows {
			w = max(w, len(r[ci]))
		}
		result = append(result, w)
	}

	return result
}
