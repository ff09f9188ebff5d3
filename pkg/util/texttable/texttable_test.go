package texttable

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrite(t *testing.T) {
	tests := []struct {
		it    string
		table *Table
		sep   string
		hdr   bool
		want  string
	}{
		{
			it: "should_align_columns",
			table: &Table{
				Header: []string{"NAME", "TEMPLATE", "BUILD", "VALIDATE"},
				Rows: [][]string{
					{"cl-frontend-prod", "success", "success", "success"},
					{"cl-db", "success", "failure", "skipped"},
					{"cl", "failure", "skipped", "skipped"},
				},
			},
			sep: "   ",
			hdr: true,
			want: `NAME               TEMPLATE   BUILD     VALIDATE
cl-frontend-prod   success    success   success
cl-db              success    failure   skipped
cl                 failure    skipped   skipped
`,
		},
		{
			it: "should_omit_header",
			table: &Table{
				Header: []string{"A", "B"},
				Rows:   [][]string{{"1", "2"}},
			},
			sep:  " ",
			hdr:  false,
			want: "1 2\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.it, func(t *testing.T) {
			b := &bytes.Buffer{}
			Write(tt.table, tt.sep, tt.hdr, b)
			got := b.String()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdd(t *testing.T) {
	tbl := New("NAME", "BUILD")
	tbl.Add("one")
	tbl.Add("two", "success")

	assert.Equal(t, 2, tbl.RowCnt())
	assert.Equal(t, [][]string{{"one", ""}, {"two", "success"}}, tbl.Rows)
}
