package yamlx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	var tsts = []struct {
		in   string
		want [][]byte
	}{
		{
			in: `
aa
---
bb
`,
			want: [][]byte{
				[]byte(
					`
aa`),
				[]byte(
					`bb
`),
			},
		},
	}

	for _, tst := range tsts {
		got, err := SplitDoc([]byte(tst.in))
		assert.NoError(t, err)
		assert.Equal(t, tst.want, got)
	}
}

func TestIsEmpty(t *testing.T) {
	var tsts = []struct {
		in   string
		want bool
	}{
		{
			in: `
aa
---
bb
`,
			want: false,
		},
		{ // comment is no content.
			in: `#
`,
			want: true,
		},

		{ // separator is no content.
			in: `---
`,
			want: true,
		},
	}

	for _, tst := range tsts {
		got := IsEmpty([]byte(tst.in))
		assert.Equal(t, tst.want, got)
	}
}

func TestSplitLarge(t *testing.T) {
	// build a stream like a fleet sized build output.
	var sb strings.Builder
	const docs = 51
	for i := 0; i < docs; i++ {
		if i > 0 {
			sb.WriteString("---\n")
		}
		sb.WriteString("kind: ConfigMap\ndata:\n  key: ")
		sb.WriteString(strings.Repeat("x", 4096))
		sb.WriteString("\n")
	}

	ds, err := SplitDoc([]byte(sb.String()))
	assert.NoError(t, err)
	assert.Equal(t, docs, len(ds))
}

func TestParseAndMerge(t *testing.T) {
	base, err := Parse([]byte("team: platform\nregion: eu\n"))
	assert.NoError(t, err)

	got := Merge(base, FromStringMap(map[string]string{"region": "us", "cluster": "c1"}))

	assert.Equal(t, Values{"team": "platform", "region": "us", "cluster": "c1"}, got)
	// arguments are not modified.
	assert.Equal(t, Values{"team": "platform", "region": "eu"}, base)
}
