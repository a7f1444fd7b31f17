package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "normalizes CRLF",
			in:   "Senior Engineer\r\nAcme Corp\r",
			want: "Senior Engineer\nAcme Corp",
		},
		{
			name: "strips URLs",
			in:   "Apply at https://example.com/apply today",
			want: "Apply at today",
		},
		{
			name: "strips email addresses",
			in:   "Contact recruiting@example.com for details",
			want: "Contact for details",
		},
		{
			name: "collapses runs of spaces and tabs",
			in:   "Go \t  engineer   wanted",
			want: "Go engineer wanted",
		},
		{
			name: "caps blank lines at one",
			in:   "Role\n\n\n\n\nRequirements",
			want: "Role\n\nRequirements",
		},
		{
			name: "trims lines and surrounding whitespace",
			in:   "  \n  Senior Engineer  \n  Acme  \n  ",
			want: "Senior Engineer\nAcme",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanText(tc.in))
		})
	}
}
