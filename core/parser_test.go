package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		name string
		line string
		want *CommandSpec
	}{
		{
			name: "bare command",
			line: "ls",
			want: &CommandSpec{Argv: []string{"ls"}},
		},
		{
			name: "command with args",
			line: "ls -la /tmp",
			want: &CommandSpec{Argv: []string{"ls", "-la", "/tmp"}},
		},
		{
			name: "both redirects",
			line: "wc < in.txt > out.txt",
			want: &CommandSpec{
				Argv:           []string{"wc"},
				InputRedirect:  "in.txt",
				OutputRedirect: "out.txt",
			},
		},
		{
			name: "redirects before args",
			line: "sort > sorted.txt -r",
			want: &CommandSpec{
				Argv:           []string{"sort", "-r"},
				OutputRedirect: "sorted.txt",
			},
		},
		{
			name: "background",
			line: "sleep 2 &",
			want: &CommandSpec{Argv: []string{"sleep", "2"}, Background: true},
		},
		{
			name: "ampersand mid-line stops the parse",
			line: "sleep 2 & ignored tokens",
			want: &CommandSpec{Argv: []string{"sleep", "2"}, Background: true},
		},
		{
			name: "extra whitespace",
			line: "  echo   hello  ",
			want: &CommandSpec{Argv: []string{"echo", "hello"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseLine(tc.line, Limits{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseLineIgnored(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"whitespace only", "   \t "},
		{"comment", "# a comment"},
		{"indented comment", "   # still a comment"},
		{"lone ampersand", "&"},
		{"operators only", "< a > b"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseLine(tc.line, Limits{})
			assert.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestParseLineErrors(t *testing.T) {
	limits := Limits{MaxLineLength: DefaultMaxLineLength, MaxArgs: DefaultMaxArgs}

	t.Run("missing output filename", func(t *testing.T) {
		_, err := ParseLine("echo hi >", limits)
		assert.ErrorIs(t, err, ErrMissingRedirectTarget)
	})

	t.Run("missing input filename", func(t *testing.T) {
		_, err := ParseLine("wc <", limits)
		assert.ErrorIs(t, err, ErrMissingRedirectTarget)
	})

	t.Run("line too long", func(t *testing.T) {
		_, err := ParseLine("echo "+strings.Repeat("x", DefaultMaxLineLength), limits)
		assert.ErrorIs(t, err, ErrLineTooLong)
	})

	t.Run("too many args", func(t *testing.T) {
		line := "echo " + strings.TrimSpace(strings.Repeat("a ", DefaultMaxArgs))
		_, err := ParseLine(line, Limits{MaxLineLength: 1 << 20, MaxArgs: DefaultMaxArgs})
		assert.ErrorIs(t, err, ErrTooManyArgs)
	})

	t.Run("limits disabled by zero value", func(t *testing.T) {
		spec, err := ParseLine("echo "+strings.Repeat("x", DefaultMaxLineLength), Limits{})
		assert.NoError(t, err)
		assert.NotNil(t, spec)
	})
}
