package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultMaxLineLength bounds the raw input line, including redirect
	// targets. Longer lines are rejected before any tokenization.
	DefaultMaxLineLength = 2048

	// DefaultMaxArgs bounds the argument vector handed to the launcher.
	DefaultMaxArgs = 512
)

var (
	// ErrMissingRedirectTarget reports a `<` or `>` with nothing after it.
	ErrMissingRedirectTarget = errors.New("missing filename for redirection")

	// ErrLineTooLong reports an input line over the configured limit.
	ErrLineTooLong = errors.New("input line too long")

	// ErrTooManyArgs reports an argument vector over the configured limit.
	ErrTooManyArgs = errors.New("too many arguments")
)

// Limits bounds what the parser accepts. The zero value disables both
// checks; Configuration supplies real values.
type Limits struct {
	MaxLineLength int
	MaxArgs       int
}

// CommandSpec is one parsed input line, ready for the launcher.
type CommandSpec struct {
	// Argv holds the program name followed by its arguments. Never empty
	// for a spec returned by ParseLine.
	Argv []string

	// InputRedirect is the `<` target, empty when input is inherited.
	InputRedirect string

	// OutputRedirect is the `>` target, empty when output is inherited.
	OutputRedirect string

	// Background is set when the line ended with a lone `&`.
	Background bool
}

// ParseLine tokenizes a raw input line into a CommandSpec.
//
// Blank lines and lines starting with `#` yield (nil, nil) and should be
// ignored by the caller. `<` and `>` consume the following token as a
// redirect target; a trailing operator with no target is an error. `&`
// anywhere stops the parse and marks the command as background; only the
// trailing position is documented, but mid-line `&` has always behaved
// this way and scripts rely on it.
func ParseLine(line string, limits Limits) (*CommandSpec, error) {
	if limits.MaxLineLength > 0 && len(line) > limits.MaxLineLength {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrLineTooLong, len(line), limits.MaxLineLength)
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, nil
	}

	spec := &CommandSpec{}
	tokens := strings.Fields(trimmed)

parse:
	for i := 0; i < len(tokens); i++ {
		switch tok := tokens[i]; tok {
		case "<":
			i++
			if i >= len(tokens) {
				return nil, fmt.Errorf("%w after %q", ErrMissingRedirectTarget, tok)
			}
			spec.InputRedirect = tokens[i]
		case ">":
			i++
			if i >= len(tokens) {
				return nil, fmt.Errorf("%w after %q", ErrMissingRedirectTarget, tok)
			}
			spec.OutputRedirect = tokens[i]
		case "&":
			spec.Background = true
			break parse
		default:
			spec.Argv = append(spec.Argv, tok)
		}
	}

	// A line of nothing but operators, e.g. "&" alone.
	if len(spec.Argv) == 0 {
		return nil, nil
	}

	if limits.MaxArgs > 0 && len(spec.Argv) > limits.MaxArgs {
		return nil, fmt.Errorf("%w: %d (limit %d)", ErrTooManyArgs, len(spec.Argv), limits.MaxArgs)
	}

	return spec, nil
}
