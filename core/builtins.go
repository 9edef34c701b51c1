package core

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pborman/getopt/v2"
)

// AllBuiltins holds a list of all registered shell builtins. Builtins run
// in the shell's own process; nothing is launched for them.
var AllBuiltins = make(map[string]ShellBuiltin)

type ShellBuiltin interface {
	Main(s *Shell, args []string) int
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func (f ShellBuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// Cd is the cd shell builtin. With no argument it changes to $HOME.
func Cd(s *Shell, args []string) int {
	switch len(args) {
	case 1:
		args = append(args, s.getenv(EnvHome))
		fallthrough
	case 2:
		if err := os.Chdir(args[1]); err != nil {
			fmt.Fprintf(s.stderr, "%s: %v\n", args[0], err)
			return 1
		}
	default:
		fmt.Fprintf(s.stderr, "%s: too many arguments\n", args[0])
		return 1
	}
	return 0
}

// Status reports how the last foreground process ended.
func Status(s *Shell, args []string) int {
	opts := getopt.New()
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := s.stderr
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "usage: status")
		fmt.Fprintln(w, "Report the termination status of the last foreground process.")
		return 1
	}

	fmt.Fprintf(s.stdout, "The process %s\n", s.lastStatus.Render())
	return 0
}

// Exit quits the shell after draining outstanding background processes.
func Exit(s *Shell, args []string) int {
	s.quitting = true
	return 0
}

// Help lists the builtins.
func Help(s *Shell, args []string) int {
	w := s.stdout
	fmt.Fprintln(w, "These shell commands are defined internally. Type `help' to see this list.")
	fmt.Fprintln(w)

	var builtins []string
	for k := range AllBuiltins {
		builtins = append(builtins, k)
	}
	sort.Strings(builtins)

	fmt.Fprintln(w, strings.Join(builtins, "\n"))
	return 0
}

// BuiltinNames lists the registered builtins in sorted order.
func BuiltinNames() []string {
	var names []string
	for k := range AllBuiltins {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func init() {
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["status"] = ShellBuiltinFunc(Status)
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
	AllBuiltins["help"] = ShellBuiltinFunc(Help)
}
