package core

import (
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/spf13/afero"

	"github.com/josephlewis42/picosh/core/config"
	"github.com/josephlewis42/picosh/core/logger"
)

const (
	EnvHome = "HOME"
	EnvPath = "PATH"

	DefaultPrompt = ": "
)

var (
	errorColor  = color.New(color.FgRed)
	reportColor = color.New(color.FgCyan)
)

// Shell is the interactive read-parse-dispatch loop. It owns one Launcher
// and one Tracker for its whole lifetime and runs everything on a single
// control thread; the only concurrency is at the OS process level.
type Shell struct {
	Config   *config.Configuration
	Readline *readline.Instance
	Launcher *Launcher
	Tracker  *Tracker

	log    *logger.Logger
	getenv func(string) string
	stdout io.Writer
	stderr io.Writer

	limits     Limits
	lastStatus ExitStatus
	haveStatus bool
	quitting   bool
}

// NewShell wires a shell from its configuration. The caller owns closing
// the returned shell.
func NewShell(cfg *config.Configuration, eventLog *logger.Logger) (*Shell, error) {
	if eventLog == nil {
		eventLog = logger.Nop()
	}

	prompt := cfg.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt: prompt,
	})
	if err != nil {
		return nil, err
	}

	shell := &Shell{
		Config:   cfg,
		Readline: rl,
		Launcher: NewLauncher(afero.NewOsFs(), os.Getenv, eventLog),
		Tracker:  NewTracker(eventLog),
		log:      eventLog,
		getenv:   os.Getenv,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		limits: Limits{
			MaxLineLength: cfg.MaxLineLength,
			MaxArgs:       cfg.MaxArgs,
		},
	}
	return shell, nil
}

// Run drives the shell until exit or EOF and returns the shell's exit code.
//
// A ^C at the prompt or during a foreground wait must never kill the shell
// itself, so SIGINT is kept handled for the shell's whole lifetime.
// Foreground children share the shell's process group and die from the same
// ^C; background children get their own group and never see it.
func (s *Shell) Run() int {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT)
	defer signal.Stop(sigc)

	for !s.quitting {
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			s.quitting = true // Input closed, quit.
			continue

		case err == readline.ErrInterrupt:
			continue // ^C at the prompt: fresh line, nothing else.

		case err != nil:
			log.Printf("Error readline: %v", err)
			continue
		}

		if code, fatal := s.dispatch(line); fatal {
			return code
		}

		s.reportReaped(s.Tracker.ReapBackground())
	}

	// Shutdown drain: nothing outstanding may outlive the shell.
	drained := s.reportReaped(s.Tracker.Drain())

	switch {
	case s.haveStatus:
		return s.lastStatus.ExitCode()
	case drained != nil:
		return drained.ExitCode()
	default:
		return 0
	}
}

// Close releases the terminal.
func (s *Shell) Close() error {
	return s.Readline.Close()
}

// dispatch handles one input line. The fatal return is set only for
// process-creation failure, after which the shell must go down.
func (s *Shell) dispatch(line string) (code int, fatal bool) {
	spec, err := ParseLine(line, s.limits)
	if err != nil {
		errorColor.Fprintf(s.stderr, "%v\n", err)
		s.log.ParseFailure(line, err)
		return 0, false
	}
	if spec == nil {
		return 0, false // empty line or comment
	}

	if builtin, ok := AllBuiltins[spec.Argv[0]]; ok {
		rc := builtin.Main(s, spec.Argv)
		s.log.BuiltinRan(spec.Argv[0], rc)
		return 0, false
	}

	rec, err := s.Launcher.Launch(spec, PolicyFor(spec.Background))
	switch {
	case err == nil:
		// launched

	case errors.Is(err, ErrLaunchFailed):
		// The OS would not give us a process. Report, reap everything
		// outstanding, and take the whole shell down non-zero.
		errorColor.Fprintf(s.stderr, "%v\n", err)
		s.reportReaped(s.Tracker.Drain())
		return 1, true

	default:
		// Unresolvable command or unopenable redirect target: local to
		// this command, observed as status 1.
		errorColor.Fprintf(s.stderr, "%v\n", err)
		s.setStatus(ExitStatus{Code: 1})
		return 0, false
	}

	if spec.Background {
		reportColor.Fprintf(s.stdout, "background process id number %d\n", rec.PID)
		s.Tracker.Add(rec)
		return 0, false
	}

	s.setStatus(s.Tracker.WaitForeground(rec))
	return 0, false
}

func (s *Shell) setStatus(status ExitStatus) {
	s.lastStatus = status
	s.haveStatus = true
}

// reportReaped prints one completion line per reaped background process and
// returns the last status observed, if any.
func (s *Shell) reportReaped(reaped []Reaped) *ExitStatus {
	var last *ExitStatus
	for i := range reaped {
		r := reaped[i]
		reportColor.Fprintf(s.stdout, "Background process %d closed: %s\n", r.Record.PID, r.Status.Render())
		last = &reaped[i].Status
	}
	return last
}
