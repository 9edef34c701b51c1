package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"

	"github.com/josephlewis42/picosh/core/logger"
)

// ErrNotFound is the error resulting if a path search failed to find an
// executable file.
var ErrNotFound = exec.ErrNotFound

// ErrLaunchFailed reports that the OS refused to create a process for a
// command that resolved successfully. This is the one launch error that is
// fatal to the shell itself.
var ErrLaunchFailed = errors.New("process creation failed")

// ExecError reports a command that could not be resolved to an executable.
// It scopes the failure to the command, not the shell.
type ExecError struct {
	Command string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("did not recognize the command: %s", e.Command)
}

func (e *ExecError) Unwrap() error { return e.Err }

// RedirectError reports a redirect target that could not be opened.
type RedirectError struct {
	Path string
	Op   string // "input" or "output"
	Err  error
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("cannot open %s file %s: %v", e.Op, e.Path, e.Err)
}

func (e *RedirectError) Unwrap() error { return e.Err }

// SignalPolicy decides how interrupt delivery is set up for a child.
//
// The shell keeps SIGINT handled for its own lifetime so a ^C at the prompt
// never kills it. Foreground children stay in the shell's process group and
// get default dispositions across exec, so the same ^C kills them.
// Background children are moved to their own process group, out of reach of
// the terminal's interrupt entirely.
type SignalPolicy struct {
	Background bool
}

// PolicyFor returns the disposition policy for a launch.
func PolicyFor(background bool) SignalPolicy {
	return SignalPolicy{Background: background}
}

// SysProcAttr renders the policy as process-creation attributes.
func (p SignalPolicy) SysProcAttr() *unix.SysProcAttr {
	if p.Background {
		return &unix.SysProcAttr{Setpgid: true}
	}
	return &unix.SysProcAttr{}
}

// ProcessRecord identifies one launched child. Foreground records are
// consumed by WaitForeground right after launch; background records live in
// the Tracker until reaped.
type ProcessRecord struct {
	PID        int
	Background bool
	Command    string
}

// Launcher creates child processes with redirection and signal setup
// applied. It never waits on what it starts; that is the Tracker's job.
type Launcher struct {
	fs     afero.Fs
	getenv func(string) string
	log    *logger.Logger
}

// NewLauncher builds a launcher that opens redirect targets through fsys and
// resolves programs against the PATH from getenv.
func NewLauncher(fsys afero.Fs, getenv func(string) string, log *logger.Logger) *Launcher {
	if getenv == nil {
		getenv = os.Getenv
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Launcher{fs: fsys, getenv: getenv, log: log}
}

func findExecutable(fsys afero.Fs, file string) error {
	d, err := fsys.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// LookPath searches for an executable named file in the directories named
// by the PATH environment variable. If file contains a slash, it is tried
// directly and the PATH is not consulted.
func LookPath(fsys afero.Fs, pathEnv, file string) (string, error) {
	if strings.Contains(file, "/") {
		err := findExecutable(fsys, file)
		if err == nil {
			return file, nil
		}
		return "", err
	}
	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(fsys, path); err == nil {
			return path, nil
		}
	}
	return "", ErrNotFound
}

// invokeFailure reports whether a Start error is attributable to the
// program being invoked rather than to the OS failing to create a process.
// Resource-level failures (EAGAIN, ENOMEM) are the shell-fatal kind;
// everything the exec step itself can report stays local to the command.
func invokeFailure(err error) bool {
	var pathErr *os.PathError
	if !errors.As(err, &pathErr) {
		return false
	}
	var errno unix.Errno
	if !errors.As(pathErr.Err, &errno) {
		return false
	}
	switch errno {
	case unix.EAGAIN, unix.ENOMEM:
		return false
	}
	return true
}

// Launch resolves spec.Argv[0], applies redirection and the signal policy,
// and starts the program. It returns as soon as the child exists.
//
// Failures split three ways: an unresolvable command or an unopenable
// redirect target is local to the command (*ExecError / *RedirectError) and
// the shell carries on; a process-creation failure after successful
// resolution wraps ErrLaunchFailed and the shell must shut down.
func (l *Launcher) Launch(spec *CommandSpec, policy SignalPolicy) (*ProcessRecord, error) {
	execPath, err := LookPath(l.fs, l.getenv(EnvPath), spec.Argv[0])
	if err != nil {
		l.log.CommandNotFound(spec.Argv[0], err)
		return nil, &ExecError{Command: spec.Argv[0], Err: err}
	}

	cmd := &exec.Cmd{
		Path:        execPath,
		Args:        spec.Argv,
		Stderr:      os.Stderr,
		SysProcAttr: policy.SysProcAttr(),
	}

	switch {
	case spec.InputRedirect != "":
		in, err := l.fs.Open(spec.InputRedirect)
		if err != nil {
			return nil, &RedirectError{Path: spec.InputRedirect, Op: "input", Err: err}
		}
		defer in.Close()
		cmd.Stdin = in
	case spec.Background:
		// Leave Stdin nil: the child reads from the null device and an
		// unattended background job can never block on the terminal.
	default:
		cmd.Stdin = os.Stdin
	}

	if spec.OutputRedirect != "" {
		out, err := l.fs.OpenFile(spec.OutputRedirect, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0744)
		if err != nil {
			return nil, &RedirectError{Path: spec.OutputRedirect, Op: "output", Err: err}
		}
		defer out.Close()
		cmd.Stdout = out
	} else {
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Start(); err != nil {
		// Start conflates creating the process with invoking the program.
		// Only the former may take the shell down; a program that exists
		// but can't be invoked (ENOEXEC on a non-binary, EACCES) is an
		// ordinary command failure like execvp reporting into the child.
		if invokeFailure(err) {
			l.log.CommandNotFound(spec.Argv[0], err)
			return nil, &ExecError{Command: spec.Argv[0], Err: err}
		}
		l.log.LaunchFailure(spec.Argv, err)
		return nil, fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	rec := &ProcessRecord{
		PID:        cmd.Process.Pid,
		Background: spec.Background,
		Command:    spec.Argv[0],
	}
	l.log.CommandStarted(rec.PID, spec.Argv, spec.Background)
	return rec, nil
}
