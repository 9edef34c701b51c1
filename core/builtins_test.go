package core

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testShell(t *testing.T, env map[string]string) (*Shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	shell := &Shell{
		getenv: func(key string) string { return env[key] },
		stdout: &stdout,
		stderr: &stderr,
	}
	return shell, &stdout, &stderr
}

func preserveWd(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestCd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix shell semantics")
	}
	preserveWd(t)

	dir := t.TempDir()
	home := t.TempDir()

	t.Run("explicit directory", func(t *testing.T) {
		shell, _, stderr := testShell(t, nil)

		rc := Cd(shell, []string{"cd", dir})

		assert.Zero(t, rc)
		assert.Empty(t, stderr.String())
		wd, _ := os.Getwd()
		assert.Equal(t, mustEvalSymlinks(t, dir), mustEvalSymlinks(t, wd))
	})

	t.Run("no argument goes home", func(t *testing.T) {
		shell, _, stderr := testShell(t, map[string]string{EnvHome: home})

		rc := Cd(shell, []string{"cd"})

		assert.Zero(t, rc)
		assert.Empty(t, stderr.String())
		wd, _ := os.Getwd()
		assert.Equal(t, mustEvalSymlinks(t, home), mustEvalSymlinks(t, wd))
	})

	t.Run("missing directory is reported", func(t *testing.T) {
		shell, _, stderr := testShell(t, nil)

		rc := Cd(shell, []string{"cd", filepath.Join(dir, "does-not-exist")})

		assert.Equal(t, 1, rc)
		assert.Contains(t, stderr.String(), "cd:")
	})

	t.Run("too many arguments", func(t *testing.T) {
		shell, _, stderr := testShell(t, nil)

		rc := Cd(shell, []string{"cd", "a", "b"})

		assert.Equal(t, 1, rc)
		assert.Contains(t, stderr.String(), "too many arguments")
	})
}

func mustEvalSymlinks(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}

func TestStatusBuiltin(t *testing.T) {
	t.Run("normal exit", func(t *testing.T) {
		shell, stdout, _ := testShell(t, nil)
		shell.setStatus(ExitStatus{Code: 2})

		rc := Status(shell, []string{"status"})

		assert.Zero(t, rc)
		assert.Equal(t, "The process exited normally with code 2\n", stdout.String())
	})

	t.Run("signal death", func(t *testing.T) {
		shell, stdout, _ := testShell(t, nil)
		shell.setStatus(ExitStatus{Signal: 9, Signaled: true})

		rc := Status(shell, []string{"status"})

		assert.Zero(t, rc)
		assert.Equal(t, "The process terminated by signal 9\n", stdout.String())
	})

	t.Run("before anything ran", func(t *testing.T) {
		shell, stdout, _ := testShell(t, nil)

		rc := Status(shell, []string{"status"})

		assert.Zero(t, rc)
		assert.Equal(t, "The process exited normally with code 0\n", stdout.String())
	})

	t.Run("help", func(t *testing.T) {
		shell, _, stderr := testShell(t, nil)

		rc := Status(shell, []string{"status", "--help"})

		assert.Equal(t, 1, rc)
		assert.Contains(t, stderr.String(), "usage: status")
	})
}

func TestExitBuiltin(t *testing.T) {
	shell, _, _ := testShell(t, nil)

	rc := Exit(shell, []string{"exit"})

	assert.Zero(t, rc)
	assert.True(t, shell.quitting)
}

func TestHelpBuiltin(t *testing.T) {
	shell, stdout, _ := testShell(t, nil)

	rc := Help(shell, []string{"help"})

	assert.Zero(t, rc)
	for _, name := range []string{"cd", "status", "exit", "help"} {
		assert.Contains(t, stdout.String(), name)
	}
}

func TestBuiltinRegistry(t *testing.T) {
	assert.Equal(t, []string{"cd", "exit", "help", "status"}, BuiltinNames())
	for name, builtin := range AllBuiltins {
		assert.NotNil(t, builtin, "nil builtin %q", name)
	}
}
