package vcs

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeStubHg writes an executable shell script that records its arguments
// and working directory to a log file and exits with the given status.
func writeStubHg(t *testing.T, exitCode int) (binary, logPath string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub executables are shell scripts")
	}

	dir := t.TempDir()
	logPath = filepath.Join(dir, "calls.log")
	binary = filepath.Join(dir, "hg")
	script := "#!/bin/sh\n" +
		"echo \"$(pwd)|$*\" >> " + logPath + "\n" +
		"exit " + strconv.Itoa(exitCode) + "\n"
	require.NoError(t, os.WriteFile(binary, []byte(script), 0755))
	return binary, logPath
}

func TestHgDetectSuccess(t *testing.T) {
	binary, logPath := writeStubHg(t, 0)
	target := t.TempDir()
	cwd := t.TempDir()

	hg := NewHg(binary)
	assert.True(t, hg.Detect(target, cwd))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	parts := strings.SplitN(line, "|", 2)
	require.Len(t, parts, 2)

	wantCwd, err := filepath.EvalSymlinks(cwd)
	require.NoError(t, err)
	gotCwd, err := filepath.EvalSymlinks(parts[0])
	require.NoError(t, err)
	assert.Equal(t, wantCwd, gotCwd)
	assert.Equal(t, "--cwd "+target+" root", parts[1])
}

func TestHgDetectNonZeroExit(t *testing.T) {
	binary, _ := writeStubHg(t, 1)
	dir := t.TempDir()
	assert.False(t, NewHg(binary).Detect(dir, dir))
}

func TestHgDetectMissingExecutable(t *testing.T) {
	dir := t.TempDir()
	hg := NewHg(filepath.Join(dir, "no-such-hg"))
	assert.False(t, hg.Detect(dir, dir))
}

func TestHgDetectMissingCwd(t *testing.T) {
	binary, logPath := writeStubHg(t, 0)
	missing := filepath.Join(t.TempDir(), "missing")

	assert.False(t, NewHg(binary).Detect(missing, missing))
	_, err := os.Stat(logPath)
	assert.True(t, os.IsNotExist(err), "stub must not run without a working directory")
}

func TestNewHgDefaultBinary(t *testing.T) {
	assert.Equal(t, DefaultHgBinary, NewHg("").Binary)
	assert.Equal(t, "hg", NewHg("").Name())
}
