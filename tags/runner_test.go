package tags

import (
	contextpkg "context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestCommandQuerySplitsLines(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()

	command := NewCommand("sh")
	lines, err := command.Query(contextpkg.Background(), dir, "-c", `printf 'foo 1 a.c x\nbar 2 b.c y\n'; pwd >&2`)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo 1 a.c x", "bar 2 b.c y"}, lines)
}

func TestCommandQueryRunsInDirectory(t *testing.T) {
	skipWithoutShell(t)
	dir := t.TempDir()

	lines, err := NewCommand("sh").Query(contextpkg.Background(), dir, "-c", "pwd -P")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.NotEmpty(t, lines[0])
}

func TestCommandQueryIgnoresExitStatus(t *testing.T) {
	skipWithoutShell(t)

	lines, err := NewCommand("sh").Query(contextpkg.Background(), t.TempDir(), "-c", "echo oops >&2; exit 3")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCommandQuerySpawnFailure(t *testing.T) {
	_, err := NewCommand("tags-lsp-no-such-program").Query(contextpkg.Background(), t.TempDir(), "-x")
	assert.True(t, IsCode(err, ToolSpawnFailed))
}

func TestCommandQueryRejectsInvalidUTF8(t *testing.T) {
	skipWithoutShell(t)

	_, err := NewCommand("sh").Query(contextpkg.Background(), t.TempDir(), "-c", `printf '\377\376\n'`)
	assert.True(t, IsCode(err, InvalidToolOutput))
}

func TestCommandQueryOutputLimit(t *testing.T) {
	skipWithoutShell(t)

	command := &Command{Program: "sh", MaxOutput: 4}
	_, err := command.Query(contextpkg.Background(), t.TempDir(), "-c", "echo 0123456789")
	assert.True(t, IsCode(err, InvalidToolOutput))
}

func TestCommandQueryOutputLimitStopsEndlessTool(t *testing.T) {
	skipWithoutShell(t)

	command := &Command{Program: "sh", MaxOutput: 1024}
	done := make(chan error, 1)
	go func() {
		_, err := command.Query(contextpkg.Background(), t.TempDir(), "-c", "while :; do echo 0123456789; done")
		done <- err
	}()

	select {
	case err := <-done:
		assert.True(t, IsCode(err, InvalidToolOutput))
	case <-time.After(10 * time.Second):
		t.Fatal("query did not return after exceeding the output limit")
	}
}

func TestCommandQueryTimeout(t *testing.T) {
	skipWithoutShell(t)

	command := &Command{Program: "sh", Timeout: 50 * time.Millisecond}
	_, err := command.Query(contextpkg.Background(), t.TempDir(), "-c", "exec sleep 5")
	assert.True(t, IsCode(err, ToolExecutionFailed))
}

func TestCommandCheck(t *testing.T) {
	assert.True(t, IsCode(NewCommand("tags-lsp-no-such-program").Check(contextpkg.Background()), ToolSpawnFailed))
}

func TestGtagsBuilder(t *testing.T) {
	skipWithoutShell(t)

	builder := &GtagsBuilder{Program: "sh", Args: []string{"-c", "sleep 0.1"}}
	build, err := builder.Start(contextpkg.Background(), t.TempDir())
	require.NoError(t, err)
	assert.False(t, build.Exited())
	require.NoError(t, build.Wait())
	assert.True(t, build.Exited())

	_, err = NewGtagsBuilder("tags-lsp-no-such-program").Start(contextpkg.Background(), t.TempDir())
	assert.True(t, IsCode(err, ToolSpawnFailed))
}
