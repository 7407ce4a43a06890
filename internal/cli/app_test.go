package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aretw0/relay/internal/logging"
	"github.com/aretw0/relay/internal/testutils"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewTools(t *testing.T) {
	cfg := testConfig(t)

	t.Run("Builtins Only", func(t *testing.T) {
		reg, err := NewTools(cfg, logging.NewNop())
		require.NoError(t, err)
		assert.True(t, reg.Has("getCurrentWeather"))
		assert.True(t, reg.Has("getNickname"))
	})

	t.Run("Declared Process Tools", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("uses a POSIX shell")
		}
		path := filepath.Join(t.TempDir(), "tools.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
tools:
  - name: echo_location
    command: sh
    args: ["-c", "echo \"$RELAY_ARG_LOCATION\""]
    parameters:
      type: object
      properties:
        location: {type: string}
`), 0644))
		cfg := cfg
		cfg.ToolsPath = path

		reg, err := NewTools(cfg, logging.NewNop())
		require.NoError(t, err)
		require.True(t, reg.Has("echo_location"))

		res, err := reg.Dispatch(context.Background(), domain.ToolCall{ID: "c1", Name: "echo_location", Raw: `{"location":"Oxford"}`})
		require.NoError(t, err)
		assert.Equal(t, "Oxford", res.Output)
	})

	t.Run("Process Tool Shadowing A Builtin", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tools.yaml")
		require.NoError(t, os.WriteFile(path, []byte("tools:\n  - {name: getNickname, command: echo}\n"), 0644))
		cfg := cfg
		cfg.ToolsPath = path

		_, err := NewTools(cfg, logging.NewNop())
		assert.ErrorContains(t, err, "getNickname")
	})
}

func TestBuild_AssistantFailure(t *testing.T) {
	remote := &testutils.MockRemote{}
	remote.On("EnsureAssistant", mock.Anything, mock.Anything).
		Return(domain.Assistant{}, domain.Remote("create assistant", errors.New("401 unauthorized")))

	_, err := Build(context.Background(), testConfig(t), logging.NewNop(), Options{Remote: remote})
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestPrintTools(t *testing.T) {
	reg, err := NewTools(testConfig(t), logging.NewNop())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, PrintTools(&out, reg.Tools()))
	assert.Contains(t, out.String(), "name: getCurrentWeather")
	assert.Contains(t, out.String(), "name: getNickname")
	assert.Contains(t, out.String(), "location")
}

func TestSessionCommands(t *testing.T) {
	ctx := context.Background()
	mgr, _, closer, err := NewSessions(testConfig(t), logging.NewNop())
	require.NoError(t, err)
	defer closer.Close()

	var out bytes.Buffer
	require.NoError(t, ListSessions(ctx, mgr, &out))
	assert.Contains(t, out.String(), "No sessions found.")

	s := domain.NewSession("demo")
	s.ThreadID = "thread_1"
	require.NoError(t, mgr.Save(ctx, s))

	out.Reset()
	require.NoError(t, ListSessions(ctx, mgr, &out))
	assert.Contains(t, out.String(), "ID")
	assert.Contains(t, out.String(), "thread_1")

	out.Reset()
	require.NoError(t, InspectSession(ctx, mgr, "demo", &out))
	assert.Contains(t, out.String(), "thread_id: thread_1")

	out.Reset()
	require.NoError(t, RemoveSessions(ctx, mgr, []string{"demo"}, &out))
	assert.Contains(t, out.String(), "Session 'demo' deleted.")

	err = InspectSession(ctx, mgr, "demo", &out)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
