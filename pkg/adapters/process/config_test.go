package process

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadTools(t *testing.T) {
	t.Run("YAML", func(t *testing.T) {
		path := writeFile(t, "tools.yaml", `
tools:
  - name: disk_usage
    description: Report disk usage of a path
    command: du
    args: ["-sh"]
    env:
      LC_ALL: C
    timeout: 5s
    parameters:
      type: object
      properties:
        path:
          type: string
      required: [path]
  - name: uptime
    command: uptime
`)
		tools, err := LoadTools(path)
		require.NoError(t, err)
		require.Len(t, tools, 2)

		assert.Equal(t, "disk_usage", tools[0].Name)
		assert.Equal(t, []string{"-sh"}, tools[0].Args)
		assert.Equal(t, map[string]string{"LC_ALL": "C"}, tools[0].Environment)
		assert.Equal(t, 5*time.Second, tools[0].Timeout)
		assert.Equal(t, "object", tools[0].Tool().Parameters["type"])

		assert.Equal(t, "uptime", tools[1].Name)
		assert.Equal(t, map[string]any{"type": "object", "properties": map[string]any{}}, tools[1].Tool().Parameters)
	})

	t.Run("JSON", func(t *testing.T) {
		path := writeFile(t, "tools.json", `{"tools":[{"name":"date","command":"date","description":"Current date"}]}`)
		tools, err := LoadTools(path)
		require.NoError(t, err)
		require.Len(t, tools, 1)
		assert.Equal(t, "Current date", tools[0].Tool().Description)
	})

	t.Run("Missing File Means No Tools", func(t *testing.T) {
		tools, err := LoadTools(filepath.Join(t.TempDir(), "tools.yaml"))
		require.NoError(t, err)
		assert.Empty(t, tools)
	})

	t.Run("Invalid Declarations", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
			wantErr string
		}{
			{"No Name", "tools:\n  - command: date\n", "name is required"},
			{"No Command", "tools:\n  - name: date\n", "command is required"},
			{"Duplicate", "tools:\n  - {name: a, command: x}\n  - {name: a, command: y}\n", "declared twice"},
			{"Bad YAML", "tools: [", "failed to parse"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := LoadTools(writeFile(t, "tools.yaml", tt.content))
				assert.ErrorContains(t, err, tt.wantErr)
			})
		}
	})
}
