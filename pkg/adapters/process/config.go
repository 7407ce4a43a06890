package process

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/relay/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ToolConfig describes one tool backed by an external command.
type ToolConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
	Parameters  map[string]any    `yaml:"parameters" json:"parameters"`
	Timeout     time.Duration     `yaml:"timeout" json:"timeout"`
}

// Tool returns the metadata advertised to the assistant.
// Without declared parameters the tool takes an empty object.
func (c ToolConfig) Tool() domain.Tool {
	params := c.Parameters
	if len(params) == 0 {
		params = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return domain.Tool{
		Name:        c.Name,
		Description: c.Description,
		Parameters:  params,
	}
}

// ConfigFile represents the structure of tools.yaml
type ConfigFile struct {
	Tools []ToolConfig `yaml:"tools" json:"tools"`
}

// LoadTools reads a configuration file (YAML or JSON) and returns the declared tools
// in file order. A missing file means no tools are configured.
func LoadTools(path string) ([]ToolConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read tools config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	tools := make([]ToolConfig, 0, len(cfg.Tools))
	seen := make(map[string]bool, len(cfg.Tools))
	for i, tool := range cfg.Tools {
		if tool.Name == "" {
			return nil, fmt.Errorf("tool #%d: name is required", i+1)
		}
		if tool.Command == "" {
			return nil, fmt.Errorf("tool %q: command is required", tool.Name)
		}
		if seen[tool.Name] {
			return nil, fmt.Errorf("tool %q: declared twice", tool.Name)
		}
		seen[tool.Name] = true
		tools = append(tools, tool)
	}
	return tools, nil
}
