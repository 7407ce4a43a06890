package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/relay/pkg/domain"
	"gopkg.in/yaml.v3"
)

// PrintTools writes the tool schemas advertised to the assistant as YAML.
func PrintTools(w io.Writer, tools []domain.Tool) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{"tools": tools}); err != nil {
		return fmt.Errorf("failed to encode tools: %w", err)
	}
	return enc.Close()
}
