package tui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// DefaultWordWrap is the column replies are wrapped at.
const DefaultWordWrap = 100

// NewRenderer returns a function that renders markdown replies using glamour.
// The style follows the terminal background.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(DefaultWordWrap),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}
