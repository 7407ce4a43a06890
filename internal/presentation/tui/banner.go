package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the relay banner to w, colored when the terminal supports it.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"            _             ", "#38bdf8"},
		{"  _ __ ___ | | __ _ _   _ ", "#22d3ee"},
		{" | '__/ _ \\| |/ _` | | | |", "#2dd4bf"},
		{" | | |  __/| | (_| | |_| |", "#34d399"},
		{" |_|  \\___||_|\\__,_|\\__, |", "#4ade80"},
		{"                    |___/ ", "#a3e635"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
