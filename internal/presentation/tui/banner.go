package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Lead Wizard ASCII art banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{" _                _  __        ___                  _ ", "#34d399"},
		{"| |    ___  __ _ | | \\ \\      / (_)______ _ _ __ __| |", "#2dd4bf"},
		{"| |   / _ \\/ _` || |  \\ \\ /\\ / /| |_  / _` | '__/ _` |", "#22d3ee"},
		{"| |__|  __/ (_| || |   \\ V  V / | |/ / (_| | | | (_| |", "#38bdf8"},
		{"|_____\\___|\\__,_||_|    \\_/\\_/  |_/___\\__,_|_|  \\__,_|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
