package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the sift banner, shown when a server starts.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{"       _  __ _   ", "#34d399"},
		{"   ___(_)/ _| |_ ", "#2dd4bf"},
		{"  / __| | |_| __|", "#22d3ee"},
		{"  \\__ \\ |  _| |_ ", "#38bdf8"},
		{"  |___/_|_|  \\__|", "#60a5fa"},
	}
	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
