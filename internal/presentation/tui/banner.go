package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Waypoint banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Blue to violet, matching the node palette.
	lines := []struct {
		text, color string
	}{
		{` __      __                     _     _   `, "#3B82F6"},
		{` \ \    / /_ _ _  _ _ __  ___ (_)_ _| |_ `, "#6366F1"},
		{`  \ \/\/ / _' | || | '_ \/ _ \| | ' \  _|`, "#8B5CF6"},
		{`   \_/\_/\__,_|\_, | .__/\___/|_|_||_\__|`, "#A855F7"},
		{`               |__/|_|                   `, "#C084FC"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
