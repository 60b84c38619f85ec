package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the arbor ASCII art banner followed by the version.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Green/Teal)
	s1 := termenv.String("    _         _              ").Foreground(p.Color("#4ade80"))
	s2 := termenv.String("   /_\\  _ _ | |__  ___  _ _ ").Foreground(p.Color("#34d399"))
	s3 := termenv.String("  / _ \\| '_|| '_ \\/ _ \\| '_|").Foreground(p.Color("#2dd4bf"))
	s4 := termenv.String(" /_/ \\_\\_|  |_.__/\\___/|_|  ").Foreground(p.Color("#22d3ee"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	if v := strings.TrimSpace(version); v != "" {
		fmt.Println(termenv.String("  v" + v).Faint())
	}
	fmt.Println()
}
