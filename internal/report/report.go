// Package report renders run summaries and terminal plots.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("242"))

	Value = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255"))

	Warn = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("220"))
)

// Field renders a "label: value" line.
func Field(label string, value any) string {
	return fmt.Sprintf("%s %s", Label.Render(label+":"), Value.Render(fmt.Sprint(value)))
}

// EnergyPlot renders a terminal graph of an energy series.
func EnergyPlot(energies []float64, caption string) string {
	if len(energies) < 2 {
		return Label.Render("(not enough samples to plot)")
	}
	return asciigraph.Plot(energies,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

// Header renders a titled section divider.
func Header(title string) string {
	line := strings.Repeat("─", len(title)+2)
	return Title.Render(title) + "\n" + Label.Render(line)
}
