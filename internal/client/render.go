package client

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/plant-identifier/backend/internal/models"
)

// Markdown formats rec as a result card. Absent info fields read "Unknown" and
// preventive measures only appear for an unhealthy plant.
func Markdown(rec *models.PlantRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", rec.DisplayName())
	if rec.ScientificName != "" {
		fmt.Fprintf(&b, "*%s*\n\n", rec.ScientificName)
	}
	if rec.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", rec.Description)
	}

	b.WriteString("## Plant Information\n\n")
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Family | %s |\n", orUnknown(rec.Family))
	fmt.Fprintf(&b, "| Origin | %s |\n", orUnknown(rec.Origin))
	fmt.Fprintf(&b, "| Growth Rate | %s |\n", orUnknown(rec.GrowthRate))
	fmt.Fprintf(&b, "| Max Height | %s |\n\n", orUnknown(rec.MaxHeight))

	if len(rec.CareInstructions) > 0 {
		b.WriteString("## Care Instructions\n\n")
		for _, step := range rec.CareInstructions {
			fmt.Fprintf(&b, "- %s\n", step)
		}
		b.WriteString("\n")
	}

	if rec.HealthStatus != "" {
		b.WriteString("## Health Status\n\n")
		fmt.Fprintf(&b, "Status: **%s**\n\n", rec.HealthStatus)
		if rec.ShowPreventiveMeasures() {
			b.WriteString("### Preventive Measures\n\n")
			for _, m := range rec.PreventiveMeasures {
				fmt.Fprintf(&b, "- %s\n", m)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// orUnknown returns s as a table cell, or "Unknown" when it is blank.
func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return cellEscaper.Replace(s)
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

// RenderTerminal renders rec for a terminal of the given width.
// A zero width uses 80 columns.
func RenderTerminal(rec *models.PlantRecord, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	return renderer.Render(Markdown(rec))
}
