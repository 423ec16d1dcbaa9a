package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"coursereport/internal/exporter"
	"coursereport/pkg/contracts/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#dddddd"}).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#626262", Dark: "#a8a8a8"})

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#005577", Dark: "#00aadd"})

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	totalsStyle = lipgloss.NewStyle().Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#859900", Dark: "#50fa7b"}).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#b58900", Dark: "#f1fa8c"}).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#dc322f", Dark: "#ff5555"}).
			Bold(true)
)

// headerRow is the StyleFunc row index of the table headers; data rows
// start at 1.
const headerRow = 0

func tableCellStyle(row, col int) lipgloss.Style {
	style := cellStyle
	if row == headerRow {
		style = headerStyle
	}
	if col > 0 {
		style = style.Align(lipgloss.Right)
	}
	return style
}

// renderReport formats report as a title block followed by the region table
// with a bold grand total row
func renderReport(report *domain.Report) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(exporter.Headers...).
		StyleFunc(tableCellStyle)

	for _, r := range report.Regions {
		t.Row(r.Region, strconv.Itoa(r.Total), strconv.Itoa(r.WithCert), strconv.Itoa(r.NoCert))
	}
	t.Row(
		totalsStyle.Render(exporter.TotalsLabel),
		totalsStyle.Render(strconv.Itoa(report.Totals.Total)),
		totalsStyle.Render(strconv.Itoa(report.Totals.WithCert)),
		totalsStyle.Render(strconv.Itoa(report.Totals.NoCert)),
	)

	var b strings.Builder
	b.WriteString(titleStyle.Render(report.Title))
	b.WriteString("\n")

	course := "all courses"
	if report.Filtered() {
		course = report.CourseID
		if report.CourseName != "" {
			course += " (" + report.CourseName + ")"
		}
	}
	b.WriteString(mutedStyle.Render("Course: " + course))
	b.WriteString("\n")
	if report.FileName != "" {
		b.WriteString(mutedStyle.Render("Source: " + report.FileName))
		b.WriteString("\n")
	}
	b.WriteString(t.Render())
	return b.String()
}
