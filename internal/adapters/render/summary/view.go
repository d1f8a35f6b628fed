// Package summary renders generate and reachable results for the terminal.
package summary

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/archivist/internal/application"
)

const (
	barWidth     = 24
	digestPrefix = 12
)

func Render(s application.ArtifactSummary) (string, error) {
	return run(func(st styles) string { return renderSummary(s, st) })
}

func RenderReachable(packageName string, rows []application.ReachableResource) (string, error) {
	return run(func(st styles) string { return renderReachable(packageName, rows, st) })
}

func renderSummary(summary application.ArtifactSummary, s styles) string {
	lines := []string{
		s.title.Render("Archived APK"),
		s.header.Render(fmt.Sprintf("package: %s (module %s)", summary.PackageName, summary.SourceModule)),
		s.section.Render(lipgloss.JoinVertical(lipgloss.Left,
			keptLine(summary.KeptEntries, summary.TotalEntries, s),
			fieldLine("store:", fmt.Sprintf("%s as %s", summary.StorePackageName, summary.InjectedResource), s),
			fieldLine("output:", summary.OutputDir, s),
		)),
	}

	if len(summary.Files) == 0 {
		lines = append(lines, s.empty.Render("No files written."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	files := []string{s.title.Render("Files")}
	for _, file := range summary.Files {
		files = append(files, fileLine(file, s))
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, files...)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderReachable(packageName string, rows []application.ReachableResource, s styles) string {
	lines := []string{
		s.title.Render("Reachable resources"),
		s.header.Render(fmt.Sprintf("package: %s, resources: %d", packageName, len(rows))),
	}

	if len(rows) == 0 {
		lines = append(lines, s.empty.Render("No resources reachable from the archived manifest."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	body := make([]string, 0, len(rows))
	for _, row := range rows {
		body = append(body, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.digest.Render(row.ID),
			" ",
			s.resource.Render(row.Name),
			" ",
			s.detail.Render(configsLabel(row.Configs)),
		))
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, body...)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func keptLine(kept, total int, s styles) string {
	label := s.label.Render("resources:")
	if total == 0 {
		return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", s.detail.Render("no resource table"))
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		label,
		" ",
		renderProgressBar(kept, total, barWidth, s),
		" ",
		s.detail.Render(fmt.Sprintf("%d of %d kept", kept, total)),
	)
}

func fieldLine(label, value string, s styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.label.Render(label), " ", s.detail.Render(value))
}

func fileLine(file application.SummaryFile, s styles) string {
	digest := file.Digest
	if len(digest) > digestPrefix {
		digest = digest[:digestPrefix]
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.resource.Render(file.Path),
		" ",
		s.detail.Render(formatSize(file.Size)),
		" ",
		s.digest.Render(digest),
	)
}

func configsLabel(n int) string {
	if n == 1 {
		return "(1 config)"
	}
	return fmt.Sprintf("(%d configs)", n)
}

func renderProgressBar(kept, total, width int, s styles) string {
	if width <= 0 || total <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * float64(kept) / float64(total)))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
