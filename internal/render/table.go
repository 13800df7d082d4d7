package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/openclinic-tools/dhisync/internal/model"
)

const maxCellWidth = 40

// StyledText applies a lipgloss style to text when colors are enabled.
// When colors are disabled, it returns the plain text unchanged.
func StyledText(text string, style lipgloss.Style) string {
	if ColorsEnabled() {
		return style.Render(text)
	}
	return text
}

// truncate shortens a string to maxLen runes, appending an ellipsis if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// EmptyState renders a styled empty-state message with an optional contextual hint.
// When colors are enabled the message is rendered in dim gray and the hint is italic.
// When quiet is true the hint is suppressed.
func EmptyState(message, hint string, quiet bool) string {
	if !ColorsEnabled() {
		if quiet || hint == "" {
			return message
		}
		return message + "\n" + hint
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)

	result := dimStyle.Render(message)
	if !quiet && hint != "" {
		result += "\n" + hintStyle.Render(hint)
	}
	return result
}

// RenderRows renders query result rows as a formatted table. Column
// order follows the first row's select-list order; NULL cells render
// as an empty string.
func RenderRows(rows []*model.ResultRow) string {
	if len(rows) == 0 {
		return EmptyState("No rows returned.", "Try a wider date range with --start and --end.", false)
	}

	headers := rows[0].Columns()
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		r := make([]string, len(headers))
		for i, col := range headers {
			if c, ok := row.Lookup(col); ok {
				r[i] = truncate(c.Text(), maxCellWidth)
			}
		}
		cells = append(cells, r)
	}

	if !ColorsEnabled() {
		return renderPlainGrid(headers, cells)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("15"))
			}
			return s
		})

	return t.Render()
}

// RenderSyncLog renders ledger entries newest first with humanized ages.
func RenderSyncLog(entries []model.SyncLogEntry) string {
	if len(entries) == 0 {
		return EmptyState("No syncs recorded.", "Push a report with: dhisync sync", false)
	}

	headers := []string{"When", "Report", "Period", "Records", "Status"}
	cells := make([][]string, 0, len(entries))
	for _, e := range entries {
		cells = append(cells, []string{
			humanize.Time(e.Timestamp),
			e.ReportName,
			e.Period,
			strconv.Itoa(e.RecordCount),
			e.Status,
		})
	}

	if !ColorsEnabled() {
		return renderPlainGrid(headers, cells)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("15"))
			}
			if col == 4 && row >= 0 && row < len(entries) {
				if strings.EqualFold(entries[row].Status, "success") {
					return s.Foreground(lipgloss.Color("10"))
				}
				return s.Foreground(lipgloss.Color("11"))
			}
			return s
		})

	return t.Render()
}

// renderPlainGrid is the no-color fallback: fixed-width columns sized
// to the widest cell.
func renderPlainGrid(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && utf8.RuneCountInString(cell) > widths[i] {
				widths[i] = utf8.RuneCountInString(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[i], cell)
		}
		b.WriteString("\n")
	}

	writeRow(headers)
	total := 0
	for _, w := range widths {
		total += w + 2
	}
	b.WriteString(strings.Repeat("-", total))
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}
