package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"movie2manual/internal/preflight"
)

const maxCellWidth = 60

// renderTable lays rows out under headers. Columns listed in numeric are
// right aligned; short rows are padded with empty cells.
func renderTable(title string, headers []string, rows [][]string, numeric ...int) string {
	if len(headers) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if title != "" {
		tw.SetTitle(title)
	}
	tw.AppendHeader(toRow(headers, len(headers)))
	for _, row := range rows {
		tw.AppendRow(toRow(row, len(headers)))
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range headers {
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft, WidthMax: maxCellWidth}
	}
	for _, col := range numeric {
		if col >= 0 && col < len(configs) {
			configs[col].Align = text.AlignRight
		}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func toRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

// renderChecks shows one row per preflight result. Optional failures are
// warnings; colours are only applied for terminals.
func renderChecks(results []preflight.Result, colorize bool) string {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		label, colors := checkStatus(result)
		if colorize {
			label = colors.Sprint(label)
		}
		rows = append(rows, []string{result.Name, label, result.Detail})
	}
	return renderTable("movie2manual readiness", []string{"Check", "Status", "Detail"}, rows)
}

func checkStatus(result preflight.Result) (string, text.Colors) {
	switch {
	case result.Passed:
		return "[OK]", text.Colors{text.FgGreen}
	case result.Optional:
		return "[WARN]", text.Colors{text.FgYellow}
	default:
		return "[ERROR]", text.Colors{text.FgRed, text.Bold}
	}
}
