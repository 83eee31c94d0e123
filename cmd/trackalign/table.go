package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one table column. Numeric columns are right aligned.
type column struct {
	title   string
	numeric bool
}

func columns(titles ...string) []column {
	out := make([]column, len(titles))
	for i, title := range titles {
		out[i] = column{title: title}
	}
	return out
}

// numeric marks the named columns as right aligned.
func numeric(cols []column, titles ...string) []column {
	for i := range cols {
		for _, title := range titles {
			if cols[i].title == title {
				cols[i].numeric = true
			}
		}
	}
	return cols
}

// renderTable renders rows in the rounded style. Short rows are padded;
// a non-empty footer is placed under the last column pair.
func renderTable(cols []column, rows [][]string, footer ...string) string {
	if len(cols) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(padRow(nil, len(cols), func(i int) any { return cols[i].title }))
	for _, row := range rows {
		tw.AppendRow(padRow(row, len(cols), nil))
	}
	if len(footer) > 0 {
		tw.AppendFooter(padRow(footer, len(cols), nil))
		tw.Style().Format.Footer = text.FormatDefault
	}

	configs := make([]table.ColumnConfig, len(cols))
	for i, col := range cols {
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignFooter: align, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func padRow(values []string, width int, fill func(int) any) table.Row {
	row := make(table.Row, width)
	for i := range row {
		switch {
		case fill != nil:
			row[i] = fill(i)
		case i < len(values):
			row[i] = values[i]
		default:
			row[i] = ""
		}
	}
	return row
}
