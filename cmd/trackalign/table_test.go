package main

import (
	"strings"
	"testing"
)

func TestRenderTablePadsAndAlignsNumericColumns(t *testing.T) {
	out := renderTable(
		numeric(columns("Name", "Count"), "Count"),
		[][]string{{"a", "5"}, {"bbbbb"}},
		"", "5",
	)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// top border, header, separator, two rows, separator, footer, bottom border
	if len(lines) != 8 {
		t.Fatalf("expected 8 lines, got %d:\n%s", len(lines), out)
	}
	requireContains(t, out, "NAME")
	requireContains(t, out, "│ a     │     5 │")
	requireContains(t, out, "│ bbbbb │       │")
}

func TestRenderTableWithoutColumns(t *testing.T) {
	if got := renderTable(nil, [][]string{{"x"}}); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}
