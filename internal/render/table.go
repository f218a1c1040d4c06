package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/go-wordwrap"
	"github.com/olekukonko/tablewriter"
)

// Table writes rows as a plain text table. Cells are word-wrapped to the width
// at the same index in widths; columns without a width are left unwrapped.
func Table(w io.Writer, columns []string, rows []map[string]interface{}, widths []int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetRowSeparator("-")
	table.SetTablePadding("  ")

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = Wrap(cellText(row[col]), widthAt(widths, i))
		}
		table.Append(cells)
	}
	table.Render()
}

// Wrap breaks text into lines of at most limit runes. Lines break between
// words where possible; longer words are split.
func Wrap(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	var lines []string
	for _, line := range strings.Split(wordwrap.WrapString(text, uint(limit)), "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			lines = append(lines, string(runes[:limit]))
			runes = runes[limit:]
		}
		lines = append(lines, string(runes))
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func widthAt(widths []int, i int) int {
	if i < len(widths) {
		return widths[i]
	}
	return 0
}

func cellText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
