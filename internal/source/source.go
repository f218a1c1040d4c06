// Package source reads agenda documents into ordered rows of named cells.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"agenda/internal/models"
)

// ReadError reports a source document that is missing, unreadable or unparsable.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("cannot read agenda source %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Document is the first sheet of an agenda file as plain cell text.
type Document struct {
	Path  string
	cells [][]string
}

// Row is one sheet row. Index is its 0-based position in the sheet.
type Row struct {
	Index int
	cells []string
}

// Cell returns the text under the named agenda column, or "" when the row is short.
func (r Row) Cell(column string) string {
	for i, c := range models.SourceColumns {
		if c == column {
			if i < len(r.cells) {
				return r.cells[i]
			}
			return ""
		}
	}
	return ""
}

// NewRow builds a row from cells in models.SourceColumns order.
func NewRow(index int, cells ...string) Row {
	return Row{Index: index, cells: cells}
}

// Open reads the document at path, choosing a decoder by file extension.
func Open(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	var cells [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		cells, err = readXLSX(path)
	case ".xls":
		cells, err = readXLS(path)
	case ".csv":
		cells, err = readCSV(path)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	return &Document{Path: path, cells: cells}, nil
}

func (d *Document) NumRows() int {
	return len(d.cells)
}

// Rows returns the rows from index start to the end of the sheet.
func (d *Document) Rows(start int) []Row {
	if start < 0 {
		start = 0
	}
	var rows []Row
	for i := start; i < len(d.cells); i++ {
		rows = append(rows, Row{Index: i, cells: d.cells[i]})
	}
	return rows
}
