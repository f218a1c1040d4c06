package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"agenda/internal/models"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readXLS(path string) (cells [][]string, err error) {
	// The legacy decoder panics on some malformed workbooks.
	defer func() {
		if r := recover(); r != nil {
			cells, err = nil, fmt.Errorf("corrupt xls workbook: %v", r)
		}
	}()

	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("workbook has no sheets")
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			cells = append(cells, nil)
			continue
		}
		values := make([]string, len(models.SourceColumns))
		for c := range values {
			values[c] = row.Col(c)
		}
		cells = append(cells, values)
	}
	return cells, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
