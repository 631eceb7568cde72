package bulkimport

import (
	"fmt"
	"io"
	"strings"

	bulkimporterrors "aisg-audit/internal/bulkimport/errors"

	"github.com/xuri/excelize/v2"
)

const (
	ColEmployeeCode = "employee_code"
	ColName         = "nama"
	ColPosition     = "posisi"
	ColManagerCode  = "atasan_code"
	ColBirthDate    = "tgl_lahir"
	ColMargin       = "margin"
	ColNA           = "na"
	ColEmail        = "email"
)

var requiredColumns = []string{ColEmployeeCode, ColName, ColPosition}

// ReadWorkbook membaca sheet pertama. Baris pertama adalah header; kolom
// dikenali dari namanya sehingga urutan kolom bebas. Baris kosong dilewati.
func ReadWorkbook(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, bulkimporterrors.ErrInvalidWorkbook
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, bulkimporterrors.ErrEmptyWorkbook
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, bulkimporterrors.ErrInvalidWorkbook
	}
	if len(raw) < 2 {
		return nil, bulkimporterrors.ErrEmptyWorkbook
	}

	index := make(map[string]int, len(raw[0]))
	for i, h := range raw[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, bulkimporterrors.ErrMissingColumns.
			WithMessage(fmt.Sprintf("The workbook is missing required columns %v", missing)).
			WithDetails(map[string]any{"missing_columns": missing})
	}

	cell := func(cells []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}

	rows := make([]Row, 0, len(raw)-1)
	for i, cells := range raw[1:] {
		if isBlank(cells) {
			continue
		}
		rows = append(rows, Row{
			// nomor baris mengikuti tampilan spreadsheet (header = 1)
			RowNumber:    i + 2,
			EmployeeCode: cell(cells, ColEmployeeCode),
			Name:         cell(cells, ColName),
			Position:     cell(cells, ColPosition),
			ManagerCode:  cell(cells, ColManagerCode),
			BirthDate:    cell(cells, ColBirthDate),
			Margin:       cell(cells, ColMargin),
			NA:           cell(cells, ColNA),
			Email:        cell(cells, ColEmail),
		})
	}
	if len(rows) == 0 {
		return nil, bulkimporterrors.ErrEmptyWorkbook
	}
	return rows, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
