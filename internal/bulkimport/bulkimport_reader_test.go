package bulkimport_test

import (
	"bytes"
	"strings"
	"testing"

	"aisg-audit/internal/bulkimport"
	bulkimporterrors "aisg-audit/internal/bulkimport/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadWorkbook(t *testing.T) {
	t.Run("columns matched by header name", func(t *testing.T) {
		buf := workbook(t,
			[]interface{}{"NAMA", "employee_code", "posisi", "atasan_code", "margin", "na", "tgl_lahir", "email"},
			[]interface{}{"Budi", "E1", "BC", "M1", "1.250,75", "3", "1990-02-01", "budi@example.com"},
			[]interface{}{"", "", "", "", "", "", "", ""},
			[]interface{}{"Mira", "M1", "BsM", "", "2000", "", "", ""},
		)

		rows, err := bulkimport.ReadWorkbook(buf)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, bulkimport.Row{
			RowNumber:    2,
			EmployeeCode: "E1",
			Name:         "Budi",
			Position:     "BC",
			ManagerCode:  "M1",
			BirthDate:    "1990-02-01",
			Margin:       "1.250,75",
			NA:           "3",
			Email:        "budi@example.com",
		}, rows[0])
		assert.Equal(t, 4, rows[1].RowNumber)
		assert.Equal(t, "M1", rows[1].EmployeeCode)
	})

	t.Run("missing required column", func(t *testing.T) {
		buf := workbook(t,
			[]interface{}{"employee_code", "nama"},
			[]interface{}{"E1", "Budi"},
		)
		_, err := bulkimport.ReadWorkbook(buf)
		assert.ErrorIs(t, err, bulkimporterrors.ErrMissingColumns)
	})

	t.Run("header only", func(t *testing.T) {
		buf := workbook(t, []interface{}{"employee_code", "nama", "posisi"})
		_, err := bulkimport.ReadWorkbook(buf)
		assert.ErrorIs(t, err, bulkimporterrors.ErrEmptyWorkbook)
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := bulkimport.ReadWorkbook(strings.NewReader("employee_code,nama\nE1,Budi"))
		assert.ErrorIs(t, err, bulkimporterrors.ErrInvalidWorkbook)
	})
}
