package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"roomdesk/internal/domains/booking/model"
)

const sheetName = "Bookings"

// XLSX renders bookings as a spreadsheet with a styled header row.
func XLSX(bookings []model.Booking) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := setRow(f, 1, header); err != nil {
		return nil, err
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve header range: %w", err)
	}

	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, booking := range bookings {
		if err := setRow(f, i+2, record(booking)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render spreadsheet: %w", err)
	}

	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, fields []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to resolve cell name: %w", err)
	}

	values := make([]any, len(fields))
	for i, field := range fields {
		values[i] = field
	}

	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}

	return nil
}
