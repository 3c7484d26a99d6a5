package financial

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/beautydesk/beautydesk/pkg/money"
)

// XLSXContentType is the media type of exported workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const exportSheet = "Financial Records"

var exportHeader = []string{"Date", "Type", "Category", "Description", "Value", "Appointment"}

// Export renders every record matching f as an XLSX workbook. A totals
// block under the rows repeats the income and expense sums.
func (s *Service) Export(ctx context.Context, companyID uuid.UUID, f RecordFilter) ([]byte, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	records, err := s.records.ListAll(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	return renderWorkbook(records)
}

func renderWorkbook(records []*Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	// Built-in number format 2 is "0.00".
	valueStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, fmt.Errorf("create value style: %w", err)
	}

	for i, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	f.SetCellStyle(exportSheet, "A1", last, headerStyle)

	var income, expense []money.Amount
	row := 2
	for _, r := range records {
		appt := ""
		if r.AppointmentID != nil {
			appt = r.AppointmentID.String()
		}
		values := []interface{}{r.Date.Format("2006-01-02 15:04"), r.Type, r.Category, r.Description, r.Value.Float64(), appt}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(exportSheet, cell, v)
		}
		if r.Type == TypeIncome {
			income = append(income, r.Value)
		} else {
			expense = append(expense, r.Value)
		}
		row++
	}
	if row > 2 {
		f.SetCellStyle(exportSheet, "E2", fmt.Sprintf("E%d", row-1), valueStyle)
	}

	row++
	totalIncome, totalExpense := money.Sum(income...), money.Sum(expense...)
	for _, t := range []struct {
		label string
		value money.Amount
	}{
		{"Income", totalIncome},
		{"Expense", totalExpense},
		{"Balance", totalIncome - totalExpense},
	} {
		f.SetCellValue(exportSheet, fmt.Sprintf("D%d", row), t.label)
		f.SetCellValue(exportSheet, fmt.Sprintf("E%d", row), t.value.Float64())
		f.SetCellStyle(exportSheet, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), headerStyle)
		f.SetCellStyle(exportSheet, fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), valueStyle)
		row++
	}

	f.SetColWidth(exportSheet, "A", "A", 18)
	f.SetColWidth(exportSheet, "D", "D", 40)
	f.SetColWidth(exportSheet, "F", "F", 38)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
