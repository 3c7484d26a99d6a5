package financial

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExport_Workbook(t *testing.T) {
	svc, repo, _ := newTestService()
	companyID := uuid.New()
	seedAppointmentRecord(repo, companyID, "30.00", day(2))
	addRecord(t, svc, companyID, TypeExpense, CategoryFixedCost, "12.50", day(3))

	data, err := svc.Export(context.Background(), companyID, RecordFilter{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{exportSheet}, f.GetSheetList())

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, TypeIncome, rows[1][1])
	assert.Equal(t, CategoryAppointment, rows[1][2])
	assert.Equal(t, TypeExpense, rows[2][1])

	balance, err := f.GetCellValue(exportSheet, "E7")
	require.NoError(t, err)
	assert.Equal(t, "17.50", balance)
}

func TestExport_Empty(t *testing.T) {
	svc, _, _ := newTestService()

	data, err := svc.Export(context.Background(), uuid.New(), RecordFilter{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(exportSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", header)
}

func TestExport_InvalidFilter(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Export(context.Background(), uuid.New(), RecordFilter{Category: "bogus"})
	assert.Error(t, err)
}
