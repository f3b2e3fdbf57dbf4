package importer

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/assettrack/assettrack/internal/repo"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	header := []any{"Code", "Name", "Category", "Serial", "Responsible", "Purchase date", "Price"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

var itemCols = []string{"id", "code", "name", "category", "description", "serial_number",
	"purchase_date", "purchase_price", "photo_url", "responsible_person", "active", "created_at", "updated_at"}

func TestItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	// First row inserts, second hits a duplicate code, third is missing a name.
	mock.ExpectQuery(`INSERT INTO items`).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(1, "IT-001", "Laptop", "electronics", "", "SN-1", nil, nil, "", "", true, now, now))
	mock.ExpectQuery(`INSERT INTO items`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "items_code_key"})

	buf := workbookBytes(t, [][]any{
		{"IT-001", "Laptop", "electronics", "SN-1", "", "2024-03-01", "999.50"},
		{"IT-002", "Monitor", "", "", "", "", ""},
		{"IT-003", "", "", "", "", "", ""},
	})

	res, err := Items(context.Background(), repo.NewItemRepo(db), buf)
	require.NoError(t, err)

	require.Equal(t, 1, res.Created)
	require.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], "row 4")
	require.Contains(t, res.Errors[0], "missing name")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestItems_BadDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	buf := workbookBytes(t, [][]any{
		{"IT-001", "Laptop", "", "", "", "03/01/2024", ""},
	})

	res, err := Items(context.Background(), repo.NewItemRepo(db), buf)
	require.NoError(t, err)
	require.Zero(t, res.Created)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], "bad purchase date")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestItems_NotAWorkbook(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = Items(context.Background(), repo.NewItemRepo(db), bytes.NewReader([]byte("not xlsx")))
	require.Error(t, err)
}

func TestItems_HeaderOnly(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	buf := workbookBytes(t, nil)
	_, err = Items(context.Background(), repo.NewItemRepo(db), buf)
	require.Error(t, err)
}
