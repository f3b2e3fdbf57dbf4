package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/assettrack/assettrack/internal/models"
	"github.com/assettrack/assettrack/internal/repo"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func reopen(t *testing.T, f *excelize.File) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	out, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { out.Close() })
	return out
}

func TestItems(t *testing.T) {
	now := time.Now()
	items := []models.Item{
		{ID: 1, Code: "IT-001", Name: "Laptop", Active: true, CreatedAt: now},
		{ID: 2, Code: "IT-002", Name: "Monitor", Active: false, CreatedAt: now},
	}
	current := map[int]repo.CurrentLoc{
		1: {LocationCode: "WH-A", LocationName: "Warehouse A"},
	}
	history := []repo.HistoryRow{
		{ItemCode: "IT-001", ItemName: "Laptop", LocationCode: "WH-A", LocationName: "Warehouse A", AssignedAt: now},
	}

	f, err := Items(items, current, history)
	require.NoError(t, err)
	f = reopen(t, f)

	require.ElementsMatch(t, []string{"Items", "Move history"}, f.GetSheetList())

	code, err := f.GetCellValue("Items", "B2")
	require.NoError(t, err)
	require.Equal(t, "IT-001", code)

	locName, err := f.GetCellValue("Items", "J2")
	require.NoError(t, err)
	require.Equal(t, "Warehouse A", locName)

	// The inactive item has no current location and an empty cell.
	locName, err = f.GetCellValue("Items", "J3")
	require.NoError(t, err)
	require.Empty(t, locName)

	active, err := f.GetCellValue("Items", "K3")
	require.NoError(t, err)
	require.Equal(t, "no", active)

	histCode, err := f.GetCellValue("Move history", "A2")
	require.NoError(t, err)
	require.Equal(t, "IT-001", histCode)
}

func TestAuditReport(t *testing.T) {
	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	loc := 2
	report := models.Report{
		Audit:        models.Audit{ID: 7, Name: "Q1 count", Status: "open", StartedAt: started},
		ScannedCount: 1,
		TotalItems:   2,
		MissingCount: 1,
		MovedCount:   1,
		MissingItems: []models.ItemSummary{{ID: 2, Code: "IT-002", Name: "Monitor"}},
		Scans: []models.AuditScan{
			{ID: 20, AuditID: 7, ItemID: 1, LocationID: &loc, ScannedAt: started.Add(time.Minute)},
		},
		ScanDetails: []models.ScanDetail{
			{
				Scan:             models.AuditScan{ID: 20, AuditID: 7, ItemID: 1, LocationID: &loc, ScannedAt: started.Add(time.Minute)},
				WasMoved:         true,
				FromLocationName: "Warehouse A",
			},
		},
	}
	itemNames := map[int]models.ItemSummary{1: {ID: 1, Code: "IT-001", Name: "Laptop"}}
	locationNames := map[int]string{2: "Warehouse B"}

	f, err := AuditReport(report, itemNames, locationNames)
	require.NoError(t, err)
	f = reopen(t, f)

	require.ElementsMatch(t, []string{"Summary", "Scans", "Missing"}, f.GetSheetList())

	missing, err := f.GetCellValue("Summary", "B7")
	require.NoError(t, err)
	require.Equal(t, "1", missing)

	scanCode, err := f.GetCellValue("Scans", "A2")
	require.NoError(t, err)
	require.Equal(t, "IT-001", scanCode)

	scanLoc, err := f.GetCellValue("Scans", "C2")
	require.NoError(t, err)
	require.Equal(t, "Warehouse B", scanLoc)

	moved, err := f.GetCellValue("Scans", "E2")
	require.NoError(t, err)
	require.Equal(t, "yes", moved)

	from, err := f.GetCellValue("Scans", "F2")
	require.NoError(t, err)
	require.Equal(t, "Warehouse A", from)

	missingCode, err := f.GetCellValue("Missing", "A2")
	require.NoError(t, err)
	require.Equal(t, "IT-002", missingCode)
}
