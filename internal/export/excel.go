// Package export renders inventory data as spreadsheets. It consumes
// already-computed structures (the item register, the audit Report) and
// never re-derives counts or diffs.
package export

import (
	"fmt"
	"time"

	"github.com/assettrack/assettrack/internal/models"
	"github.com/assettrack/assettrack/internal/repo"
	"github.com/xuri/excelize/v2"
)

const (
	itemsSheet   = "Items"
	historySheet = "Move history"
)

// Items builds the item-register workbook: one sheet with every item and
// its current location, one sheet with the full relocation history.
func Items(items []models.Item, current map[int]repo.CurrentLoc, history []repo.HistoryRow) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", itemsSheet)

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	headers := []string{"ID", "Code", "Name", "Category", "Serial number",
		"Responsible person", "Purchase date", "Price", "Location code", "Location name", "Active", "Created"}
	if err := writeHeader(f, itemsSheet, headers, headerStyle); err != nil {
		return nil, err
	}

	for i, item := range items {
		row := i + 2
		loc := current[item.ID]
		values := []any{
			item.ID, item.Code, item.Name, item.Category, item.SerialNumber,
			item.ResponsiblePerson, formatDate(item.PurchaseDate), priceOrNil(item.PurchasePrice),
			loc.LocationCode, loc.LocationName, yesNo(item.Active), item.CreatedAt.Format("2006-01-02"),
		}
		if err := writeRow(f, itemsSheet, row, values); err != nil {
			return nil, err
		}
	}
	f.SetColWidth(itemsSheet, "A", "A", 6)
	f.SetColWidth(itemsSheet, "B", "F", 22)
	f.SetColWidth(itemsSheet, "G", "L", 14)
	freezeHeader(f, itemsSheet)

	if _, err := f.NewSheet(historySheet); err != nil {
		return nil, err
	}
	histHeaders := []string{"Item code", "Item name", "Location code", "Location name", "Moved at"}
	if err := writeHeader(f, historySheet, histHeaders, headerStyle); err != nil {
		return nil, err
	}
	for i, h := range history {
		row := i + 2
		values := []any{h.ItemCode, h.ItemName, h.LocationCode, h.LocationName,
			h.AssignedAt.Format("2006-01-02 15:04")}
		if err := writeRow(f, historySheet, row, values); err != nil {
			return nil, err
		}
	}
	f.SetColWidth(historySheet, "A", "E", 20)
	freezeHeader(f, historySheet)

	return f, nil
}

// AuditReport builds the reconciliation workbook for one audit: a summary
// sheet, the scan list with move flags, and the missing items.
// itemNames and locationNames resolve the ids the Report carries.
func AuditReport(report models.Report, itemNames map[int]models.ItemSummary, locationNames map[int]string) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "Summary")

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	audit := report.Audit
	summary := [][2]any{
		{"Audit", audit.Name},
		{"Status", audit.Status},
		{"Started", audit.StartedAt.Format("2006-01-02 15:04")},
		{"Closed", formatTimePtr(audit.ClosedAt)},
		{"Scanned", report.ScannedCount},
		{"Expected items", report.TotalItems},
		{"Missing", report.MissingCount},
		{"Moved", report.MovedCount},
	}
	for i, kv := range summary {
		row := i + 1
		cell := fmt.Sprintf("A%d", row)
		if err := f.SetCellValue("Summary", cell, kv[0]); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle("Summary", cell, cell, headerStyle); err != nil {
			return nil, err
		}
		if err := f.SetCellValue("Summary", fmt.Sprintf("B%d", row), kv[1]); err != nil {
			return nil, err
		}
	}
	f.SetColWidth("Summary", "A", "B", 22)

	if _, err := f.NewSheet("Scans"); err != nil {
		return nil, err
	}
	scanHeaders := []string{"Item code", "Item name", "Location", "Scanned at", "Moved", "Moved from"}
	if err := writeHeader(f, "Scans", scanHeaders, headerStyle); err != nil {
		return nil, err
	}
	for i, detail := range report.ScanDetails {
		row := i + 2
		item := itemNames[detail.Scan.ItemID]
		locName := ""
		if detail.Scan.LocationID != nil {
			locName = locationNames[*detail.Scan.LocationID]
		}
		values := []any{item.Code, item.Name, locName,
			detail.Scan.ScannedAt.Format("2006-01-02 15:04"),
			yesNo(detail.WasMoved), detail.FromLocationName}
		if err := writeRow(f, "Scans", row, values); err != nil {
			return nil, err
		}
	}
	f.SetColWidth("Scans", "A", "F", 20)
	freezeHeader(f, "Scans")

	if _, err := f.NewSheet("Missing"); err != nil {
		return nil, err
	}
	if err := writeHeader(f, "Missing", []string{"Item code", "Item name"}, headerStyle); err != nil {
		return nil, err
	}
	for i, item := range report.MissingItems {
		if err := writeRow(f, "Missing", i+2, []any{item.Code, item.Name}); err != nil {
			return nil, err
		}
	}
	f.SetColWidth("Missing", "A", "B", 24)
	freezeHeader(f, "Missing")

	return f, nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func freezeHeader(f *excelize.File, sheet string) {
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func priceOrNil(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
