package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/assettrack/assettrack/internal/apperr"
)

func TestReport(t *testing.T) {
	e, mock := newTestEngine(t)

	started := time.Now().Add(-2 * time.Hour)
	mock.ExpectQuery(`FROM audits WHERE id`).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(auditCols).
			AddRow(7, "Q3 count", "open", started, nil, 1, nil))

	// Items 1 and 2 were scanned; 1 was found at location 2, 2 with no
	// location supplied and none on record.
	mock.ExpectQuery(`FROM audit_scans`).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(scanCols).
			AddRow(20, 7, 1, 2, nil, started.Add(time.Minute)).
			AddRow(21, 7, 2, nil, nil, started.Add(2*time.Minute)))

	// Three items are active, so item 3 is missing.
	mock.ExpectQuery(`SELECT id, code, name FROM items WHERE active`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name"}).
			AddRow(1, "IT-001", "Laptop").
			AddRow(2, "IT-002", "Monitor").
			AddRow(3, "IT-003", "Dock"))

	// Before the audit item 1 was recorded at location 1, so its scan at
	// location 2 counts as a move. Item 2 has no pre-audit assignment.
	mock.ExpectQuery(`JOIN locations loc`).
		WillReturnRows(sqlmock.NewRows([]string{"item_id", "location_id", "name"}).
			AddRow(1, 1, "Warehouse A"))

	report, err := e.Report(context.Background(), 7)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	if report.ScannedCount != 2 || report.TotalItems != 3 || report.MissingCount != 1 {
		t.Errorf("counts: scanned=%d total=%d missing=%d",
			report.ScannedCount, report.TotalItems, report.MissingCount)
	}
	if len(report.MissingItems) != 1 || report.MissingItems[0].Code != "IT-003" {
		t.Errorf("missing items: %+v", report.MissingItems)
	}
	if report.MovedCount != 1 {
		t.Errorf("moved count: got %d, want 1", report.MovedCount)
	}

	if len(report.ScanDetails) != 2 {
		t.Fatalf("scan details: %+v", report.ScanDetails)
	}
	moved := report.ScanDetails[0]
	if !moved.WasMoved || moved.FromLocationName != "Warehouse A" {
		t.Errorf("item 1 should be flagged as moved from Warehouse A: %+v", moved)
	}
	if report.ScanDetails[1].WasMoved {
		t.Errorf("item 2 should not be flagged as moved: %+v", report.ScanDetails[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReport_EmptyAudit(t *testing.T) {
	e, mock := newTestEngine(t)

	mock.ExpectQuery(`FROM audits WHERE id`).WithArgs(8).WillReturnRows(openAuditRow(8))
	mock.ExpectQuery(`FROM audit_scans`).WithArgs(8).WillReturnRows(sqlmock.NewRows(scanCols))
	mock.ExpectQuery(`SELECT id, code, name FROM items WHERE active`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name"}).
			AddRow(1, "IT-001", "Laptop"))
	// LocationsBefore short-circuits on zero scanned items, no query.

	report, err := e.Report(context.Background(), 8)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.ScannedCount != 0 || report.MissingCount != 1 || report.MovedCount != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReport_UnknownAudit(t *testing.T) {
	e, mock := newTestEngine(t)

	mock.ExpectQuery(`FROM audits WHERE id`).WithArgs(99).
		WillReturnRows(sqlmock.NewRows(auditCols))

	_, err := e.Report(context.Background(), 99)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
