package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/assettrack/assettrack/internal/apperr"
)

var disposalTestCols = []string{"id", "item_id", "reason", "disposed_at", "disposed_by",
	"note", "document_ref", "code", "name"}

func TestDisposalRepo_Dispose(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT active FROM items`).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"active"}).AddRow(true))
	mock.ExpectExec(`UPDATE items SET active`).WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO disposals`).
		WillReturnRows(sqlmock.NewRows(disposalTestCols).
			AddRow(1, 3, "sold", time.Now(), 2, "", "DOC-9", "IT-003", "Dock"))
	mock.ExpectCommit()

	user := 2
	r := NewDisposalRepo(db)
	d, err := r.Dispose(context.Background(), 3, DisposalInput{Reason: "sold", DocumentRef: "DOC-9"}, &user)
	if err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if d.ItemID != 3 || d.Reason != "sold" || d.ItemCode != "IT-003" {
		t.Errorf("unexpected disposal: %+v", d)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestDisposalRepo_Dispose_AlreadyInactive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT active FROM items`).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"active"}).AddRow(false))
	mock.ExpectRollback()

	r := NewDisposalRepo(db)
	_, err = r.Dispose(context.Background(), 3, DisposalInput{Reason: "sold"}, nil)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestDisposalRepo_Dispose_UnknownItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT active FROM items`).WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"active"}))
	mock.ExpectRollback()

	r := NewDisposalRepo(db)
	_, err = r.Dispose(context.Background(), 99, DisposalInput{Reason: "lost"}, nil)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDisposalRepo_BulkDispose_SkipsBadItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	// Item 1 disposes fine.
	mock.ExpectQuery(`SELECT active FROM items`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"active"}).AddRow(true))
	mock.ExpectExec(`UPDATE items SET active`).WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO disposals`).
		WillReturnRows(sqlmock.NewRows(disposalTestCols).
			AddRow(1, 1, "scrapped", time.Now(), nil, "", "", "IT-001", "Laptop"))
	// Item 2 is already inactive and gets skipped.
	mock.ExpectQuery(`SELECT active FROM items`).WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"active"}).AddRow(false))
	// Item 3 does not exist and gets skipped.
	mock.ExpectQuery(`SELECT active FROM items`).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"active"}))
	mock.ExpectCommit()

	r := NewDisposalRepo(db)
	disposed, skipped, err := r.BulkDispose(context.Background(), []int{1, 2, 3},
		DisposalInput{Reason: "scrapped"}, nil)
	if err != nil {
		t.Fatalf("BulkDispose: %v", err)
	}
	if len(disposed) != 1 || disposed[0].ItemID != 1 {
		t.Errorf("unexpected disposed: %+v", disposed)
	}
	if len(skipped) != 2 || skipped[0] != 2 || skipped[1] != 3 {
		t.Errorf("unexpected skipped: %+v", skipped)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
