// Package audit implements the audit reconciliation engine: the audit
// lifecycle state machine, the idempotent item-scan protocol with its
// auto-relocation side effect, and the reconciliation report.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/assettrack/assettrack/internal/apperr"
	"github.com/assettrack/assettrack/internal/metrics"
	"github.com/assettrack/assettrack/internal/models"
	"github.com/assettrack/assettrack/internal/repo"
	"github.com/lib/pq"
)

// Engine owns audits and scans. All storage goes through the repos; the
// scan path additionally opens its own transaction so the conditional
// relocation append and the scan insert commit as one unit.
type Engine struct {
	DB     *sql.DB
	Items  *repo.ItemRepo
	Audits *repo.AuditRepo
	Log    *repo.AssignmentLog
}

func NewEngine(db *sql.DB, items *repo.ItemRepo, audits *repo.AuditRepo, log *repo.AssignmentLog) *Engine {
	return &Engine{DB: db, Items: items, Audits: audits, Log: log}
}

// Create opens a new audit. Nothing prevents a second concurrently open
// audit; the workflow convention is that callers treat the most recently
// started open audit as "the" active one.
func (e *Engine) Create(ctx context.Context, name string, creatorID int) (models.Audit, error) {
	if name == "" {
		return models.Audit{}, apperr.Validation("name is required")
	}
	return e.Audits.Create(ctx, name, creatorID)
}

// Get returns one audit.
func (e *Engine) Get(ctx context.Context, id int) (models.Audit, error) {
	return e.Audits.Get(ctx, id)
}

// List returns audits newest first.
func (e *Engine) List(ctx context.Context, page, size int) (models.Page[models.Audit], error) {
	return e.Audits.List(ctx, page, size)
}

// ScanRequest identifies the scanned item by id or code (exactly one is
// required) and optionally the location it was found at.
type ScanRequest struct {
	ItemID     int
	ItemCode   string
	LocationID *int
	ActorID    *int
}

// Scan records that an item was seen during an open audit.
//
// Repeated scans of the same item within one audit are idempotent: the
// first scan wins and later calls return it unchanged, with no new scan
// row and no relocation. When a location is supplied that differs from
// the item's current location (latest assignment), the engine appends a
// relocation to the log before creating the scan; the scan then carries
// the new location. With no location supplied the scan records the last
// known location, or nil when the item was never assigned.
func (e *Engine) Scan(ctx context.Context, auditID int, req ScanRequest) (models.AuditScan, error) {
	audit, err := e.Audits.Get(ctx, auditID)
	if err != nil {
		return models.AuditScan{}, err
	}
	if audit.Status != models.AuditOpen {
		return models.AuditScan{}, apperr.InvalidState("audit %d is closed", auditID)
	}

	item, err := e.resolveItem(ctx, req)
	if err != nil {
		return models.AuditScan{}, err
	}

	// Fast path: already scanned in this audit.
	if existing, err := e.Audits.GetScan(ctx, auditID, item.ID); err != nil {
		return models.AuditScan{}, err
	} else if existing != nil {
		return *existing, nil
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.AuditScan{}, err
	}
	defer tx.Rollback()

	current, err := e.Log.CurrentTx(ctx, tx, item.ID)
	if err != nil {
		return models.AuditScan{}, err
	}

	// The scan records the supplied location when given, otherwise the
	// last known one.
	recorded := req.LocationID
	if recorded == nil && current != nil {
		locID := current.LocationID
		recorded = &locID
	}

	// Auto-relocation: the item was physically found somewhere other than
	// its last recorded place.
	if req.LocationID != nil && (current == nil || current.LocationID != *req.LocationID) {
		note := fmt.Sprintf("Automatic relocation during audit #%d", auditID)
		if _, err := e.Log.AppendTx(ctx, tx, item.ID, *req.LocationID, req.ActorID, note); err != nil {
			return models.AuditScan{}, err
		}
	}

	scan, err := e.Audits.InsertScanTx(ctx, tx, auditID, item.ID, recorded, req.ActorID)
	if err != nil {
		// A concurrent scan of the same item won the race on
		// uq_audit_item. Roll back our half-done transaction and return
		// the winner's row; the caller never sees the conflict.
		if isUniqueViolation(err) {
			tx.Rollback()
			existing, getErr := e.Audits.GetScan(ctx, auditID, item.ID)
			if getErr != nil {
				return models.AuditScan{}, getErr
			}
			if existing == nil {
				return models.AuditScan{}, fmt.Errorf("scan conflict for audit %d item %d but no row found", auditID, item.ID)
			}
			return *existing, nil
		}
		return models.AuditScan{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.AuditScan{}, err
	}

	metrics.IncAuditScans()
	return scan, nil
}

// Close transitions an open audit to closed. Closing is terminal and not
// idempotent: a second close fails with an invalid-state error and leaves
// closed_at and closed_by from the first close untouched.
func (e *Engine) Close(ctx context.Context, auditID int, actorID *int) (models.Audit, error) {
	audit, err := e.Audits.Get(ctx, auditID)
	if err != nil {
		return models.Audit{}, err
	}
	if audit.Status == models.AuditClosed {
		return models.Audit{}, apperr.InvalidState("audit %d is already closed", auditID)
	}

	closed, err := e.Audits.Close(ctx, auditID, actorID)
	if errors.Is(err, sql.ErrNoRows) {
		// Lost a race with another close between the read and the update.
		return models.Audit{}, apperr.InvalidState("audit %d is already closed", auditID)
	}
	if err != nil {
		return models.Audit{}, err
	}
	return closed, nil
}

func (e *Engine) resolveItem(ctx context.Context, req ScanRequest) (models.Item, error) {
	var (
		item models.Item
		err  error
	)
	switch {
	case req.ItemID != 0:
		item, err = e.Items.Get(ctx, req.ItemID)
	case req.ItemCode != "":
		item, err = e.Items.GetByCode(ctx, req.ItemCode)
	default:
		return models.Item{}, apperr.Validation("item_id or item_code is required")
	}
	if err != nil {
		return models.Item{}, err
	}
	if !item.Active {
		return models.Item{}, apperr.NotFound("item %q is inactive", item.Code)
	}
	return item, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
