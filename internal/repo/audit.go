package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/assettrack/assettrack/internal/apperr"
	"github.com/assettrack/assettrack/internal/models"
)

const auditColumns = `id, name, status, started_at, closed_at, created_by, closed_by`
const scanColumns = `id, audit_id, item_id, location_id, scanned_by, scanned_at`

// AuditRepo persists audits and their scans.
type AuditRepo struct {
	DB *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{DB: db}
}

func scanAudit(row interface{ Scan(...any) error }) (models.Audit, error) {
	var a models.Audit
	err := row.Scan(&a.ID, &a.Name, &a.Status, &a.StartedAt, &a.ClosedAt, &a.CreatedBy, &a.ClosedBy)
	return a, err
}

func scanAuditScan(row interface{ Scan(...any) error }) (models.AuditScan, error) {
	var s models.AuditScan
	err := row.Scan(&s.ID, &s.AuditID, &s.ItemID, &s.LocationID, &s.ScannedBy, &s.ScannedAt)
	return s, err
}

// Create inserts a new open audit.
func (r *AuditRepo) Create(ctx context.Context, name string, createdBy int) (models.Audit, error) {
	return scanAudit(r.DB.QueryRowContext(ctx,
		`INSERT INTO audits (name, created_by) VALUES ($1, $2)
		 RETURNING `+auditColumns, name, createdBy))
}

// Get returns an audit by id.
func (r *AuditRepo) Get(ctx context.Context, id int) (models.Audit, error) {
	a, err := scanAudit(r.DB.QueryRowContext(ctx,
		`SELECT `+auditColumns+` FROM audits WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Audit{}, apperr.NotFound("audit %d", id)
	}
	return a, err
}

// List returns audits newest first, paginated.
func (r *AuditRepo) List(ctx context.Context, page, size int) (models.Page[models.Audit], error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM audits`).Scan(&total); err != nil {
		return models.Page[models.Audit]{}, err
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audits
		 ORDER BY started_at DESC, id DESC LIMIT $1 OFFSET $2`, size, (page-1)*size)
	if err != nil {
		return models.Page[models.Audit]{}, err
	}
	defer rows.Close()

	var audits []models.Audit
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return models.Page[models.Audit]{}, err
		}
		audits = append(audits, a)
	}
	if err := rows.Err(); err != nil {
		return models.Page[models.Audit]{}, err
	}
	return models.NewPage(audits, total, page, size), nil
}

// CountOpen returns the number of audits still open.
func (r *AuditRepo) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audits WHERE status = $1`, models.AuditOpen).Scan(&n)
	return n, err
}

// OpenAudits returns all open audits, oldest first.
func (r *AuditRepo) OpenAudits(ctx context.Context) ([]models.Audit, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audits WHERE status = $1 ORDER BY started_at, id`,
		models.AuditOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []models.Audit
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}

// Close flips an open audit to closed. The WHERE clause makes the
// transition atomic: a second close finds no open row and returns
// sql.ErrNoRows, which the caller maps to an invalid-state error.
func (r *AuditRepo) Close(ctx context.Context, id int, closedBy *int) (models.Audit, error) {
	return scanAudit(r.DB.QueryRowContext(ctx,
		`UPDATE audits SET status = $1, closed_at = NOW(), closed_by = $2
		 WHERE id = $3 AND status = $4
		 RETURNING `+auditColumns,
		models.AuditClosed, closedBy, id, models.AuditOpen))
}

// GetScan returns the scan for (audit, item), or nil when the item has not
// been scanned in this audit.
func (r *AuditRepo) GetScan(ctx context.Context, auditID, itemID int) (*models.AuditScan, error) {
	s, err := scanAuditScan(r.DB.QueryRowContext(ctx,
		`SELECT `+scanColumns+` FROM audit_scans
		 WHERE audit_id = $1 AND item_id = $2`, auditID, itemID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// InsertScanTx inserts a scan row inside an open transaction. A concurrent
// duplicate surfaces as a unique violation on uq_audit_item; the engine
// absorbs that and re-reads the existing row.
func (r *AuditRepo) InsertScanTx(ctx context.Context, tx *sql.Tx, auditID, itemID int, locationID, scannedBy *int) (models.AuditScan, error) {
	return scanAuditScan(tx.QueryRowContext(ctx,
		`INSERT INTO audit_scans (audit_id, item_id, location_id, scanned_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+scanColumns,
		auditID, itemID, locationID, scannedBy))
}

// Scans returns all scans of an audit in scan order.
func (r *AuditRepo) Scans(ctx context.Context, auditID int) ([]models.AuditScan, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+scanColumns+` FROM audit_scans
		 WHERE audit_id = $1 ORDER BY scanned_at, id`, auditID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []models.AuditScan
	for rows.Next() {
		s, err := scanAuditScan(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, s)
	}
	return scans, rows.Err()
}
