package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/assettrack/assettrack/internal/apperr"
	"github.com/assettrack/assettrack/internal/models"
)

const disposalColumns = `d.id, d.item_id, d.reason, d.disposed_at, d.disposed_by,
	COALESCE(d.note,''), COALESCE(d.document_ref,''), i.code, i.name`

// DisposalRepo persists disposal events. Disposing deactivates the item
// and appends the event in a single transaction.
type DisposalRepo struct {
	DB *sql.DB
}

func NewDisposalRepo(db *sql.DB) *DisposalRepo {
	return &DisposalRepo{DB: db}
}

// DisposalInput carries the writable disposal fields.
type DisposalInput struct {
	Reason      string
	DisposedAt  *time.Time
	Note        string
	DocumentRef string
}

func scanDisposal(row interface{ Scan(...any) error }) (models.Disposal, error) {
	var d models.Disposal
	err := row.Scan(&d.ID, &d.ItemID, &d.Reason, &d.DisposedAt, &d.DisposedBy,
		&d.Note, &d.DocumentRef, &d.ItemCode, &d.ItemName)
	return d, err
}

// Dispose permanently retires an item: flips it inactive and records the
// disposal event atomically. An unknown item maps to NotFound; an already
// inactive item maps to Conflict.
func (r *DisposalRepo) Dispose(ctx context.Context, itemID int, in DisposalInput, userID *int) (models.Disposal, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Disposal{}, err
	}
	defer tx.Rollback()

	d, err := disposeInTx(ctx, tx, itemID, in, userID)
	if err != nil {
		return models.Disposal{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Disposal{}, err
	}
	return d, nil
}

// BulkDispose retires several items in one transaction. Unknown or already
// inactive items are skipped and reported, not treated as failures.
func (r *DisposalRepo) BulkDispose(ctx context.Context, itemIDs []int, in DisposalInput, userID *int) (disposed []models.Disposal, skipped []int, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	for _, itemID := range itemIDs {
		d, err := disposeInTx(ctx, tx, itemID, in, userID)
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrConflict) {
			skipped = append(skipped, itemID)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		disposed = append(disposed, d)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return disposed, skipped, nil
}

func disposeInTx(ctx context.Context, tx *sql.Tx, itemID int, in DisposalInput, userID *int) (models.Disposal, error) {
	// Lock the item row so a concurrent disposal of the same item blocks
	// and then sees active = FALSE.
	var active bool
	err := tx.QueryRowContext(ctx,
		`SELECT active FROM items WHERE id = $1 FOR UPDATE`, itemID).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Disposal{}, apperr.NotFound("item %d", itemID)
	}
	if err != nil {
		return models.Disposal{}, err
	}
	if !active {
		return models.Disposal{}, apperr.Conflict("item %d is already disposed", itemID)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET active = FALSE, updated_at = NOW() WHERE id = $1`, itemID); err != nil {
		return models.Disposal{}, err
	}

	disposedAt := time.Now().UTC()
	if in.DisposedAt != nil {
		disposedAt = *in.DisposedAt
	}

	return scanDisposal(tx.QueryRowContext(ctx,
		`INSERT INTO disposals AS d (item_id, reason, disposed_at, disposed_by, note, document_ref)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING d.id, d.item_id, d.reason, d.disposed_at, d.disposed_by,
			COALESCE(d.note,''), COALESCE(d.document_ref,''),
			(SELECT code FROM items WHERE id = d.item_id),
			(SELECT name FROM items WHERE id = d.item_id)`,
		itemID, in.Reason, disposedAt, userID, nullStr(in.Note), nullStr(in.DocumentRef)))
}

// Get returns one disposal with denormalized item fields.
func (r *DisposalRepo) Get(ctx context.Context, id int) (models.Disposal, error) {
	d, err := scanDisposal(r.DB.QueryRowContext(ctx,
		`SELECT `+disposalColumns+`
		 FROM disposals d JOIN items i ON i.id = d.item_id
		 WHERE d.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Disposal{}, apperr.NotFound("disposal %d", id)
	}
	return d, err
}

// List returns disposals newest first, optionally filtered by year and reason.
func (r *DisposalRepo) List(ctx context.Context, page, size int, year *int, reason string) (models.Page[models.Disposal], error) {
	where := `TRUE`
	args := []any{}
	if year != nil {
		args = append(args, *year)
		where += ` AND EXTRACT(YEAR FROM d.disposed_at) = $1`
	}
	if reason != "" {
		args = append(args, reason)
		where += ` AND d.reason = $` + itoa(len(args))
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM disposals d WHERE `+where, args...).Scan(&total); err != nil {
		return models.Page[models.Disposal]{}, err
	}

	args = append(args, size, (page-1)*size)
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+disposalColumns+`
		 FROM disposals d JOIN items i ON i.id = d.item_id
		 WHERE `+where+`
		 ORDER BY d.disposed_at DESC, d.id DESC
		 LIMIT $`+itoa(len(args)-1)+` OFFSET $`+itoa(len(args)), args...)
	if err != nil {
		return models.Page[models.Disposal]{}, err
	}
	defer rows.Close()

	var out []models.Disposal
	for rows.Next() {
		d, err := scanDisposal(rows)
		if err != nil {
			return models.Page[models.Disposal]{}, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return models.Page[models.Disposal]{}, err
	}
	return models.NewPage(out, total, page, size), nil
}
