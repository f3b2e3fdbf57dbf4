package repo

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/assettrack/assettrack/internal/apperr"
	"github.com/assettrack/assettrack/internal/models"
	"github.com/lib/pq"
)

const itemColumns = `id, code, name, COALESCE(category,''), COALESCE(description,''),
	COALESCE(serial_number,''), purchase_date, purchase_price, COALESCE(photo_url,''),
	COALESCE(responsible_person,''), active, created_at, updated_at`

// ItemRepo persists items.
type ItemRepo struct {
	DB *sql.DB
}

func NewItemRepo(db *sql.DB) *ItemRepo {
	return &ItemRepo{DB: db}
}

// ItemInput carries the writable item fields.
type ItemInput struct {
	Code              string
	Name              string
	Category          string
	Description       string
	SerialNumber      string
	PurchaseDate      *time.Time
	PurchasePrice     *float64
	ResponsiblePerson string
}

func scanItem(row interface{ Scan(...any) error }) (models.Item, error) {
	var i models.Item
	err := row.Scan(&i.ID, &i.Code, &i.Name, &i.Category, &i.Description,
		&i.SerialNumber, &i.PurchaseDate, &i.PurchasePrice, &i.PhotoURL,
		&i.ResponsiblePerson, &i.Active, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

// Create inserts a new item. A duplicate code maps to apperr.ErrConflict.
func (r *ItemRepo) Create(ctx context.Context, in ItemInput) (models.Item, error) {
	row := r.DB.QueryRowContext(ctx,
		`INSERT INTO items (code, name, category, description, serial_number,
			purchase_date, purchase_price, responsible_person)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+itemColumns,
		in.Code, in.Name, nullStr(in.Category), nullStr(in.Description),
		nullStr(in.SerialNumber), in.PurchaseDate, in.PurchasePrice,
		nullStr(in.ResponsiblePerson),
	)
	item, err := scanItem(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Item{}, apperr.Conflict("item code %q already exists", in.Code)
		}
		return models.Item{}, err
	}
	return item, nil
}

// Get returns the item with the given id regardless of its active flag.
func (r *ItemRepo) Get(ctx context.Context, id int) (models.Item, error) {
	item, err := scanItem(r.DB.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, apperr.NotFound("item %d", id)
	}
	return item, err
}

// GetByCode returns the item with the given code regardless of its active flag.
func (r *ItemRepo) GetByCode(ctx context.Context, code string) (models.Item, error) {
	item, err := scanItem(r.DB.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE code = $1`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, apperr.NotFound("item %q", code)
	}
	return item, err
}

// Update overwrites the writable fields of an item.
func (r *ItemRepo) Update(ctx context.Context, id int, in ItemInput) (models.Item, error) {
	row := r.DB.QueryRowContext(ctx,
		`UPDATE items SET code = $1, name = $2, category = $3, description = $4,
			serial_number = $5, purchase_date = $6, purchase_price = $7,
			responsible_person = $8, updated_at = NOW()
		 WHERE id = $9
		 RETURNING `+itemColumns,
		in.Code, in.Name, nullStr(in.Category), nullStr(in.Description),
		nullStr(in.SerialNumber), in.PurchaseDate, in.PurchasePrice,
		nullStr(in.ResponsiblePerson), id,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, apperr.NotFound("item %d", id)
	}
	if err != nil && isUniqueViolation(err) {
		return models.Item{}, apperr.Conflict("item code %q already exists", in.Code)
	}
	return item, err
}

// Deactivate soft-deletes an item. The row stays for history and reports.
func (r *ItemRepo) Deactivate(ctx context.Context, id int) (models.Item, error) {
	row := r.DB.QueryRowContext(ctx,
		`UPDATE items SET active = FALSE, updated_at = NOW() WHERE id = $1
		 RETURNING `+itemColumns, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, apperr.NotFound("item %d", id)
	}
	return item, err
}

// SetPhotoURL records the stored photo path for an item.
func (r *ItemRepo) SetPhotoURL(ctx context.Context, id int, url string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE items SET photo_url = $1, updated_at = NOW() WHERE id = $2`, url, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("item %d", id)
	}
	return nil
}

// List returns active items, optionally filtered by a search term
// (code, name or serial number, case-insensitive) and category.
func (r *ItemRepo) List(ctx context.Context, page, size int, search, category string) (models.Page[models.Item], error) {
	where := `active = TRUE`
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += ` AND (name ILIKE $1 OR code ILIKE $1 OR serial_number ILIKE $1)`
	}
	if category != "" {
		args = append(args, category)
		where += ` AND category = $` + itoa(len(args))
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE `+where, args...).Scan(&total); err != nil {
		return models.Page[models.Item]{}, err
	}

	args = append(args, size, (page-1)*size)
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE `+where+
			` ORDER BY id LIMIT $`+itoa(len(args)-1)+` OFFSET $`+itoa(len(args)),
		args...)
	if err != nil {
		return models.Page[models.Item]{}, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return models.Page[models.Item]{}, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return models.Page[models.Item]{}, err
	}
	return models.NewPage(items, total, page, size), nil
}

// ActiveSummaries returns all active items in code order, reduced to the
// fields the audit report needs.
func (r *ItemRepo) ActiveSummaries(ctx context.Context) ([]models.ItemSummary, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, code, name FROM items WHERE active = TRUE ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ItemSummary
	for rows.Next() {
		var s models.ItemSummary
		if err := rows.Scan(&s.ID, &s.Code, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SummariesByIDs returns id/code/name for the given items, keyed by id.
func (r *ItemRepo) SummariesByIDs(ctx context.Context, ids []int) (map[int]models.ItemSummary, error) {
	out := make(map[int]models.ItemSummary)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, code, name FROM items WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.ItemSummary
		if err := rows.Scan(&s.ID, &s.Code, &s.Name); err != nil {
			return nil, err
		}
		out[s.ID] = s
	}
	return out, rows.Err()
}

// CountActive returns the number of active items.
func (r *ItemRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE active = TRUE`).Scan(&n)
	return n, err
}

// All returns every item (active or not) in code order, for exports.
func (r *ItemRepo) All(ctx context.Context) ([]models.Item, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// isUniqueViolation reports whether err is Postgres error 23505.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
