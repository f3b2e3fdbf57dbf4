package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/assettrack/assettrack/internal/apperr"
	"github.com/assettrack/assettrack/internal/models"
	"github.com/lib/pq"
)

const locationColumns = `id, code, name, COALESCE(building,''), COALESCE(floor,''),
	COALESCE(description,''), active, created_at, updated_at`

// LocationRepo persists locations.
type LocationRepo struct {
	DB *sql.DB
}

func NewLocationRepo(db *sql.DB) *LocationRepo {
	return &LocationRepo{DB: db}
}

// LocationInput carries the writable location fields.
type LocationInput struct {
	Code        string
	Name        string
	Building    string
	Floor       string
	Description string
}

func scanLocation(row interface{ Scan(...any) error }) (models.Location, error) {
	var l models.Location
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.Building, &l.Floor,
		&l.Description, &l.Active, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// Create inserts a new location. A duplicate code maps to apperr.ErrConflict.
func (r *LocationRepo) Create(ctx context.Context, in LocationInput) (models.Location, error) {
	row := r.DB.QueryRowContext(ctx,
		`INSERT INTO locations (code, name, building, floor, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+locationColumns,
		in.Code, in.Name, nullStr(in.Building), nullStr(in.Floor), nullStr(in.Description))
	loc, err := scanLocation(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Location{}, apperr.Conflict("location code %q already exists", in.Code)
		}
		return models.Location{}, err
	}
	return loc, nil
}

// Get returns the location with the given id regardless of its active flag.
func (r *LocationRepo) Get(ctx context.Context, id int) (models.Location, error) {
	loc, err := scanLocation(r.DB.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Location{}, apperr.NotFound("location %d", id)
	}
	return loc, err
}

// Update overwrites the writable fields of a location.
func (r *LocationRepo) Update(ctx context.Context, id int, in LocationInput) (models.Location, error) {
	row := r.DB.QueryRowContext(ctx,
		`UPDATE locations SET code = $1, name = $2, building = $3, floor = $4,
			description = $5, updated_at = NOW()
		 WHERE id = $6
		 RETURNING `+locationColumns,
		in.Code, in.Name, nullStr(in.Building), nullStr(in.Floor), nullStr(in.Description), id)
	loc, err := scanLocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Location{}, apperr.NotFound("location %d", id)
	}
	if err != nil && isUniqueViolation(err) {
		return models.Location{}, apperr.Conflict("location code %q already exists", in.Code)
	}
	return loc, err
}

// Deactivate soft-deletes a location.
func (r *LocationRepo) Deactivate(ctx context.Context, id int) (models.Location, error) {
	row := r.DB.QueryRowContext(ctx,
		`UPDATE locations SET active = FALSE, updated_at = NOW() WHERE id = $1
		 RETURNING `+locationColumns, id)
	loc, err := scanLocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Location{}, apperr.NotFound("location %d", id)
	}
	return loc, err
}

// List returns active locations, paginated.
func (r *LocationRepo) List(ctx context.Context, page, size int) (models.Page[models.Location], error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM locations WHERE active = TRUE`).Scan(&total); err != nil {
		return models.Page[models.Location]{}, err
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE active = TRUE
		 ORDER BY id LIMIT $1 OFFSET $2`, size, (page-1)*size)
	if err != nil {
		return models.Page[models.Location]{}, err
	}
	defer rows.Close()

	var locs []models.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return models.Page[models.Location]{}, err
		}
		locs = append(locs, loc)
	}
	if err := rows.Err(); err != nil {
		return models.Page[models.Location]{}, err
	}
	return models.NewPage(locs, total, page, size), nil
}

// ItemsAt returns the active items whose latest assignment points at the
// given location. Ties on assigned_at are broken by the highest id.
func (r *LocationRepo) ItemsAt(ctx context.Context, locationID int) ([]models.Item, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+prefixedItemColumns("i")+`
		 FROM items i
		 JOIN (
			SELECT DISTINCT ON (item_id) item_id, location_id
			FROM assignments
			ORDER BY item_id, assigned_at DESC, id DESC
		 ) cur ON cur.item_id = i.id
		 WHERE cur.location_id = $1 AND i.active = TRUE
		 ORDER BY i.code`, locationID)
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

// NamesByIDs returns location names keyed by id.
func (r *LocationRepo) NamesByIDs(ctx context.Context, ids []int) (map[int]string, error) {
	out := make(map[int]string)
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name FROM locations WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

// prefixedItemColumns qualifies the item column list with a table alias.
func prefixedItemColumns(alias string) string {
	return alias + `.id, ` + alias + `.code, ` + alias + `.name, COALESCE(` + alias + `.category,''), COALESCE(` + alias + `.description,''),
	COALESCE(` + alias + `.serial_number,''), ` + alias + `.purchase_date, ` + alias + `.purchase_price, COALESCE(` + alias + `.photo_url,''),
	COALESCE(` + alias + `.responsible_person,''), ` + alias + `.active, ` + alias + `.created_at, ` + alias + `.updated_at`
}
