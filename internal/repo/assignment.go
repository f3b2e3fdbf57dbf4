package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/assettrack/assettrack/internal/models"
	"github.com/lib/pq"
)

// AssignmentLog is the append-only relocation log. It deliberately exposes
// no update or delete operation; location history only ever grows.
type AssignmentLog struct {
	DB *sql.DB
}

func NewAssignmentLog(db *sql.DB) *AssignmentLog {
	return &AssignmentLog{DB: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx so log reads and
// appends can run inside the scan transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const assignmentColumns = `id, item_id, location_id, user_id, COALESCE(note,''), assigned_at`

func scanAssignment(row interface{ Scan(...any) error }) (models.Assignment, error) {
	var a models.Assignment
	err := row.Scan(&a.ID, &a.ItemID, &a.LocationID, &a.UserID, &a.Note, &a.AssignedAt)
	return a, err
}

// Append records a new assignment fact.
func (l *AssignmentLog) Append(ctx context.Context, itemID, locationID int, userID *int, note string) (models.Assignment, error) {
	return l.append(ctx, l.DB, itemID, locationID, userID, note)
}

// AppendTx records a new assignment fact inside an open transaction.
func (l *AssignmentLog) AppendTx(ctx context.Context, tx *sql.Tx, itemID, locationID int, userID *int, note string) (models.Assignment, error) {
	return l.append(ctx, tx, itemID, locationID, userID, note)
}

func (l *AssignmentLog) append(ctx context.Context, q querier, itemID, locationID int, userID *int, note string) (models.Assignment, error) {
	row := q.QueryRowContext(ctx,
		`INSERT INTO assignments (item_id, location_id, user_id, note)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+assignmentColumns,
		itemID, locationID, userID, nullStr(note))
	return scanAssignment(row)
}

// History returns the full relocation history of an item, oldest first.
func (l *AssignmentLog) History(ctx context.Context, itemID int) ([]models.Assignment, error) {
	rows, err := l.DB.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE item_id = $1 ORDER BY assigned_at, id`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Current returns the latest assignment for an item, or nil when the item
// was never assigned. Equal timestamps resolve to the highest id so the
// result is deterministic.
func (l *AssignmentLog) Current(ctx context.Context, itemID int) (*models.Assignment, error) {
	return l.current(ctx, l.DB, itemID)
}

// CurrentTx is Current inside an open transaction.
func (l *AssignmentLog) CurrentTx(ctx context.Context, tx *sql.Tx, itemID int) (*models.Assignment, error) {
	return l.current(ctx, tx, itemID)
}

func (l *AssignmentLog) current(ctx context.Context, q querier, itemID int) (*models.Assignment, error) {
	a, err := scanAssignment(q.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE item_id = $1 ORDER BY assigned_at DESC, id DESC LIMIT 1`, itemID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CurrentLoc is an item's present location, denormalized for exports.
type CurrentLoc struct {
	LocationCode string
	LocationName string
}

// CurrentLocations returns the latest assignment's location per item,
// for every item that has ever been assigned.
func (l *AssignmentLog) CurrentLocations(ctx context.Context) (map[int]CurrentLoc, error) {
	rows, err := l.DB.QueryContext(ctx,
		`SELECT sub.item_id, loc.code, loc.name
		 FROM (
			SELECT DISTINCT ON (item_id) item_id, location_id
			FROM assignments
			ORDER BY item_id, assigned_at DESC, id DESC
		 ) sub
		 JOIN locations loc ON loc.id = sub.location_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]CurrentLoc)
	for rows.Next() {
		var itemID int
		var c CurrentLoc
		if err := rows.Scan(&itemID, &c.LocationCode, &c.LocationName); err != nil {
			return nil, err
		}
		out[itemID] = c
	}
	return out, rows.Err()
}

// HistoryRow is one denormalized relocation log entry for exports.
type HistoryRow struct {
	ItemCode     string
	ItemName     string
	LocationCode string
	LocationName string
	AssignedAt   time.Time
}

// FullHistory returns the whole relocation log oldest first, joined with
// item and location names.
func (l *AssignmentLog) FullHistory(ctx context.Context) ([]HistoryRow, error) {
	rows, err := l.DB.QueryContext(ctx,
		`SELECT i.code, i.name, loc.code, loc.name, a.assigned_at
		 FROM assignments a
		 JOIN items i ON i.id = a.item_id
		 JOIN locations loc ON loc.id = a.location_id
		 ORDER BY a.assigned_at, a.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var h HistoryRow
		if err := rows.Scan(&h.ItemCode, &h.ItemName, &h.LocationCode, &h.LocationName, &h.AssignedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// PriorLocation is the location an item was recorded at before a cutoff.
type PriorLocation struct {
	LocationID   int
	LocationName string
}

// LocationsBefore returns, for each given item, the location of its latest
// assignment strictly before the cutoff. Items with no assignment before
// the cutoff are absent from the map.
func (l *AssignmentLog) LocationsBefore(ctx context.Context, itemIDs []int, cutoff time.Time) (map[int]PriorLocation, error) {
	out := make(map[int]PriorLocation)
	if len(itemIDs) == 0 {
		return out, nil
	}

	rows, err := l.DB.QueryContext(ctx,
		`SELECT sub.item_id, sub.location_id, loc.name
		 FROM (
			SELECT DISTINCT ON (item_id) item_id, location_id
			FROM assignments
			WHERE item_id = ANY($1) AND assigned_at < $2
			ORDER BY item_id, assigned_at DESC, id DESC
		 ) sub
		 JOIN locations loc ON loc.id = sub.location_id`,
		pq.Array(itemIDs), cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var itemID int
		var p PriorLocation
		if err := rows.Scan(&itemID, &p.LocationID, &p.LocationName); err != nil {
			return nil, err
		}
		out[itemID] = p
	}
	return out, rows.Err()
}
