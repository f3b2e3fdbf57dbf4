package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/assettrack/assettrack/internal/middleware"
	"github.com/assettrack/assettrack/internal/models"
	"github.com/assettrack/assettrack/internal/repo"
)

func newMoveHandler(t *testing.T) (*MoveHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &MoveHandler{
		Items:     repo.NewItemRepo(db),
		Locations: repo.NewLocationRepo(db),
		Log:       repo.NewAssignmentLog(db),
	}, mock
}

var (
	moveItemCols = []string{"id", "code", "name", "category", "description", "serial_number",
		"purchase_date", "purchase_price", "photo_url", "responsible_person", "active", "created_at", "updated_at"}
	moveLocCols = []string{"id", "code", "name", "building", "floor", "description", "active", "created_at", "updated_at"}
)

func TestMoveHandler_MoveItem(t *testing.T) {
	h, mock := newMoveHandler(t)

	now := time.Now()
	mock.ExpectQuery(`FROM items WHERE id`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows(moveItemCols).
			AddRow(1, "IT-001", "Laptop", "", "", "", nil, nil, "", "", true, now, now))
	mock.ExpectQuery(`FROM locations WHERE id`).WithArgs(5).
		WillReturnRows(sqlmock.NewRows(moveLocCols).
			AddRow(5, "WH-B", "Warehouse B", "", "", "", true, now, now))
	mock.ExpectQuery(`INSERT INTO assignments`).
		WithArgs(1, 5, 9, "rearranged").
		WillReturnRows(sqlmock.NewRows([]string{"id", "item_id", "location_id", "user_id", "note", "assigned_at"}).
			AddRow(30, 1, 5, 9, "rearranged", now))

	body, _ := json.Marshal(map[string]any{"location_id": 5, "note": "rearranged"})
	req := requestWithChiURLParams("POST", "/v1/items/1/move", body, map[string]string{"id": "1"})
	req = req.WithContext(middleware.WithUser(req.Context(), 9, models.RoleUser))
	rr := httptest.NewRecorder()
	h.MoveItem(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("MoveItem status: got %d, want 201: %s", rr.Code, rr.Body.String())
	}
	var out models.Assignment
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.ID != 30 || out.LocationID != 5 {
		t.Errorf("unexpected assignment: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestMoveHandler_MoveItem_InactiveLocation(t *testing.T) {
	h, mock := newMoveHandler(t)

	now := time.Now()
	mock.ExpectQuery(`FROM items WHERE id`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows(moveItemCols).
			AddRow(1, "IT-001", "Laptop", "", "", "", nil, nil, "", "", true, now, now))
	mock.ExpectQuery(`FROM locations WHERE id`).WithArgs(5).
		WillReturnRows(sqlmock.NewRows(moveLocCols).
			AddRow(5, "WH-B", "Warehouse B", "", "", "", false, now, now))

	body, _ := json.Marshal(map[string]any{"location_id": 5})
	req := requestWithChiURLParams("POST", "/v1/items/1/move", body, map[string]string{"id": "1"})
	rr := httptest.NewRecorder()
	h.MoveItem(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("MoveItem status: got %d, want 404", rr.Code)
	}
}

func TestMoveHandler_MoveItem_MissingLocationID(t *testing.T) {
	h, _ := newMoveHandler(t)

	body, _ := json.Marshal(map[string]any{"note": "no target"})
	req := requestWithChiURLParams("POST", "/v1/items/1/move", body, map[string]string{"id": "1"})
	rr := httptest.NewRecorder()
	h.MoveItem(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("MoveItem status: got %d, want 400", rr.Code)
	}
}
