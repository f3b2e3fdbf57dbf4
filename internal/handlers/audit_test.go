package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/assettrack/assettrack/internal/audit"
	"github.com/assettrack/assettrack/internal/middleware"
	"github.com/assettrack/assettrack/internal/models"
	"github.com/assettrack/assettrack/internal/repo"
	"github.com/go-chi/chi/v5"
)

// requestWithChiURLParams returns a request with chi route context and URL params set.
func requestWithChiURLParams(method, path string, body []byte, params map[string]string) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	return r
}

func newAuditHandler(t *testing.T) (*AuditHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	engine := audit.NewEngine(db, repo.NewItemRepo(db), repo.NewAuditRepo(db), repo.NewAssignmentLog(db))
	return &AuditHandler{Engine: engine}, mock
}

var handlerAuditCols = []string{"id", "name", "status", "started_at", "closed_at", "created_by", "closed_by"}

func TestAuditHandler_CreateAudit(t *testing.T) {
	h, mock := newAuditHandler(t)

	mock.ExpectQuery(`INSERT INTO audits`).
		WithArgs("Q3 count", 1).
		WillReturnRows(sqlmock.NewRows(handlerAuditCols).
			AddRow(7, "Q3 count", "open", time.Now(), nil, 1, nil))

	body, _ := json.Marshal(map[string]string{"name": "Q3 count"})
	req := httptest.NewRequest("POST", "/v1/audits", bytes.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), 1, models.RoleUser))
	rr := httptest.NewRecorder()
	h.CreateAudit(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("CreateAudit status: got %d, want 201: %s", rr.Code, rr.Body.String())
	}
	var out models.Audit
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.ID != 7 || out.Status != models.AuditOpen {
		t.Errorf("unexpected audit: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuditHandler_CreateAudit_EmptyName(t *testing.T) {
	h, _ := newAuditHandler(t)

	body, _ := json.Marshal(map[string]string{"name": ""})
	req := httptest.NewRequest("POST", "/v1/audits", bytes.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), 1, models.RoleUser))
	rr := httptest.NewRecorder()
	h.CreateAudit(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("CreateAudit status: got %d, want 400", rr.Code)
	}
}

func TestAuditHandler_ScanItem(t *testing.T) {
	h, mock := newAuditHandler(t)

	now := time.Now()
	mock.ExpectQuery(`FROM audits WHERE id`).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(handlerAuditCols).
			AddRow(7, "Q3 count", "open", now, nil, 1, nil))
	mock.ExpectQuery(`FROM items WHERE code`).WithArgs("IT-001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "category", "description",
			"serial_number", "purchase_date", "purchase_price", "photo_url", "responsible_person",
			"active", "created_at", "updated_at"}).
			AddRow(1, "IT-001", "Laptop", "", "", "", nil, nil, "", "", true, now, now))
	mock.ExpectQuery(`FROM audit_scans`).WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "audit_id", "item_id", "location_id", "scanned_by", "scanned_at"}))

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM assignments`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "item_id", "location_id", "user_id", "note", "assigned_at"}))
	mock.ExpectQuery(`INSERT INTO audit_scans`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "audit_id", "item_id", "location_id", "scanned_by", "scanned_at"}).
			AddRow(20, 7, 1, nil, 4, now))
	mock.ExpectCommit()

	body, _ := json.Marshal(map[string]any{"item_code": "IT-001"})
	req := requestWithChiURLParams("POST", "/v1/audits/7/scan", body, map[string]string{"id": "7"})
	req = req.WithContext(middleware.WithUser(req.Context(), 4, models.RoleUser))
	rr := httptest.NewRecorder()
	h.ScanItem(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("ScanItem status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var out models.AuditScan
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.ID != 20 || out.ItemID != 1 {
		t.Errorf("unexpected scan: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuditHandler_ScanItem_ClosedAudit(t *testing.T) {
	h, mock := newAuditHandler(t)

	now := time.Now()
	mock.ExpectQuery(`FROM audits WHERE id`).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(handlerAuditCols).
			AddRow(7, "Q3 count", "closed", now.Add(-time.Hour), now, 1, 1))

	body, _ := json.Marshal(map[string]any{"item_id": 1})
	req := requestWithChiURLParams("POST", "/v1/audits/7/scan", body, map[string]string{"id": "7"})
	rr := httptest.NewRecorder()
	h.ScanItem(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("ScanItem status: got %d, want 400", rr.Code)
	}
}

func TestAuditHandler_CloseAudit_NotFound(t *testing.T) {
	h, mock := newAuditHandler(t)

	mock.ExpectQuery(`FROM audits WHERE id`).WithArgs(99).
		WillReturnRows(sqlmock.NewRows(handlerAuditCols))

	req := requestWithChiURLParams("POST", "/v1/audits/99/close", nil, map[string]string{"id": "99"})
	rr := httptest.NewRecorder()
	h.CloseAudit(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("CloseAudit status: got %d, want 404", rr.Code)
	}
}

func TestAuditHandler_GetReport(t *testing.T) {
	h, mock := newAuditHandler(t)

	started := time.Now().Add(-time.Hour)
	mock.ExpectQuery(`FROM audits WHERE id`).WithArgs(7).
		WillReturnRows(sqlmock.NewRows(handlerAuditCols).
			AddRow(7, "Q3 count", "open", started, nil, 1, nil))
	mock.ExpectQuery(`FROM audit_scans`).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "audit_id", "item_id", "location_id", "scanned_by", "scanned_at"}).
			AddRow(20, 7, 1, 2, nil, started.Add(time.Minute)))
	mock.ExpectQuery(`SELECT id, code, name FROM items WHERE active`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name"}).
			AddRow(1, "IT-001", "Laptop").
			AddRow(2, "IT-002", "Monitor"))
	mock.ExpectQuery(`JOIN locations loc`).
		WillReturnRows(sqlmock.NewRows([]string{"item_id", "location_id", "name"}))

	req := requestWithChiURLParams("GET", "/v1/audits/7/report", nil, map[string]string{"id": "7"})
	rr := httptest.NewRecorder()
	h.GetReport(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GetReport status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var out models.Report
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.ScannedCount != 1 || out.TotalItems != 2 || out.MissingCount != 1 {
		t.Errorf("unexpected report: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
