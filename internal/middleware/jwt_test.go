package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/assettrack/assettrack/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret []byte, userID int, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestJWT_ValidToken(t *testing.T) {
	secret := []byte("test-secret")
	var gotID int
	var gotRole string

	handler := JWT(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserID(r.Context())
		gotRole, _ = GetRole(r.Context())
	}))

	req := httptest.NewRequest("GET", "/v1/items", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, secret, 7, models.RoleManager))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if gotID != 7 || gotRole != models.RoleManager {
		t.Errorf("context: id=%d role=%q", gotID, gotRole)
	}
}

func TestJWT_MissingHeader(t *testing.T) {
	handler := JWT([]byte("test-secret"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest("GET", "/v1/items", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestJWT_WrongSecret(t *testing.T) {
	handler := JWT([]byte("test-secret"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest("GET", "/v1/items", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, []byte("other-secret"), 7, models.RoleUser))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		role    string
		minimum string
		want    int
	}{
		{models.RoleAdmin, models.RoleManager, http.StatusOK},
		{models.RoleManager, models.RoleManager, http.StatusOK},
		{models.RoleUser, models.RoleManager, http.StatusForbidden},
		{models.RoleUser, models.RoleAdmin, http.StatusForbidden},
		{"", models.RoleUser, http.StatusForbidden},
	}

	for _, tt := range tests {
		handler := RequireRole(tt.minimum)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest("POST", "/v1/audits/1/close", nil)
		req = req.WithContext(WithUser(req.Context(), 1, tt.role))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != tt.want {
			t.Errorf("role %q minimum %q: got %d, want %d", tt.role, tt.minimum, rr.Code, tt.want)
		}
	}
}
