package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/chorewheel/internal/database"
	"github.com/dukerupert/chorewheel/internal/store"
)

func setupAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthHandler(
		store.NewUserStore(db),
		store.NewHouseholdStore(db),
		store.NewSessionStore(db),
		false,
		logger,
	)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	req := httptest.NewRequest("POST", "/", &buf)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterAndLoginWithPIN(t *testing.T) {
	h := setupAuthHandler(t)

	rec := postJSON(t, h.Register, map[string]string{
		"email": "Amy@Example.com",
		"name":  "Amy",
		"pin":   "1234",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	var reg struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reg.Token == "" {
		t.Error("register returned no session token")
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("register set no session cookie")
	}

	// Email comparison is case-insensitive and the PIN is enforced.
	rec = postJSON(t, h.Login, map[string]string{"email": "amy@example.com", "pin": "9999"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong PIN status = %d, want 401", rec.Code)
	}

	rec = postJSON(t, h.Login, map[string]string{"email": "amy@example.com", "pin": "1234"})
	if rec.Code != http.StatusOK {
		t.Errorf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := setupAuthHandler(t)

	rec := postJSON(t, h.Register, map[string]string{"email": "amy@example.com", "name": "Amy"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	rec = postJSON(t, h.Register, map[string]string{"email": "amy@example.com", "name": "Amy Again"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", rec.Code)
	}
}

func TestRegisterRejectsBadPIN(t *testing.T) {
	h := setupAuthHandler(t)

	rec := postJSON(t, h.Register, map[string]string{"email": "amy@example.com", "name": "Amy", "pin": "12"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("short PIN status = %d, want 400", rec.Code)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	h := setupAuthHandler(t)

	rec := postJSON(t, h.Login, map[string]string{"email": "nobody@example.com"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
