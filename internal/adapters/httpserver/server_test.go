package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phenrril/modaviva/internal/domain"
)

func TestWriteErr(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("producto: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("talle: %w", domain.ErrInvalidData), http.StatusBadRequest},
		{fmt.Errorf("outfit ajeno: %w", domain.ErrNotAllowed), http.StatusForbidden},
		{fmt.Errorf("ya existe: %w", domain.ErrDuplicate), http.StatusConflict},
		{fmt.Errorf("sin generador: %w", domain.ErrUnexpectedState), http.StatusInternalServerError},
		{errors.New("algo salió mal"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		writeErr(rec, c.err)
		if rec.Code != c.code {
			t.Errorf("writeErr(%v) = %d, want %d", c.err, rec.Code, c.code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
	}
}

func TestHealthz(t *testing.T) {
	h := New(Deps{Vocab: domain.DefaultVocabulary()})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestStoreRoutesRequireSession(t *testing.T) {
	h := New(Deps{Vocab: domain.DefaultVocabulary()})
	paths := []string{"/store/measurements", "/store/style-profile", "/store/virtual-try-on"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("GET %s without session = %d, want 403", path, rec.Code)
		}
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	h := New(Deps{Vocab: domain.DefaultVocabulary()})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("POST /api/admin/products without token = %d, want 401", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := New(Deps{Vocab: domain.DefaultVocabulary()})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want req-123", got)
	}
}
