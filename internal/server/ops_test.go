package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/playperu/spahost/internal/handler/health"
)

func TestHandleOpenAPI(t *testing.T) {
	h := handleOpenAPI()
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()

	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "application/json") {
		t.Fatalf("content-type = %q, want application/json", got)
	}

	body := rec.Body.String()
	for _, want := range []string{`"openapi"`, `"/api/"`, `"/api/{endpoint}"`, `"/{path}"`, `"/healthz"`, `"text/json"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %s", want)
		}
	}
}

func TestOpsHandler(t *testing.T) {
	h := NewOpsHandler(slog.Default(), map[string]health.Checker{
		"assets":    health.CheckerFunc(func(context.Context) error { return nil }),
		"frontdoor": health.CheckerFunc(func(context.Context) error { return errors.New("down") }),
	})

	tests := []struct {
		path     string
		wantCode int
		contains string
	}{
		{"/healthz", http.StatusServiceUnavailable, `"frontdoor"`},
		{"/openapi.json", http.StatusOK, `"/api/"`},
		{"/docs/", http.StatusOK, "openapi.json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}
