package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func assertCORSHeaders(t *testing.T, h http.Header) {
	t.Helper()
	want := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, Authorization",
		"Access-Control-Max-Age":       "86400",
	}
	for k, v := range want {
		if got := h.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestCORS_AddsHeadersToResponses(t *testing.T) {
	e := echo.New()
	e.Pre(CORS())
	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	assertCORSHeaders(t, rec.Header())
}

func TestCORS_HeadersSurviveErrors(t *testing.T) {
	e := echo.New()
	e.Pre(CORS())
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "nope")
	})

	for _, path := range []string{"/boom", "/unknown"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code == http.StatusOK {
				t.Fatalf("status = %d, want an error status", rec.Code)
			}
			assertCORSHeaders(t, rec.Header())
		})
	}
}

func TestCORS_PreflightAnyPath(t *testing.T) {
	e := echo.New()
	e.Pre(CORS())
	called := false
	e.GET("/proxy", func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})

	for _, path := range []string{"/proxy", "/", "/nowhere/at/all"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, path, http.NoBody)
			req.Header.Set("Origin", "https://tool.example")
			req.Header.Set("Access-Control-Request-Method", "GET")
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if rec.Body.Len() != 0 {
				t.Errorf("body = %q, want empty", rec.Body.String())
			}
			assertCORSHeaders(t, rec.Header())
		})
	}

	if called {
		t.Error("preflight should not reach the route handler")
	}
}
