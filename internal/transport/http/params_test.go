package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vitae-social/vitae-api/internal/pagination"
)

func TestParseWindow(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/explore", nil)
	q := req.URL.Query()
	q.Set("span", " 5 ")
	q.Set("after", " abc ")
	q.Set("before", "")
	req.URL.RawQuery = q.Encode()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	win, err := parseWindow(c)
	if err != nil {
		t.Fatalf("parseWindow returned error: %v", err)
	}
	if win.span != 5 {
		t.Fatalf("expected span 5, got %d", win.span)
	}
	if win.after != "abc" {
		t.Fatalf("expected after 'abc', got %q", win.after)
	}
	if win.before != "" {
		t.Fatalf("expected empty before, got %q", win.before)
	}
}

func TestParseWindowDefaultsSpan(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/feed", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	win, err := parseWindow(c)
	if err != nil {
		t.Fatalf("parseWindow returned error: %v", err)
	}
	if win.span != pagination.DefaultSpan {
		t.Fatalf("expected default span %d, got %d", pagination.DefaultSpan, win.span)
	}
}

func TestParseWindowRejectsMalformedSpan(t *testing.T) {
	for _, spanText := range []string{"-1", "abc", "1.5", "+3"} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/feed?span="+spanText, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		_, err := parseWindow(c)
		if !errors.Is(err, pagination.ErrInvalidSpan) {
			t.Fatalf("span %q: expected ErrInvalidSpan, got %v", spanText, err)
		}
	}
}

func TestParseUUIDParam(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("user_id")
	c.SetParamValues(" 3e0185b7-1f07-4b5f-a9bf-2c0b64b12ee1 ")

	id, err := parseUUIDParam(c, "user_id")
	if err != nil {
		t.Fatalf("parseUUIDParam returned error: %v", err)
	}
	if id.String() != "3e0185b7-1f07-4b5f-a9bf-2c0b64b12ee1" {
		t.Fatalf("unexpected uuid %s", id)
	}

	c.SetParamValues("not-a-uuid")
	if _, err := parseUUIDParam(c, "user_id"); err == nil {
		t.Fatal("expected error for malformed uuid, got nil")
	}
}
