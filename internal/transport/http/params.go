package http

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vitae-social/vitae-api/internal/pagination"
)

// window carries the span/after/before query triple shared by every list
// endpoint.
type window struct {
	span   int
	after  string
	before string
}

// parseWindow validates the span before any paginator runs; malformed span
// text is a 400, not a soft fail.
func parseWindow(c echo.Context) (window, error) {
	span, err := pagination.ParseSpan(strings.TrimSpace(c.QueryParam("span")))
	if err != nil {
		return window{}, err
	}
	return window{
		span:   span,
		after:  strings.TrimSpace(c.QueryParam("after")),
		before: strings.TrimSpace(c.QueryParam("before")),
	}, nil
}

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Param(name)))
}
