package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vitae-social/vitae-api/internal/domain"
	"github.com/vitae-social/vitae-api/internal/service"
	tokenpkg "github.com/vitae-social/vitae-api/internal/token"
	"github.com/vitae-social/vitae-api/internal/util"
)

const (
	contextUserKey  = "vitae.user"
	contextTokenKey = "vitae.token"
)

func RequireAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, util.Error("missing authorization header"))
			}
			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				// A failed account lookup is a backend fault, not a bad token.
				if errors.Is(err, tokenpkg.ErrLookupFailed) {
					return c.JSON(http.StatusInternalServerError, util.Error("unable to verify token"))
				}
				return c.JSON(http.StatusUnauthorized, util.Error("invalid or expired token"))
			}
			c.Set(contextUserKey, user)
			c.Set(contextTokenKey, token)
			return next(c)
		}
	}
}

// OptionalAuth resolves the viewer when a token is supplied, via the
// Authorization header or a `token` query parameter, and stays anonymous
// otherwise. List endpoints use it to personalize isLiked/isFollowing.
func OptionalAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				token = strings.TrimSpace(c.QueryParam("token"))
			}
			if token != "" {
				if user, err := auth.Authenticate(c.Request().Context(), token); err == nil {
					c.Set(contextUserKey, user)
					c.Set(contextTokenKey, token)
				}
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	header := strings.TrimSpace(c.Request().Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextUserKey).(*domain.User)
	return user, ok
}
