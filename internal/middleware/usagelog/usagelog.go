package usagelog

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avasilyev/pokedex-api/internal/logging"
	"github.com/avasilyev/pokedex-api/internal/models"
	"github.com/avasilyev/pokedex-api/internal/repo"
	"github.com/avasilyev/pokedex-api/internal/token"
)

// Middleware appends one usage-log entry per inbound request before the
// handler runs, so the write completes before any response is sent. The
// identity is resolved best-effort from a Bearer token; requests without a
// decodable token are recorded with an empty username.
func Middleware(logs *repo.UsageLogRepo, access *token.Signer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username := ""
			if header := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
				if claims, err := access.Verify(strings.TrimPrefix(header, "Bearer ")); err == nil {
					username = claims.Username
				}
			}

			entry := models.UsageLog{
				Endpoint:  c.Request().URL.Path,
				Method:    c.Request().Method,
				Username:  username,
				CreatedAt: time.Now().UTC(),
			}
			if err := logs.Append(c.Request().Context(), &entry); err != nil {
				logging.FromContext(c.Request().Context()).Error("usage log append failed", "error", err)
			}

			return next(c)
		}
	}
}
