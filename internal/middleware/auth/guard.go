package auth

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avasilyev/pokedex-api/internal/httperr"
	"github.com/avasilyev/pokedex-api/internal/models"
	"github.com/avasilyev/pokedex-api/internal/repo"
	"github.com/avasilyev/pokedex-api/internal/token"
)

const (
	BearerPrefix  = "Bearer "
	RefreshPrefix = "Refresh "
)

// Guard gates requests at two capability levels. Every request is classified
// independently: there is no per-session state here beyond the user's stored
// access-token slot.
type Guard struct {
	Users  *repo.UserRepo
	Access *token.Signer
}

// authenticate runs the user-level checks: header present, Bearer scheme,
// valid signature and expiry, and the token must equal the current
// access-token slot of some user. The slot equality is what rejects an old
// but unexpired token after a newer login or refresh.
func (g *Guard) authenticate(c echo.Context) (*token.Claims, *models.User, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, nil, httperr.New(httperr.KindMissingToken, "no token: please provide the access token using the headers")
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return nil, nil, httperr.New(httperr.KindMalformedToken, "invalid token passed")
	}
	raw := strings.TrimPrefix(header, BearerPrefix)

	claims, err := g.Access.Verify(raw)
	if err != nil {
		return nil, nil, httperr.Wrap(httperr.KindInvalidOrExpiredToken, "invalid token verification, log in again", err)
	}

	user, err := g.Users.FindByAccessToken(c.Request().Context(), raw)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, httperr.New(httperr.KindSessionInvalidated, "invalid token verification, log in again")
		}
		return nil, nil, httperr.Wrap(httperr.KindUnclassified, "user lookup failed", err)
	}

	return claims, user, nil
}

func (g *Guard) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, user, err := g.authenticate(c)
		if err != nil {
			return err
		}
		c.Set("username", user.Username)
		c.Set("role", claims.Role)
		return next(c)
	}
}

func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, user, err := g.authenticate(c)
		if err != nil {
			return err
		}
		if claims.Role != "admin" {
			return httperr.New(httperr.KindForbidden, "access denied")
		}
		c.Set("username", user.Username)
		c.Set("role", claims.Role)
		return next(c)
	}
}
