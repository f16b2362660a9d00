package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avasilyev/pokedex-api/internal/events"
	"github.com/avasilyev/pokedex-api/internal/hash"
	"github.com/avasilyev/pokedex-api/internal/httperr"
	"github.com/avasilyev/pokedex-api/internal/logging"
	"github.com/avasilyev/pokedex-api/internal/models"
	"github.com/avasilyev/pokedex-api/internal/repo"
	"github.com/avasilyev/pokedex-api/internal/token"
)

const (
	bearerPrefix  = "Bearer "
	refreshPrefix = "Refresh "
)

type AuthHandler struct {
	Users    *repo.UserRepo
	Access   *token.Signer
	Refresh  *token.Signer
	Registry *token.Registry
	Producer *events.Producer
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.Publish(ctx, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.Wrap(httperr.KindValidationError, "invalid request body", err)
	}
	if req.Username == "" || req.Password == "" {
		return httperr.New(httperr.KindValidationError, "username and password are required")
	}

	if _, err := h.Users.FindByUsername(c.Request().Context(), req.Username); err == nil {
		return httperr.New(httperr.KindDuplicateRecord, "user already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return httperr.Wrap(httperr.KindUnclassified, "user lookup failed", err)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return httperr.Wrap(httperr.KindUnclassified, "cannot hash the password", err)
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: pwHash,
		Role:         "user",
		Email:        req.Email,
	}
	if err := h.Users.Create(c.Request().Context(), &user); err != nil {
		return httperr.Wrap(httperr.KindUnclassified, "cannot create user", err)
	}

	h.publish(c, user.Username, map[string]any{
		"type":     "user_registered",
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return httperr.Wrap(httperr.KindValidationError, "invalid request body", err)
	}

	user, err := h.Users.FindByUsername(c.Request().Context(), req.Username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return httperr.New(httperr.KindNotFound, "user not found")
		}
		return httperr.Wrap(httperr.KindUnclassified, "user lookup failed", err)
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return httperr.New(httperr.KindBadCredential, "password is incorrect")
	}

	accessToken, err := h.Access.Issue(user.Username, user.Email, user.Role)
	if err != nil {
		return httperr.Wrap(httperr.KindUnclassified, "cannot issue access token", err)
	}
	refreshToken, err := h.Refresh.Issue(user.Username, user.Email, user.Role)
	if err != nil {
		return httperr.Wrap(httperr.KindUnclassified, "cannot issue refresh token", err)
	}

	h.Registry.Add(refreshToken)

	if err := h.Users.UpdateAccessToken(c.Request().Context(), user.Username, accessToken); err != nil {
		return httperr.Wrap(httperr.KindUnclassified, "cannot store access token", err)
	}
	user.AccessToken = accessToken

	h.publish(c, user.Username, map[string]any{
		"type":     "user_logged_in",
		"username": user.Username,
	})

	c.Response().Header().Set(echo.HeaderAuthorization, bearerPrefix+accessToken+","+refreshPrefix+refreshToken)
	return c.JSON(http.StatusOK, user)
}

// RequestNewAccessToken mints a fresh access token from a registered refresh
// token. Registry membership is checked before the signature on purpose: a
// correctly signed token that was never issued here (or was revoked) must not
// pass.
func (h *AuthHandler) RequestNewAccessToken(c echo.Context) error {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return httperr.New(httperr.KindMissingToken, "no token: please provide a token")
	}
	if !strings.HasPrefix(header, refreshPrefix) {
		return httperr.New(httperr.KindMalformedToken, "invalid token: please provide a refresh token")
	}
	raw := strings.TrimPrefix(header, refreshPrefix)

	if !h.Registry.Contains(raw) {
		return httperr.New(httperr.KindRevokedToken, "invalid token: please provide a valid token")
	}

	claims, err := h.Refresh.Verify(raw)
	if err != nil {
		return httperr.Wrap(httperr.KindInvalidOrExpiredToken, "invalid token: please provide a valid token", err)
	}

	accessToken, err := h.Access.Issue(claims.Username, claims.Email, claims.Role)
	if err != nil {
		return httperr.Wrap(httperr.KindUnclassified, "cannot issue access token", err)
	}
	if err := h.Users.UpdateAccessToken(c.Request().Context(), claims.Username, accessToken); err != nil {
		return httperr.Wrap(httperr.KindUnclassified, "cannot store access token", err)
	}

	c.Response().Header().Set(echo.HeaderAuthorization, bearerPrefix+accessToken)
	return c.JSON(http.StatusOK, echo.Map{"message": "all good"})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return httperr.New(httperr.KindMissingToken, "no token: please provide a token")
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return httperr.New(httperr.KindMalformedToken, "invalid token: please provide an access token")
	}
	raw := strings.TrimPrefix(header, bearerPrefix)

	user, err := h.Users.FindByAccessToken(c.Request().Context(), raw)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return httperr.New(httperr.KindNotFound, "user not found")
		}
		return httperr.Wrap(httperr.KindUnclassified, "user lookup failed", err)
	}

	h.Registry.RevokeUser(user.Username)

	if err := h.Users.UpdateAccessToken(c.Request().Context(), user.Username, ""); err != nil {
		return httperr.Wrap(httperr.KindUnclassified, "cannot clear access token", err)
	}

	h.publish(c, user.Username, map[string]any{
		"type":     "user_logged_out",
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
