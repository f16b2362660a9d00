package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avasilyev/pokedex-api/internal/events"
	"github.com/avasilyev/pokedex-api/internal/hash"
	"github.com/avasilyev/pokedex-api/internal/models"
	"github.com/avasilyev/pokedex-api/internal/repo"
	"github.com/avasilyev/pokedex-api/internal/token"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Pokemon{}, &models.UsageLog{}, &models.ErrorLog{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

type authEnv struct {
	E        *echo.Echo
	DB       *gorm.DB
	Users    *repo.UserRepo
	Access   *token.Signer
	Refresh  *token.Signer
	Registry *token.Registry
	Handler  *AuthHandler
}

func newAuthEnv(t *testing.T) *authEnv {
	db := initTestDB(t)
	users := &repo.UserRepo{DB: db}
	access := token.NewSigner([]byte("test-access-secret"), 24*time.Hour)
	refresh := token.NewSigner([]byte("test-refresh-secret"), 0)
	registry := token.NewRegistry(refresh)

	return &authEnv{
		E:        echo.New(),
		DB:       db,
		Users:    users,
		Access:   access,
		Refresh:  refresh,
		Registry: registry,
		Handler: &AuthHandler{
			Users:    users,
			Access:   access,
			Refresh:  refresh,
			Registry: registry,
			Producer: &events.Producer{},
		},
	}
}

func (env *authEnv) createUser(t *testing.T, username, password, role string) *models.User {
	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         role,
		Email:        username + "@example.com",
	}
	require.NoError(t, env.DB.Create(user).Error)
	return user
}

func jsonContext(e *echo.Echo, method, target string, payload any) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if payload != nil {
		body, _ := json.Marshal(payload)
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func authedContext(e *echo.Echo, method, target, authorization string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set(echo.HeaderAuthorization, authorization)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func (env *authEnv) login(t *testing.T, username, password string) (access, refresh string) {
	c, rec := jsonContext(env.E, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	require.NoError(t, env.Handler.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	header := rec.Header().Get(echo.HeaderAuthorization)
	require.NotEmpty(t, header)

	var bearer, refreshRaw string
	for _, part := range strings.Split(header, ",") {
		switch {
		case strings.HasPrefix(part, "Bearer "):
			bearer = strings.TrimPrefix(part, "Bearer ")
		case strings.HasPrefix(part, "Refresh "):
			refreshRaw = strings.TrimPrefix(part, "Refresh ")
		}
	}
	require.NotEmpty(t, bearer)
	require.NotEmpty(t, refreshRaw)
	return bearer, refreshRaw
}
