package httpserver

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
	"github.com/avasilyev/pokedex-api/internal/handlers"
	"github.com/avasilyev/pokedex-api/internal/httperr"
	authmw "github.com/avasilyev/pokedex-api/internal/middleware/auth"
	"github.com/avasilyev/pokedex-api/internal/middleware/usagelog"
	"github.com/avasilyev/pokedex-api/internal/models"
	"github.com/avasilyev/pokedex-api/internal/repo"
	"github.com/avasilyev/pokedex-api/internal/token"
)

type serverEnv struct {
	E  *echo.Echo
	DB *gorm.DB
}

func newServerEnv(t *testing.T) *serverEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Pokemon{}, &models.UsageLog{}, &models.ErrorLog{}))

	users := &repo.UserRepo{DB: db}
	usageLogs := &repo.UsageLogRepo{DB: db}
	errorLogs := &repo.ErrorLogRepo{DB: db}

	access := token.NewSigner([]byte("test-access-secret"), 24*time.Hour)
	refresh := token.NewSigner([]byte("test-refresh-secret"), 0)
	registry := token.NewRegistry(refresh)
	producer := &events.Producer{}

	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler(errorLogs)

	Register(e, &Deps{
		AuthHandler: &handlers.AuthHandler{
			Users:    users,
			Access:   access,
			Refresh:  refresh,
			Registry: registry,
			Producer: producer,
		},
		PokemonHandler: &handlers.PokemonHandler{
			Pokemons: &repo.PokemonRepo{DB: db},
			Producer: producer,
		},
		ReportHandler: &handlers.ReportHandler{Usage: usageLogs, Errors: errorLogs},
		SearchHandler: &handlers.SearchHandler{},
		Guard:         &authmw.Guard{Users: users, Access: access},
		UsageLogger:   usagelog.Middleware(usageLogs, access),
	})

	return &serverEnv{E: e, DB: db}
}

func (env *serverEnv) do(method, target, authorization string, payload any) *httptest.ResponseRecorder {
	var req *http.Request
	if payload != nil {
		body, _ := json.Marshal(payload)
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func errType(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Err struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"err"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Err.Type
}

func TestEndToEndAuthFlow(t *testing.T) {
	env := newServerEnv(t)

	// Register alice.
	rec := env.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice",
		"password": "secret",
		"email":    "alice@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Login returns both tokens in the Authorization header.
	rec = env.do(http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	header := rec.Header().Get(echo.HeaderAuthorization)
	require.Contains(t, header, "Bearer ")
	require.Contains(t, header, "Refresh ")

	var accessToken string
	for _, part := range strings.Split(header, ",") {
		if strings.HasPrefix(part, "Bearer ") {
			accessToken = strings.TrimPrefix(part, "Bearer ")
		}
	}
	require.NotEmpty(t, accessToken)

	// User-level route works with the fresh token.
	rec = env.do(http.MethodGet, "/api/v1/pokemons", "Bearer "+accessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Admin-only route is forbidden for role=user.
	rec = env.do(http.MethodGet, "/api/report?id=1", "Bearer "+accessToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Forbidden", errType(t, rec))

	// Logout, then the previously issued access token is rejected.
	rec = env.do(http.MethodGet, "/auth/logout", "Bearer "+accessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/pokemons", "Bearer "+accessToken, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "SessionInvalidated", errType(t, rec))
}

func TestAdminFlow(t *testing.T) {
	env := newServerEnv(t)

	env.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username": "root",
		"password": "toor",
	})
	require.NoError(t, env.DB.Model(&models.User{}).Where("username = ?", "root").Update("role", "admin").Error)

	rec := env.do(http.MethodPost, "/auth/login", "", map[string]string{
		"username": "root",
		"password": "toor",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	header := rec.Header().Get(echo.HeaderAuthorization)
	accessToken := strings.TrimPrefix(strings.Split(header, ",")[0], "Bearer ")

	rec = env.do(http.MethodPost, "/api/v1/pokemon", "Bearer "+accessToken, map[string]any{
		"id":   25,
		"name": map[string]string{"english": "Pikachu"},
		"type": []string{"Electric"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/report?id=3", "Bearer "+accessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMissingTokenOnProtectedRoute(t *testing.T) {
	env := newServerEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/pokemons", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "MissingToken", errType(t, rec))
}

func TestUsageLogRecordsRequests(t *testing.T) {
	env := newServerEnv(t)

	env.do(http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice",
		"password": "secret",
	})

	var entries []models.UsageLog
	require.NoError(t, env.DB.Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, "/auth/register", entries[0].Endpoint)
	require.Equal(t, http.MethodPost, entries[0].Method)
	require.Empty(t, entries[0].Username)
}

func TestErrorsArePersisted(t *testing.T) {
	env := newServerEnv(t)

	rec := env.do(http.MethodPost, "/auth/login", "", map[string]string{
		"username": "ghost",
		"password": "secret",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NotFound", errType(t, rec))

	var entries []models.ErrorLog
	require.NoError(t, env.DB.Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, "/auth/login", entries[0].Endpoint)
	require.Equal(t, http.StatusNotFound, entries[0].Code)
	require.Equal(t, "user not found", entries[0].Message)
}
