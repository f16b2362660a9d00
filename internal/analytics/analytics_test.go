package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avasilyev/pokedex-api/internal/models"
)

func usage(username string, ts time.Time) models.UsageLog {
	return models.UsageLog{Endpoint: "/api/v1/pokemons", Method: "GET", Username: username, CreatedAt: ts}
}

func TestUniqueUsersByDayCountsUserOncePerDay(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []models.UsageLog{
		usage("alice", now.Add(-1*time.Hour)),
		usage("alice", now.Add(-2*time.Hour)),
		usage("alice", now.Add(-3*time.Hour)),
		usage("bob", now.Add(-1*time.Hour)),
		usage("alice", now.Add(-24*time.Hour)),
	}

	got := UniqueUsersByDay(entries, now)
	require.Equal(t, []DayUserCount{
		{Day: "2024-03-09", Count: 1},
		{Day: "2024-03-10", Count: 2},
	}, got)
}

func TestUniqueUsersByDayCountsAnonymous(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []models.UsageLog{
		usage("alice", now.Add(-time.Hour)),
		usage("", now.Add(-time.Hour)),
		usage("", now.Add(-2*time.Hour)),
	}

	got := UniqueUsersByDay(entries, now)
	require.Equal(t, []DayUserCount{{Day: "2024-03-10", Count: 2}}, got)
}

func TestUniqueUsersByDayWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []models.UsageLog{
		usage("alice", now.Add(-8*24*time.Hour)),
		usage("alice", now.Add(time.Hour)),
	}

	require.Empty(t, UniqueUsersByDay(entries, now))
}

func TestTopUsersByDayRanking(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	day := now.Add(-time.Hour)

	entries := []models.UsageLog{
		usage("userC", day),
		usage("userB", day), usage("userB", day), usage("userB", day),
		usage("userA", day), usage("userA", day), usage("userA", day),
	}

	got := TopUsersByDay(entries, now, 5)
	require.Len(t, got, 1)
	require.Equal(t, "2024-03-10", got[0].Day)
	require.Equal(t, []UserCount{
		{Username: "userA", Count: 3},
		{Username: "userB", Count: 3},
		{Username: "userC", Count: 1},
	}, got[0].Users)
}

func TestTopUsersByDayCapsAtN(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	day := now.Add(-time.Hour)

	entries := []models.UsageLog{
		usage("a", day), usage("b", day), usage("c", day), usage("d", day),
	}

	got := TopUsersByDay(entries, now, 2)
	require.Len(t, got, 1)
	require.Len(t, got[0].Users, 2)
	require.Equal(t, "a", got[0].Users[0].Username)
	require.Equal(t, "b", got[0].Users[1].Username)
}

func TestTopUsersByEndpoint(t *testing.T) {
	entries := []models.UsageLog{
		{Endpoint: "/api/v1/pokemon", Method: "GET", Username: "dave"},
		{Endpoint: "/api/v1/pokemon", Method: "GET", Username: "carol"},
		{Endpoint: "/api/v1/pokemon", Method: "GET", Username: "alice"},
		{Endpoint: "/api/v1/pokemon", Method: "GET", Username: "bob"},
		{Endpoint: "/api/v1/pokemon", Method: "DELETE", Username: "admin"},
	}

	got := TopUsersByEndpoint(entries, 3)
	require.Equal(t, []EndpointUsers{
		{Endpoint: "/api/v1/pokemon", Method: "DELETE", Users: []string{"admin"}},
		{Endpoint: "/api/v1/pokemon", Method: "GET", Users: []string{"alice", "bob", "carol"}},
	}, got)
}

func TestErrorsByEndpointOnlyClientErrors(t *testing.T) {
	entries := []models.ErrorLog{
		{Endpoint: "/api/v1/pokemon", Code: 404, Message: "pokemon not found"},
		{Endpoint: "/api/v1/pokemon", Code: 500, Message: "boom"},
		{Endpoint: "/auth/login", Code: 401, Message: "password is incorrect"},
		{Endpoint: "/api/v1/pokemon", Code: 409, Message: "pokemon already exists"},
	}

	got := ErrorsByEndpoint(entries)
	require.Equal(t, []EndpointErrors{
		{Endpoint: "/api/v1/pokemon", Errors: []string{"404: pokemon not found", "409: pokemon already exists"}},
		{Endpoint: "/auth/login", Errors: []string{"401: password is incorrect"}},
	}, got)
}

func TestRecentErrorsWindowBoundary(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	old := models.ErrorLog{Endpoint: "/a", Code: 404, Message: "old", CreatedAt: now.Add(-61 * time.Minute)}
	fresh := models.ErrorLog{Endpoint: "/b", Code: 404, Message: "fresh", CreatedAt: now.Add(-59 * time.Minute)}
	newest := models.ErrorLog{Endpoint: "/c", Code: 503, Message: "newest", CreatedAt: now.Add(-time.Minute)}
	info := models.ErrorLog{Endpoint: "/d", Code: 302, Message: "redirect", CreatedAt: now.Add(-time.Minute)}

	got := RecentErrors([]models.ErrorLog{old, fresh, newest, info}, now)
	require.Len(t, got, 2)
	require.Equal(t, "newest", got[0].Message)
	require.Equal(t, "fresh", got[1].Message)
}
