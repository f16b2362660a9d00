// Package analytics computes time-windowed rollups over snapshots of the
// usage and error logs. All functions are pure: they take the snapshot and a
// single "now" captured by the caller, so one report is internally
// consistent. Calendar days are evaluated in UTC. Entries without a resolved
// identity count as the distinct user "anonymous" rather than being dropped.
package analytics

import (
	"sort"
	"strconv"
	"time"

	"github.com/avasilyev/pokedex-api/internal/models"
)

const AnonymousUser = "anonymous"

const (
	DefaultDayWindow   = 7 * 24 * time.Hour
	RecentErrorsWindow = time.Hour
	DefaultTopUsers    = 5
	DefaultTopPerRoute = 3
)

type DayUserCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type UserCount struct {
	Username string `json:"username"`
	Count    int    `json:"count"`
}

type DayTopUsers struct {
	Day   string      `json:"day"`
	Users []UserCount `json:"users"`
}

type EndpointUsers struct {
	Endpoint string   `json:"endpoint"`
	Method   string   `json:"method"`
	Users    []string `json:"users"`
}

type EndpointErrors struct {
	Endpoint string   `json:"endpoint"`
	Errors   []string `json:"errors"`
}

func inWindow(ts, now time.Time, window time.Duration) bool {
	return !ts.Before(now.Add(-window)) && !ts.After(now)
}

func dayKey(ts time.Time) string {
	return ts.UTC().Format("2006-01-02")
}

func identity(username string) string {
	if username == "" {
		return AnonymousUser
	}
	return username
}

// UniqueUsersByDay counts distinct users per UTC calendar day over the
// trailing 7-day window. A user making many requests on one day counts once
// for that day.
func UniqueUsersByDay(entries []models.UsageLog, now time.Time) []DayUserCount {
	days := make(map[string]map[string]struct{})
	for _, e := range entries {
		if !inWindow(e.CreatedAt, now, DefaultDayWindow) {
			continue
		}
		day := dayKey(e.CreatedAt)
		if days[day] == nil {
			days[day] = make(map[string]struct{})
		}
		days[day][identity(e.Username)] = struct{}{}
	}

	out := make([]DayUserCount, 0, len(days))
	for day, users := range days {
		out = append(out, DayUserCount{Day: day, Count: len(users)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// TopUsersByDay ranks users by request count per UTC day over the trailing
// 7-day window. Ranking is by descending count, ties broken by ascending
// username; at most n users are returned per day.
func TopUsersByDay(entries []models.UsageLog, now time.Time, n int) []DayTopUsers {
	days := make(map[string]map[string]int)
	for _, e := range entries {
		if !inWindow(e.CreatedAt, now, DefaultDayWindow) {
			continue
		}
		day := dayKey(e.CreatedAt)
		if days[day] == nil {
			days[day] = make(map[string]int)
		}
		days[day][identity(e.Username)]++
	}

	out := make([]DayTopUsers, 0, len(days))
	for day, counts := range days {
		users := make([]UserCount, 0, len(counts))
		for name, count := range counts {
			users = append(users, UserCount{Username: name, Count: count})
		}
		sort.Slice(users, func(i, j int) bool {
			if users[i].Count != users[j].Count {
				return users[i].Count > users[j].Count
			}
			return users[i].Username < users[j].Username
		})
		if len(users) > n {
			users = users[:n]
		}
		out = append(out, DayTopUsers{Day: day, Users: users})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// TopUsersByEndpoint lists, for every (endpoint, method) pair seen in the
// whole log, the lexicographically first n distinct users.
func TopUsersByEndpoint(entries []models.UsageLog, n int) []EndpointUsers {
	type route struct{ endpoint, method string }
	routes := make(map[route]map[string]struct{})
	for _, e := range entries {
		key := route{e.Endpoint, e.Method}
		if routes[key] == nil {
			routes[key] = make(map[string]struct{})
		}
		routes[key][identity(e.Username)] = struct{}{}
	}

	out := make([]EndpointUsers, 0, len(routes))
	for key, users := range routes {
		names := make([]string, 0, len(users))
		for name := range users {
			names = append(names, name)
		}
		sort.Strings(names)
		if len(names) > n {
			names = names[:n]
		}
		out = append(out, EndpointUsers{Endpoint: key.endpoint, Method: key.method, Users: names})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Endpoint != out[j].Endpoint {
			return out[i].Endpoint < out[j].Endpoint
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// ErrorsByEndpoint groups all-time 4xx errors by endpoint; each value is the
// "<code>: <message>" lines in log order.
func ErrorsByEndpoint(entries []models.ErrorLog) []EndpointErrors {
	grouped := make(map[string][]string)
	order := make([]string, 0)
	for _, e := range entries {
		if e.Code < 400 || e.Code > 499 {
			continue
		}
		if _, seen := grouped[e.Endpoint]; !seen {
			order = append(order, e.Endpoint)
		}
		grouped[e.Endpoint] = append(grouped[e.Endpoint], strconv.Itoa(e.Code)+": "+e.Message)
	}

	sort.Strings(order)
	out := make([]EndpointErrors, 0, len(order))
	for _, endpoint := range order {
		out = append(out, EndpointErrors{Endpoint: endpoint, Errors: grouped[endpoint]})
	}
	return out
}

// RecentErrors returns every 4xx/5xx error from the trailing hour, newest
// first. The list is not capped.
func RecentErrors(entries []models.ErrorLog, now time.Time) []models.ErrorLog {
	out := make([]models.ErrorLog, 0)
	for _, e := range entries {
		if e.Code < 400 || e.Code > 599 {
			continue
		}
		if !inWindow(e.CreatedAt, now, RecentErrorsWindow) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
