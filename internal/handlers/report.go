package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avasilyev/pokedex-api/internal/analytics"
	"github.com/avasilyev/pokedex-api/internal/httperr"
	"github.com/avasilyev/pokedex-api/internal/repo"
)

// Numeric report ids accepted by GET /api/report.
const (
	ReportUniqueUsersByDay   = 1
	ReportTopUsersByDay      = 2
	ReportTopUsersByEndpoint = 3
	ReportErrorsByEndpoint   = 4
	ReportRecentErrors       = 5
)

type ReportHandler struct {
	Usage  *repo.UsageLogRepo
	Errors *repo.ErrorLogRepo
}

func (h *ReportHandler) Report(c echo.Context) error {
	id, err := strconv.Atoi(c.QueryParam("id"))
	if err != nil {
		return httperr.New(httperr.KindValidationError, "id query parameter is required")
	}

	// One "now" per report call keeps the windows consistent across entries.
	now := time.Now().UTC()

	switch id {
	case ReportUniqueUsersByDay, ReportTopUsersByDay, ReportTopUsersByEndpoint:
		entries, err := h.Usage.FindAll(c.Request().Context())
		if err != nil {
			return httperr.Wrap(httperr.KindUnclassified, "cannot read usage log", err)
		}
		switch id {
		case ReportUniqueUsersByDay:
			return c.JSON(http.StatusOK, analytics.UniqueUsersByDay(entries, now))
		case ReportTopUsersByDay:
			return c.JSON(http.StatusOK, analytics.TopUsersByDay(entries, now, analytics.DefaultTopUsers))
		default:
			return c.JSON(http.StatusOK, analytics.TopUsersByEndpoint(entries, analytics.DefaultTopPerRoute))
		}
	case ReportErrorsByEndpoint, ReportRecentErrors:
		entries, err := h.Errors.FindAll(c.Request().Context())
		if err != nil {
			return httperr.Wrap(httperr.KindUnclassified, "cannot read error log", err)
		}
		if id == ReportErrorsByEndpoint {
			return c.JSON(http.StatusOK, analytics.ErrorsByEndpoint(entries))
		}
		return c.JSON(http.StatusOK, analytics.RecentErrors(entries, now))
	default:
		return httperr.New(httperr.KindValidationError, "unknown report id")
	}
}
