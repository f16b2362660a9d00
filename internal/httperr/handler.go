package httperr

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avasilyev/pokedex-api/internal/logging"
	"github.com/avasilyev/pokedex-api/internal/models"
	"github.com/avasilyev/pokedex-api/internal/repo"
)

type body struct {
	Err struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"err"`
}

// Handler is the single terminal error handler: it picks the status code,
// writes the {"err":{...}} body and records the failure in the error log.
func Handler(errLogs *repo.ErrorLogRepo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		status := http.StatusInternalServerError
		kind := KindUnclassified
		message := err.Error()

		var appErr *Error
		var echoErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = appErr.Status()
			kind = appErr.Kind
			message = appErr.Message
		case errors.As(err, &echoErr):
			status = echoErr.Code
			if status == http.StatusNotFound || status == http.StatusMethodNotAllowed {
				kind = KindNotFound
			}
			message = http.StatusText(status)
			if m, ok := echoErr.Message.(string); ok {
				message = m
			}
		}

		req := c.Request()
		entry := models.ErrorLog{
			Endpoint:  req.URL.Path,
			Method:    req.Method,
			Code:      status,
			Message:   message,
			CreatedAt: time.Now().UTC(),
		}
		if dbErr := errLogs.Append(req.Context(), &entry); dbErr != nil {
			logging.FromContext(req.Context()).Error("error log append failed", "error", dbErr)
		}

		if c.Response().Committed {
			return
		}

		var b body
		b.Err.Message = message
		b.Err.Type = string(kind)
		if writeErr := c.JSON(status, b); writeErr != nil {
			logging.FromContext(req.Context()).Error("error response write failed", "error", writeErr)
		}
	}
}
