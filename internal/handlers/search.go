package handlers

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/avasilyev/pokedex-api/internal/httperr"
	"github.com/avasilyev/pokedex-api/internal/service/search"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func (h *SearchHandler) Search(c echo.Context) error {
	if h.ES == nil {
		return httperr.New(httperr.KindUnclassified, "search is not available")
	}

	q := c.QueryParam("q")
	if q == "" {
		return httperr.New(httperr.KindValidationError, "q query parameter is required")
	}

	from := parseIntDefault(c.QueryParam("after"), 0)
	size := parseIntDefault(c.QueryParam("count"), 10)

	total, docs, err := search.Search(c.Request().Context(), h.ES, h.Index, q, from, size)
	if err != nil {
		return httperr.Wrap(httperr.KindUnclassified, "search failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "pokemons": docs})
}
