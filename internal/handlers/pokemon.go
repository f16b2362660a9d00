package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/avasilyev/pokedex-api/internal/events"
	"github.com/avasilyev/pokedex-api/internal/httperr"
	"github.com/avasilyev/pokedex-api/internal/logging"
	"github.com/avasilyev/pokedex-api/internal/models"
	"github.com/avasilyev/pokedex-api/internal/repo"
	"github.com/avasilyev/pokedex-api/internal/service/search"
)

type PokemonHandler struct {
	Pokemons *repo.PokemonRepo
	Producer *events.Producer
	ES       *elasticsearch.Client
	Index    string
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *PokemonHandler) index(c echo.Context, p *models.Pokemon) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.Index(ctx, h.ES, h.Index, p); err != nil {
		logging.FromContext(c.Request().Context()).Error("es index failed", "id", p.ID, "error", err)
	}
}

func (h *PokemonHandler) unindex(c echo.Context, id int) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.Delete(ctx, h.ES, h.Index, id); err != nil {
		logging.FromContext(c.Request().Context()).Error("es delete failed", "id", id, "error", err)
	}
}

func (h *PokemonHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.Publish(ctx, "pokedex", event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *PokemonHandler) List(c echo.Context) error {
	count := parseIntDefault(c.QueryParam("count"), 10)
	after := parseIntDefault(c.QueryParam("after"), 0)

	items, err := h.Pokemons.List(c.Request().Context(), after, count)
	if err != nil {
		return httperr.Wrap(httperr.KindUnclassified, "cannot list pokemons", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *PokemonHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.QueryParam("id"))
	if err != nil {
		return httperr.New(httperr.KindValidationError, "id query parameter is required")
	}

	p, err := h.Pokemons.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"errMsg": "Pokemon not found"})
		}
		return httperr.Wrap(httperr.KindUnclassified, "cannot fetch pokemon", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PokemonHandler) Create(c echo.Context) error {
	var p models.Pokemon
	if err := c.Bind(&p); err != nil {
		return httperr.Wrap(httperr.KindValidationError, "invalid request body", err)
	}
	if p.ID == 0 {
		return httperr.New(httperr.KindValidationError, "missing pokemon id")
	}

	if _, err := h.Pokemons.FindByID(c.Request().Context(), p.ID); err == nil {
		return httperr.New(httperr.KindDuplicateRecord, "pokemon already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return httperr.Wrap(httperr.KindUnclassified, "cannot fetch pokemon", err)
	}

	if err := h.Pokemons.Create(c.Request().Context(), &p); err != nil {
		return httperr.Wrap(httperr.KindUnclassified, "cannot create pokemon", err)
	}

	h.index(c, &p)
	h.publish(c, map[string]any{"type": "pokemon_created", "id": p.ID})

	return c.JSON(http.StatusOK, echo.Map{"msg": "Added Successfully"})
}

func (h *PokemonHandler) Put(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return httperr.New(httperr.KindValidationError, "invalid pokemon id")
	}

	if _, err := h.Pokemons.FindByID(c.Request().Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return httperr.New(httperr.KindNotFound, "pokemon not found")
		}
		return httperr.Wrap(httperr.KindUnclassified, "cannot fetch pokemon", err)
	}

	var p models.Pokemon
	if err := c.Bind(&p); err != nil {
		return httperr.Wrap(httperr.KindValidationError, "invalid request body", err)
	}
	p.ID = id

	if err := h.Pokemons.Save(c.Request().Context(), &p); err != nil {
		return httperr.Wrap(httperr.KindUnclassified, "cannot update pokemon", err)
	}

	h.index(c, &p)
	h.publish(c, map[string]any{"type": "pokemon_updated", "id": p.ID})

	return c.JSON(http.StatusOK, echo.Map{"msg": "Updated Successfully", "pokeInfo": p})
}

func (h *PokemonHandler) Patch(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return httperr.New(httperr.KindValidationError, "invalid pokemon id")
	}

	p, err := h.Pokemons.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return httperr.New(httperr.KindNotFound, "pokemon not found")
		}
		return httperr.Wrap(httperr.KindUnclassified, "cannot fetch pokemon", err)
	}

	// Bind merges the request body over the stored record, so absent fields
	// keep their current values.
	if err := c.Bind(p); err != nil {
		return httperr.Wrap(httperr.KindValidationError, "invalid request body", err)
	}
	p.ID = id

	if err := h.Pokemons.Save(c.Request().Context(), p); err != nil {
		return httperr.Wrap(httperr.KindUnclassified, "cannot update pokemon", err)
	}

	h.index(c, p)
	h.publish(c, map[string]any{"type": "pokemon_updated", "id": p.ID})

	return c.JSON(http.StatusOK, echo.Map{"msg": "Updated Successfully", "pokeInfo": p})
}

func (h *PokemonHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.QueryParam("id"))
	if err != nil {
		return httperr.New(httperr.KindValidationError, "id query parameter is required")
	}

	affected, err := h.Pokemons.Delete(c.Request().Context(), id)
	if err != nil {
		return httperr.Wrap(httperr.KindUnclassified, "cannot delete pokemon", err)
	}
	if affected == 0 {
		return httperr.New(httperr.KindNotFound, "pokemon not found")
	}

	h.unindex(c, id)
	h.publish(c, map[string]any{"type": "pokemon_deleted", "id": id})

	return c.JSON(http.StatusOK, echo.Map{"msg": "Deleted Successfully"})
}
