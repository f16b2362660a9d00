package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/avasilyev/pokedex-api/internal/handlers"
	authmw "github.com/avasilyev/pokedex-api/internal/middleware/auth"
)

type Deps struct {
	AuthHandler    *handlers.AuthHandler
	PokemonHandler *handlers.PokemonHandler
	ReportHandler  *handlers.ReportHandler
	SearchHandler  *handlers.SearchHandler
	Guard          *authmw.Guard
	UsageLogger    echo.MiddlewareFunc
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	auth := e.Group("/auth", d.UsageLogger)

	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/requestNewAccessToken", d.AuthHandler.RequestNewAccessToken)
	auth.GET("/logout", d.AuthHandler.Logout)

	api := e.Group("/api", d.UsageLogger, d.Guard.RequireUser)

	api.GET("/v1/pokemons", d.PokemonHandler.List)
	api.GET("/v1/pokemon", d.PokemonHandler.Get)
	api.GET("/v1/search", d.SearchHandler.Search)

	// Admin routes pass through the user gate first, then the admin gate.
	admin := api.Group("", d.Guard.RequireAdmin)

	admin.POST("/v1/pokemon", d.PokemonHandler.Create)
	admin.PUT("/v1/pokemon/:id", d.PokemonHandler.Put)
	admin.PATCH("/v1/pokemon/:id", d.PokemonHandler.Patch)
	admin.DELETE("/v1/pokemon", d.PokemonHandler.Delete)
	admin.GET("/report", d.ReportHandler.Report)
}
