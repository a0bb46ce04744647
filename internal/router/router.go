package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql" // database handle for the health check
	"net/http"     // status codes for the API fallback

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/todo-list-api/internal/handler"    // handlers that implement the endpoints
	"github.com/iliyamo/todo-list-api/internal/middleware" // JWT authentication and list caching
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	DB        *sql.DB
	Auth      *handler.AuthHandler
	Todos     *handler.TodoHandler
	Verifier  middleware.TokenVerifier
	ListCache echo.MiddlewareFunc // optional; nil disables caching
	PublicDir string              // optional; empty disables static files
}

// RegisterRoutes registers every route on the provided Echo instance.
//
//	GET    /healthz          health check
//	POST   /api/register     create a user
//	POST   /api/login        exchange credentials for a token
//	GET    /api/todos        list the caller's todos      (bearer)
//	POST   /api/todos        create a todo                (bearer)
//	PATCH  /api/todos/:id    set the completed flag       (bearer)
//	DELETE /api/todos/:id    delete a todo                (bearer)
//	GET    /*                static files from PublicDir
func RegisterRoutes(e *echo.Echo, d Deps) {
	if d.DB != nil {
		e.GET("/healthz", handler.Health(d.DB))
	}

	api := e.Group("/api")
	// Unauthenticated operations: they create users or issue tokens.
	api.POST("/register", d.Auth.Register)
	api.POST("/login", d.Auth.Login)

	// Every todo route runs JWTAuth first, so no handler sees a request
	// without a verified owner id.
	todoMW := []echo.MiddlewareFunc{middleware.JWTAuth(d.Verifier)}
	if d.ListCache != nil {
		todoMW = append(todoMW, d.ListCache)
	}
	todos := api.Group("/todos", todoMW...)
	todos.GET("", d.Todos.List)
	todos.POST("", d.Todos.Create)
	todos.PATCH("/:id", d.Todos.Update)
	todos.DELETE("/:id", d.Todos.Delete)

	// Unknown API paths answer with JSON instead of falling through to the
	// static file server.
	api.Any("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	})

	if d.PublicDir != "" {
		e.Static("/", d.PublicDir)
	}
}
