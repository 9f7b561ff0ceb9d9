package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/turftown/turf-booking/internal/handler"    // import the handlers that implement business logic
	"github.com/turftown/turf-booking/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/turftown/turf-booking/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Route group under the /v1/auth prefix for operations that do not
	// require an existing session (register, login, refresh).  Each of
	// these handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access only issues a new
	// access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication.  The handler accepts a
	// JSON body containing a `refresh_token` and will invalidate that
	// token, or an Authorization header to revoke every session.
	g.POST("/logout", a.Logout)

	// Group for routes that require a valid access token.  All handlers
	// registered on this group execute the JWTAuth middleware before
	// being invoked.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleCustomer, model.RoleOwner, model.RoleAdmin))
	auth.GET("/me", a.Me)

	// Additionally map POST /v1/logout to the same handler so clients can
	// call either /v1/auth/logout or /v1/logout with a valid refresh
	// token in the body to terminate a session.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints on the provided
// Echo instance.  The provided PublicHandler exposes handlers that return
// sanitized data for turfs and their day grids.  These routes do not apply
// any JWT or role middleware and are intended for guest users.  Optional
// middlewares (e.g. the Redis response cache) apply to these routes only,
// so authenticated responses are never cached.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("", mw...)
	// Expose the list of verified turfs, optionally filtered by sport.
	g.GET("/v1/turfs", p.GetPublicTurfs)
	// Turf details with the sports it offers.
	g.GET("/v1/turfs/:id", p.GetPublicTurf)
	// The slot grid for one date and sport: availability plus effective
	// prices, grouped by period.  Guests browse this before signing up.
	g.GET("/v1/turfs/:id/grid", p.GetPublicTurfGrid)
}
