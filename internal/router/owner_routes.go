package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/turftown/turf-booking/internal/handler"    // owner handlers
	"github.com/turftown/turf-booking/internal/middleware" // JWT + role middlewares
	"github.com/turftown/turf-booking/internal/model"
)

// RegisterOwner registers OWNER-scoped endpoints under /v1/owner.
// All routes require a valid JWT and OWNER role.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1/owner",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOwner),
	)

	// ---- Turfs ----
	g.POST("/turfs", o.CreateTurf)
	g.GET("/turfs", o.ListMyTurfs)
	g.GET("/turfs/:id", o.GetMyTurf)
	g.PATCH("/turfs/:id", o.UpdateTurf)

	// ---- Price rules ----
	g.GET("/turfs/:id/rules", o.ListRules)
	g.POST("/turfs/:id/rules", o.CreateRule)
	g.PATCH("/rules/:id", o.UpdateRule)
	g.DELETE("/rules/:id", o.DeleteRule)

	// ---- Bookings and blocks ----
	g.GET("/turfs/:id/bookings", o.ListTurfBookings)
	g.POST("/turfs/:id/blocks", o.CreateBlock)
	g.DELETE("/blocks/:id", o.ReleaseBlock)

	// The owner's grid mirrors the public one so pricing and
	// availability can be checked before a turf goes live.
	g.GET("/turfs/:id/grid", o.GetOwnerTurfGrid)
}
