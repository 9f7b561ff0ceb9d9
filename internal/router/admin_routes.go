package router

import (
	"github.com/labstack/echo/v4"

	"github.com/turftown/turf-booking/internal/handler"
	"github.com/turftown/turf-booking/internal/middleware"
	"github.com/turftown/turf-booking/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// Turf verification queue and approval.
	g.GET("/turfs", a.ListTurfs)
	g.POST("/turfs/:id/verify", a.VerifyTurf)

	// Cross-turf booking audit.
	g.GET("/bookings", a.ListBookings)
}
