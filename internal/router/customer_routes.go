package router

import (
	"github.com/labstack/echo/v4"

	"github.com/turftown/turf-booking/internal/handler"
	"github.com/turftown/turf-booking/internal/middleware"
	"github.com/turftown/turf-booking/internal/model"
)

// RegisterCustomer registers booking endpoints under /v1.  All routes
// require a valid JWT; any authenticated role can book (owners and
// admins play too).  The payment webhook is registered separately and
// unauthenticated because it is called by the gateway, not a user;
// its authenticity comes from re-retrieving the event server-side.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, pay *handler.PaymentHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleOwner, model.RoleAdmin),
	)
	g.POST("/bookings", h.CreateBooking)
	g.GET("/bookings", h.ListBookings)
	g.GET("/bookings/:id", h.GetBooking)
	g.POST("/bookings/:id/cancel", h.CancelBooking)
	g.POST("/bookings/:id/checkout", pay.Checkout)

	e.POST("/v1/payments/webhook", pay.Webhook)
}
