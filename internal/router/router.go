// Package router wires the HTTP surface: public browse, auth,
// customer booking and the staff backoffice, each with its own
// middleware stack.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ValenCardozo/volando-ando/internal/config"
	"github.com/ValenCardozo/volando-ando/internal/handler"
	"github.com/ValenCardozo/volando-ando/internal/middleware"
	"github.com/ValenCardozo/volando-ando/internal/model"
)

// RegisterHealth exposes the liveness endpoint.
func RegisterHealth(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated browse endpoints.
// Flight listings and seat maps sit behind the Redis response cache
// when one is configured.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	g := e.Group("/v1", middleware.NewRedisCache(cacheCfg, rdb))
	g.GET("/flights", p.ListFlights)
	g.GET("/flights/:id", p.GetFlight)
	g.GET("/flights/:id/seats", p.GetFlightSeats)
}

// RegisterAuth registers registration, login and session management.
// Only /v1/me requires a token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterCustomer registers the booking endpoints.  All routes
// require a valid JWT with the CUSTOMER role, and booking traffic
// runs through the token-bucket rate limiter.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, jwtSecret string,
	rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer),
		middleware.NewTokenBucket(rlCfg, rdb),
	)
	g.POST("/flights/:id/reservations", b.Create)
	g.GET("/reservations", b.ListMine)
	g.GET("/reservations/:code", b.GetByCode)
	g.PATCH("/reservations/:id/status", b.ChangeStatus)
	g.PATCH("/reservations/:id/seat", b.ChangeSeat)
	g.DELETE("/reservations/:id", b.Delete)
	g.POST("/reservations/:id/ticket", b.IssueTicket)
	g.GET("/reservations/:id/ticket", b.GetTicket)
}

// RegisterStaff registers the backoffice: fleet management, flight
// lifecycle and reporting.  STAFF role required throughout.
func RegisterStaff(e *echo.Echo, a *handler.AirplaneHandler, f *handler.FlightHandler,
	r *handler.ReportHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff),
	)

	// ---- Airplanes & seats ----
	g.POST("/airplanes", a.Create)
	g.GET("/airplanes", a.List)
	g.GET("/airplanes/:id", a.Get)
	g.PUT("/airplanes/:id", a.Update)
	g.DELETE("/airplanes/:id", a.Delete)
	g.POST("/airplanes/:id/seats/generate", a.GenerateLayout)
	g.POST("/airplanes/:id/seats", a.CreateSeat)
	g.PATCH("/seats/:seatID", a.UpdateSeat)
	g.DELETE("/seats/:seatID", a.DeleteSeat)

	// ---- Flights ----
	// Listing and detail are served by the public browse API; the
	// backoffice only adds the mutating endpoints.
	g.POST("/flights", f.Create)
	g.PATCH("/flights/:id", f.Patch)
	g.DELETE("/flights/:id", f.Delete)

	// ---- Reports ----
	g.GET("/reports/dashboard", r.Dashboard)
	g.GET("/reports/occupancy", r.Occupancy)
	g.GET("/reports/top-routes", r.TopRoutes)
	g.GET("/flights/:id/reservations", r.FlightReservations)
}
