package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"                             // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus/promhttp" // promhttp exposes the metrics registry over HTTP
	"github.com/redis/go-redis/v9"

	"github.com/classdeck/seating-planner/internal/config"     // config carries rate-limit and cache settings
	"github.com/classdeck/seating-planner/internal/handler"    // import the handlers that implement business logic
	"github.com/classdeck/seating-planner/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: the liveness probe and the Prometheus
// scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
	// Expose the default Prometheus registry.  Scrapers authenticate at the
	// network level, not with dashboard JWTs.
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterSeating registers the seating and attendance API under /v1.
// Every route requires a valid dashboard JWT; write operations on
// layouts additionally require an arranging role.  The redis-backed
// rate limiter guards the whole group and the response cache covers the
// roster proxy, the hottest read.
func RegisterSeating(e *echo.Echo, s *handler.SeatingHandler, a *handler.AttendanceHandler, jwtSecret string, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	)

	arrange := middleware.RequireRole(middleware.RoleSchoolAdmin, middleware.RoleHOD, middleware.RoleTeacher)

	// ---- Roster ----
	g.GET("/classes/:id/students", s.GetStudents, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	// ---- Saved layouts ----
	g.GET("/classes/:id/seating-layout", s.GetLayout)
	g.PUT("/classes/:id/seating-layout", s.SaveLayout, arrange)
	g.DELETE("/classes/:id/seating-layout", s.DeleteLayout, arrange)

	// ---- Editing sessions ----
	g.POST("/classes/:id/seating/session", s.OpenSession)
	g.GET("/seating/sessions/:sid", s.GetSession)
	g.POST("/seating/sessions/:sid/pointer", s.Pointer)
	g.POST("/seating/sessions/:sid/markers/:kind/rotate", s.RotateMarker)
	g.POST("/seating/sessions/:sid/reset", s.ResetSession)
	g.POST("/seating/sessions/:sid/save", s.SaveSession, arrange)

	// ---- Attendance ----
	g.GET("/classes/:id/attendance", a.GetAttendance)
	g.POST("/classes/:id/attendance/mark-all", a.MarkAll, arrange)
	g.GET("/classes/:id/attendance/random", a.RandomStudent)
	g.POST("/classes/:id/attendance/:studentId", a.ToggleAttendance, arrange)
}
