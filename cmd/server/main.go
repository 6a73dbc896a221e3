package main // Entry point package

import (
	"context" // Context for startup calls
	"log"     // Logging library

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/classdeck/seating-planner/internal/attendance" // Attendance synchronizer
	"github.com/classdeck/seating-planner/internal/config"     // Internal config loader
	"github.com/classdeck/seating-planner/internal/database"   // MySQL connector
	"github.com/classdeck/seating-planner/internal/handler"    // HTTP handlers
	"github.com/classdeck/seating-planner/internal/queue"      // Broker consumer and events
	"github.com/classdeck/seating-planner/internal/repository" // Layout storage
	"github.com/classdeck/seating-planner/internal/router"     // Internal router setup
	queue_publisher "github.com/classdeck/seating-planner/internal/service"
	"github.com/classdeck/seating-planner/internal/session"  // Editing sessions
	"github.com/classdeck/seating-planner/internal/upstream" // School API client
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("database schema: %v", err)
	}

	rdb := config.NewRedisClient() // nil when redis is unreachable; features degrade
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	api := upstream.New(cfg.UpstreamAPIURL, cfg.UpstreamToken, rdb)

	attendanceSvc := attendance.NewService(api, rdb, func(ctx context.Context, ev queue.AttendanceMarkedEvent) {
		_ = queue_publisher.PublishAttendanceMarked(ctx, ev) // event loss is tolerated
	}, cfg.SchoolTimezone)

	layouts := repository.NewLayoutRepo(db)
	sessions := session.NewStore(layouts, func(ctx context.Context, ev queue.LayoutSavedEvent) {
		_ = queue_publisher.PublishLayoutSaved(ctx, ev)
	})

	seatingHandler := handler.NewSeatingHandler(layouts, sessions, api)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, api)

	if cfg.ConsumerEnabled {
		go func() {
			if err := queue.StartAttendanceConsumer(); err != nil {
				log.Printf("attendance consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()          // Create Echo instance
	e.HideBanner = true      // Keep startup logs plain
	router.RegisterRoutes(e) // Liveness + metrics
	router.RegisterSeating(e, seatingHandler, attendanceHandler, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
