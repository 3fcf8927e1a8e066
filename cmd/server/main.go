package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/ValenCardozo/volando-ando/internal/config"
	"github.com/ValenCardozo/volando-ando/internal/database"
	"github.com/ValenCardozo/volando-ando/internal/handler"
	"github.com/ValenCardozo/volando-ando/internal/queue"
	"github.com/ValenCardozo/volando-ando/internal/repository"
	"github.com/ValenCardozo/volando-ando/internal/router"
	"github.com/ValenCardozo/volando-ando/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables the response cache and
	// the rate limiter.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	// Repositories.
	airplanes := repository.NewAirplaneRepo(db)
	seats := repository.NewSeatRepo(db)
	flights := repository.NewFlightRepo(db)
	passengers := repository.NewPassengerRepo(db)
	reservations := repository.NewReservationRepo(db)
	tickets := repository.NewTicketRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Services.
	events := service.NewAMQPTicketEvents(cfg.BrokerURL)
	engine := service.NewReservationService(db, flights, seats, passengers, reservations, tickets, events)
	flightSvc := service.NewFlightService(flights, airplanes)

	// Background renderer for issued tickets.
	go func() {
		if err := queue.StartTicketConsumer(cfg.BrokerURL, cfg.ArtifactDir); err != nil {
			log.Printf("ticket consumer stopped: %v", err)
		}
	}()

	// HTTP surface.
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	authH := handler.NewAuthHandler(cfg, users, tokens, passengers)
	publicH := handler.NewPublicHandler(flights, airplanes, seats)
	bookingH := handler.NewBookingHandler(engine, passengers, reservations, tickets)
	airplaneH := handler.NewAirplaneHandler(airplanes, seats)
	flightH := handler.NewFlightHandler(flightSvc, flights)
	reportH := handler.NewReportHandler(flights, reservations)

	router.RegisterHealth(e)
	router.RegisterPublic(e, publicH, cacheCfg, rdb)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterCustomer(e, bookingH, cfg.JWTSecret, rlCfg, rdb)
	router.RegisterStaff(e, airplaneH, flightH, reportH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
