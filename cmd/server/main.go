package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/amielle/duty-roster/internal/booking"
	"github.com/amielle/duty-roster/internal/config"
	"github.com/amielle/duty-roster/internal/database"
	"github.com/amielle/duty-roster/internal/handler"
	"github.com/amielle/duty-roster/internal/middleware"
	"github.com/amielle/duty-roster/internal/queue"
	"github.com/amielle/duty-roster/internal/repository"
	"github.com/amielle/duty-roster/internal/router"
	"github.com/amielle/duty-roster/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	logger := config.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the advisory snapshot, the
	// response cache and the rate limiter all disable themselves.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, running without cache and rate limiting")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	schedules := repository.NewScheduleRepo(db)
	bookings := repository.NewBookingRepo(db)
	marks := repository.NewCancellationRepo(db)
	logs := repository.NewDutyLogRepo(db)
	notifications := repository.NewNotificationRepo(db)
	slotCache := repository.NewScheduleCache(rdb, config.LoadCacheConfig().TTL)

	guard := booking.NewRebookGuard()
	publisher := service.NewPublisher(queue.BrokerURL(), logger)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	studentH := handler.NewStudentHandler(schedules, bookings, marks, logs, users, slotCache, guard, publisher, logger)
	adminH := handler.NewAdminHandler(schedules, bookings, logs, slotCache, publisher, logger)
	parentH := handler.NewParentHandler(users, bookings, logger)
	notifH := handler.NewNotificationHandler(notifications, logger)

	// Background workers: the notification consumer drains the queue
	// into the notifications table, the janitor purges expired
	// cancellation marks.
	go queue.StartNotificationConsumer(notifications, logger)
	go queue.StartMarkJanitor(marks, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterStudent(e, studentH, cfg.JWTSecret, cacheMW)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)
	router.RegisterParent(e, parentH, cfg.JWTSecret)
	router.RegisterNotifications(e, notifH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
