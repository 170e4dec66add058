package main // Entry point package

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/meeting-room-booking/internal/config"
    "github.com/iliyamo/meeting-room-booking/internal/database"
    "github.com/iliyamo/meeting-room-booking/internal/handler"
    "github.com/iliyamo/meeting-room-booking/internal/middleware"
    "github.com/iliyamo/meeting-room-booking/internal/queue"
    "github.com/iliyamo/meeting-room-booking/internal/repository"
    "github.com/iliyamo/meeting-room-booking/internal/router"
    "github.com/iliyamo/meeting-room-booking/internal/service"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis is optional: without it the service runs with caching,
    // rate limiting and room-status invalidation disabled.
    rdb := config.NewRedisClient()

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    rooms := repository.NewRoomRepo(db)
    bookings := repository.NewBookingRepo(db)
    reviews := repository.NewReviewRepo(db)
    analytics := repository.NewAnalyticsRepo(db)

    var invalidator service.RoomCacheInvalidator
    if c := service.NewRedisRoomCache(rdb); c != nil {
        invalidator = c
    }
    bookingSvc := service.NewBookingService(bookings, rooms, queue.NewPublisherFromEnv(), invalidator)

    authH := handler.NewAuthHandler(cfg, users, tokens)
    roomH := handler.NewRoomHandler(rooms)
    bookingH := handler.NewBookingHandler(bookingSvc)
    reviewH := handler.NewReviewHandler(reviews, rooms)
    analyticsH := handler.NewAnalyticsHandler(analytics)

    e := echo.New()

    rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
    respCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH, cfg.JWTSecret)
    router.RegisterBookings(e, bookingH, cfg.JWTSecret, rateLimit)
    router.RegisterRooms(e, roomH, cfg.JWTSecret, rateLimit, respCache)
    router.RegisterReviews(e, reviewH, cfg.JWTSecret, rateLimit)
    router.RegisterAnalytics(e, analyticsH, cfg.JWTSecret, rateLimit, respCache)

    // Consumer writes booking_created events to logs/booking.log and
    // reconnects on broker failure; it never stops the HTTP server.
    go func() {
        if err := queue.StartBookingConsumer(); err != nil {
            log.Printf("booking consumer stopped: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
