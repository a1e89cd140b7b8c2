// cmd/server/server.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtbook/internal/alerts"
	"github.com/codr1/Courtbook/internal/api"
	alertsapi "github.com/codr1/Courtbook/internal/api/alerts"
	"github.com/codr1/Courtbook/internal/api/auth"
	blocksapi "github.com/codr1/Courtbook/internal/api/blocks"
	"github.com/codr1/Courtbook/internal/api/bookings"
	"github.com/codr1/Courtbook/internal/api/courts"
	"github.com/codr1/Courtbook/internal/api/monthlypasses"
	"github.com/codr1/Courtbook/internal/api/notifications"
	"github.com/codr1/Courtbook/internal/api/operatinghours"
	"github.com/codr1/Courtbook/internal/availability"
	"github.com/codr1/Courtbook/internal/blocks"
	"github.com/codr1/Courtbook/internal/booking"
	"github.com/codr1/Courtbook/internal/cache"
	"github.com/codr1/Courtbook/internal/config"
	"github.com/codr1/Courtbook/internal/db"
	"github.com/codr1/Courtbook/internal/email"
	"github.com/codr1/Courtbook/internal/monthlypass"
	"github.com/codr1/Courtbook/internal/notify"
	"github.com/codr1/Courtbook/internal/ratelimit"
	"github.com/codr1/Courtbook/internal/schedule"
	"github.com/codr1/Courtbook/internal/scheduler"
)

// app owns every long-lived dependency the server needs.
type app struct {
	db        *db.DB
	redis     *redis.Client
	publisher *notify.Publisher
	tokens    *auth.Tokens
	limiter   *ratelimit.Limiter

	closeOnce sync.Once
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.db = database

	tokens, err := auth.NewTokens(cfg.App.SecretKey, auth.DefaultTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("init tokens: %w", err)
	}
	a.tokens = tokens

	clock := schedule.SystemClock

	a.redis = cache.NewRedisClient(cfg.Redis)
	var dayCache *cache.JSONCache
	if a.redis != nil {
		ttl := time.Duration(cfg.Redis.CacheTTLSeconds) * time.Second
		dayCache = cache.NewJSONCache(a.redis, cfg.App.Name+":availability", ttl)
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", ttl).Msg("Availability caching enabled")
	}

	var publisher notify.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		p, err := notify.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ unavailable, events will not be published")
		} else {
			a.publisher = p
			publisher = p
		}
	}
	dispatcher := notify.NewDispatcher(database, publisher, clock)

	var sender email.EmailSender
	if cfg.Email.Region != "" {
		ses, err := email.NewSESClient(ctx, cfg.Email)
		if err != nil {
			log.Warn().Err(err).Msg("SES unavailable, outbox delivery disabled")
		} else {
			sender = ses
		}
	}

	avail := availability.NewService(database, dayCache, clock)
	alertSvc := alerts.NewService(database, clock, dispatcher)

	bookingEngine, err := booking.NewEngine(database,
		booking.WithClock(clock),
		booking.WithNotifier(dispatcher),
		booking.WithInvalidator(avail),
		booking.WithFreedListener(alertSvc),
	)
	if err != nil {
		return nil, fmt.Errorf("init booking engine: %w", err)
	}
	blockEngine, err := blocks.NewEngine(database,
		blocks.WithClock(clock),
		blocks.WithNotifier(dispatcher),
		blocks.WithInvalidator(avail),
		blocks.WithFreedListener(alertSvc),
	)
	if err != nil {
		return nil, fmt.Errorf("init block engine: %w", err)
	}
	passEngine, err := monthlypass.NewEngine(database,
		monthlypass.WithClock(clock),
		monthlypass.WithNotifier(dispatcher),
		monthlypass.WithInvalidator(avail),
	)
	if err != nil {
		return nil, fmt.Errorf("init monthly pass engine: %w", err)
	}

	courts.InitHandlers(database.Queries, avail)
	bookings.InitHandlers(bookingEngine, booking.Settings{PaymentsEnabled: cfg.Booking.PaymentsEnabled})
	blocksapi.InitHandlers(blockEngine)
	monthlypasses.InitHandlers(passEngine)
	alertsapi.InitHandlers(alertSvc)
	operatinghours.InitHandlers(database.Queries, avail)
	notifications.InitHandlers(database.Queries, clock)

	a.limiter = ratelimit.New(&ratelimit.Config{MaxPerUser: cfg.RateLimit.AdmissionsPerMinute})

	if err := scheduler.Init(); err != nil {
		return nil, fmt.Errorf("init scheduler: %w", err)
	}
	if err := scheduler.RegisterJobs(scheduler.Jobs{
		DB:       database,
		Config:   cfg.Scheduler,
		Booking:  cfg.Booking,
		Sender:   sender,
		Alerts:   alertSvc,
		Passes:   passEngine,
		Notifier: dispatcher,
		Clock:    clock,
	}); err != nil {
		return nil, fmt.Errorf("register jobs: %w", err)
	}

	ok = true
	return a, nil
}

// Close releases every dependency that was opened.
func (a *app) Close() {
	a.closeOnce.Do(func() {
		if a.limiter != nil {
			a.limiter.Close()
		}
		if a.publisher != nil {
			if err := a.publisher.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close event publisher")
			}
		}
		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close redis client")
			}
		}
		if a.db != nil {
			if err := a.db.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close database")
			}
		}
	})
}

func newServer(cfg *config.Config, a *app) *http.Server {
	router := http.NewServeMux()
	registerRoutes(router, a.limiter)

	handler := api.ChainMiddleware(
		router,
		auth.Middleware(a.tokens, a.db.Queries),
		api.WithJSONBody,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, limiter *ratelimit.Limiter) {
	admission := func(h http.HandlerFunc) http.Handler {
		return limiter.Middleware(h)
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Read model
	mux.HandleFunc("GET /api/v1/courts/{id}/availability", courts.HandleAvailability)
	mux.HandleFunc("GET /api/v1/courts/{id}/slots", courts.HandleSlots)
	mux.HandleFunc("PATCH /api/v1/courts/{id}", courts.HandleCourtUpdate)

	// Bookings
	mux.Handle("POST /api/v1/bookings", admission(bookings.HandleCreate))
	mux.HandleFunc("POST /api/v1/bookings/{id}/confirm", bookings.HandleConfirm)
	mux.HandleFunc("POST /api/v1/bookings/{id}/cancel", bookings.HandleCancel)

	// Blocks
	mux.Handle("POST /api/v1/blocks", admission(blocksapi.HandleCreate))
	mux.Handle("POST /api/v1/blocks/series", admission(blocksapi.HandleCreateSeries))
	mux.HandleFunc("DELETE /api/v1/blocks/{id}", blocksapi.HandleDelete)

	// Monthly passes
	mux.Handle("POST /api/v1/monthly-passes", admission(monthlypasses.HandleRequest))
	mux.HandleFunc("GET /api/v1/monthly-passes", monthlypasses.HandleList)
	mux.HandleFunc("GET /api/v1/monthly-passes/{id}", monthlypasses.HandleGet)
	mux.HandleFunc("POST /api/v1/monthly-passes/{id}/confirm", monthlypasses.HandleConfirm)
	mux.HandleFunc("POST /api/v1/monthly-passes/{id}/cancel", monthlypasses.HandleCancel)

	// Availability alerts
	mux.Handle("POST /api/v1/alerts", admission(alertsapi.HandleRegister))
	mux.HandleFunc("GET /api/v1/alerts", alertsapi.HandleList)
	mux.HandleFunc("DELETE /api/v1/alerts/{id}", alertsapi.HandleDeactivate)

	// Operating hours and holidays
	mux.HandleFunc("GET /api/v1/establishments/{id}/hours", operatinghours.HandleHoursGet)
	mux.HandleFunc("PUT /api/v1/establishments/{id}/hours", operatinghours.HandleScheduleUpdate)
	mux.HandleFunc("PUT /api/v1/establishments/{id}/hours/{day_of_week}", operatinghours.HandleWeekdayHoursUpdate)
	mux.HandleFunc("DELETE /api/v1/establishments/{id}/hours/{day_of_week}", operatinghours.HandleWeekdayHoursDelete)
	mux.HandleFunc("PUT /api/v1/establishments/{id}/holidays/{date}", operatinghours.HandleHolidayUpsert)
	mux.HandleFunc("DELETE /api/v1/establishments/{id}/holidays/{date}", operatinghours.HandleHolidayDelete)
	mux.HandleFunc("GET /api/v1/establishments/{id}/calendar", operatinghours.HandleCalendarDay)

	// Notifications
	mux.HandleFunc("GET /api/v1/notifications", notifications.HandleNotificationsList)
	mux.HandleFunc("POST /api/v1/notifications/{id}/read", notifications.HandleNotificationRead)
}
