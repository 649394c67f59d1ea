package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"globetrail/booking"
	"globetrail/config"
	"globetrail/database"
	"globetrail/handlers"
	"globetrail/itinerary"
	"globetrail/logger"
	"globetrail/middleware"
	"globetrail/services"
	"globetrail/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load .env file (ignored in production where env vars are set directly)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("❌ logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ─── Storage ─────────────────────────────────────────────────────────
	store, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, zl)
	if err != nil {
		zl.Fatal("❌ MongoDB connection failed", zap.Error(err))
	}
	health := map[string]handlers.Pinger{"mongo": store}

	var rdb *redis.Client
	var sessionStore session.Store
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Fatal("❌ Redis connection failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		zl.Info("✅ Redis connected", zap.String("addr", cfg.RedisAddr))
		sessionStore = session.NewRedisStore(rdb, cfg.SessionTTL)
		health["redis"] = redisPinger{rdb}
	} else {
		zl.Warn("⚠️  REDIS_ADDR not set, sessions and seat updates stay in process")
		sessionStore = session.NewMemoryStore(cfg.SessionTTL)
	}

	var history *database.SearchHistory
	if cfg.PostgresDSN != "" {
		history, err = database.OpenSearchHistory(ctx, cfg.PostgresDSN, zl)
		if err != nil {
			zl.Fatal("❌ PostgreSQL connection failed", zap.Error(err))
		}
		health["postgres"] = history
	}

	var events *services.Publisher
	if cfg.RabbitURL != "" {
		events, err = services.NewPublisher(cfg.RabbitURL, zl)
		if err != nil {
			zl.Warn("⚠️  RabbitMQ unavailable, booking events disabled", zap.Error(err))
		}
	}

	// ─── Providers ───────────────────────────────────────────────────────
	var provider itinerary.TextGenerator
	switch cfg.AIProvider {
	case "huggingface":
		provider = services.NewHFClient(cfg.HFKey, cfg.HFModel, "", zl)
	default:
		provider = services.NewGeminiClient(ctx, cfg.GeminiKey, cfg.GeminiModel, "", zl)
	}

	places := services.NewPlacesClient(cfg.GoogleMapsKey, "", cfg.PublicURL, zl)
	amadeus := services.NewAmadeusClient(cfg.AmadeusID, cfg.AmadeusSecret, cfg.AmadeusBaseURL, zl)

	verifier, err := session.NewVerifier(cfg.Identity, zl)
	if err != nil {
		zl.Fatal("❌ identity verifier", zap.Error(err))
	}

	// ─── Services ────────────────────────────────────────────────────────
	seats := booking.NewSeatHub(rdb, zl)
	go seats.Run(ctx)

	deps := handlers.Deps{
		Generator:    itinerary.NewGenerator(provider, cfg.AIProvider, places, zl),
		Itineraries:  itinerary.NewService(store, events, zl),
		Bookings:     booking.NewService(store, events, seats, zl),
		Seats:        seats,
		Flights:      amadeus,
		PlacesHotels: places,
		Photos:       places,
		Users:        store,
		Reviews:      store,
		Reference:    store,
		Identity:     verifier,
		Sessions:     session.NewManager(sessionStore, cfg.SessionTTL, cfg.SecureCookies, zl),
		Health:       health,
		MapsKey:      cfg.GoogleMapsKey,
		Log:          zl,
	}
	if amadeus.Configured() {
		deps.CityHotels = amadeus
	}
	if history != nil {
		deps.History = history
	}
	h := handlers.New(deps)

	// ─── HTTP ────────────────────────────────────────────────────────────
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(zl))

	// Trusted proxies (the platform sits behind a proxy)
	r.SetTrustedProxies([]string{"0.0.0.0/0"})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURLs,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", handlers.IdempotencyHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(deps.Sessions.Load())

	h.RegisterRoutes(r, middleware.NewRateLimiter(cfg.GenerateLimit).Limit())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("🚀 GlobeTrail backend starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("❌ server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("❌ graceful shutdown failed", zap.Error(err))
	}

	events.Close()
	if history != nil {
		history.Close()
	}
	if rdb != nil {
		rdb.Close()
	}
	if err := store.Close(shutdownCtx); err != nil {
		zl.Warn("⚠️  MongoDB close failed", zap.Error(err))
	}
}

// redisPinger adapts the Redis client to the health check.
type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}
