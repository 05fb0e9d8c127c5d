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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/tunafishyummy/kosen-website/internal/checkout"
	h "github.com/tunafishyummy/kosen-website/internal/http"
	"github.com/tunafishyummy/kosen-website/internal/pricing"
	"github.com/tunafishyummy/kosen-website/internal/service"
	"github.com/tunafishyummy/kosen-website/internal/store"
	"github.com/tunafishyummy/kosen-website/internal/view"
)

type Config struct {
	HTTPPort        string
	StoreBackend    string // memory | redis | mongo
	RedisAddr       string
	RedisPassword   string
	MongoURI        string
	MongoDBName     string
	Locale          string
	SessionTTL      time.Duration
	RequestTimeout  time.Duration
	GeocodeTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		StoreBackend:    getEnv("STORE_BACKEND", "redis"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "kosenshop"),
		Locale:          getEnv("LOCALE", "en"),
		SessionTTL:      30 * time.Minute,
		RequestTimeout:  30 * time.Second,
		GeocodeTimeout:  5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	kv, closeKV, err := newSessionKV(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to set up session store", zap.Error(err))
	}
	defer closeKV()

	cartStore := store.NewCartStore(kv, logger)
	carts := service.NewCartService(cartStore, logger)

	// View surfaces: re-rendered after every mutation, served as
	// plain-text fragments.
	fmtr := pricing.NewFormatter(language.Make(cfg.Locale))
	badge := view.NewBadge()
	listing := view.NewListing(fmtr)
	summary := view.NewSummary(fmtr)

	notifier := view.NewNotifier(cartStore, logger)
	notifier.Register(badge, listing, summary)
	cartStore.Subscribe(notifier)

	co := checkout.NewCheckout(carts, fmtr, logger)
	geocoder := checkout.NewGeocoder(cfg.GeocodeTimeout, logger)

	cartHandler := h.NewCartHandler(carts, cfg.RequestTimeout, logger)
	viewHandler := h.NewViewHandler(notifier, logger, badge, listing, summary)
	checkoutHandler := h.NewCheckoutHandler(co, geocoder, cfg.RequestTimeout, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Post("/items/{id}/increment", cartHandler.Increment)
			r.Post("/items/{id}/decrement", cartHandler.Decrement)
			r.Delete("/items/{id}", cartHandler.RemoveItem)
		})
		r.Get("/views/{surface}", viewHandler.GetView)
		r.Post("/checkout", checkoutHandler.PlaceOrder)
		r.Get("/geocode/reverse", checkoutHandler.ReverseGeocode)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "cart-server"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("cart server listening",
			zap.String("port", cfg.HTTPPort),
			zap.String("store_backend", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down cart server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	logger.Info("cart server stopped")
}

// newSessionKV picks the persistence medium. Redis is the default; the
// memory backend keeps everything in-process for dev and tests.
func newSessionKV(ctx context.Context, cfg *Config, logger *zap.Logger) (store.SessionKV, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemoryKV(), func() {}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		return store.NewRedisKV(client, cfg.SessionTTL), func() { client.Close() }, nil

	case "mongo":
		db, err := store.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		kv := store.NewMongoKV(db, cfg.SessionTTL)
		if err := kv.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		logger.Info("connected to mongodb", zap.String("uri", cfg.MongoURI))
		cleanup := func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				logger.Warn("mongo disconnect failed", zap.Error(err))
			}
		}
		return kv, cleanup, nil

	default:
		return nil, nil, errors.New("unknown STORE_BACKEND: " + cfg.StoreBackend)
	}
}
