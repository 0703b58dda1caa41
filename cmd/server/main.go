package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/config"
	"github.com/tanguyors/bali-pass-home/internal/domain/community"
	"github.com/tanguyors/bali-pass-home/internal/domain/favorites"
	"github.com/tanguyors/bali-pass-home/internal/domain/itineraries"
	"github.com/tanguyors/bali-pass-home/internal/domain/offers"
	"github.com/tanguyors/bali-pass-home/internal/domain/passes"
	"github.com/tanguyors/bali-pass-home/internal/domain/redemptions"
	"github.com/tanguyors/bali-pass-home/internal/domain/session"
	"github.com/tanguyors/bali-pass-home/internal/events"
	"github.com/tanguyors/bali-pass-home/internal/external"
	"github.com/tanguyors/bali-pass-home/internal/handler"
	"github.com/tanguyors/bali-pass-home/internal/helpers"
	"github.com/tanguyors/bali-pass-home/internal/jobs"
	authmw "github.com/tanguyors/bali-pass-home/internal/middleware"
	"github.com/tanguyors/bali-pass-home/internal/storage/postgres"
	"github.com/tanguyors/bali-pass-home/internal/storage/redis"
)

var logger = helpers.NewLogger("server")

func main() {
	cfg := config.LoadConfig()
	helpers.ConfigureLogging(cfg.LogLevel)

	db, err := postgres.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	logger.Info().Msg("Connected to PostgreSQL database")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing Redis client")
		}
	}()
	logger.Info().Msg("Connected to Redis")

	publisher := events.NewAMQPPublisher(cfg.AMQPURL)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing AMQP publisher")
		}
	}()

	offerRepo := postgres.NewOfferRepository(db)
	favoriteRepo := postgres.NewFavoriteRepository(db)
	passRepo := postgres.NewPassRepository(db)
	redemptionRepo := postgres.NewRedemptionRepository(db)
	itineraryRepo := postgres.NewItineraryRepository(db)
	communityRepo := postgres.NewCommunityRepository(db)
	userRepo := postgres.NewUserRepository(db)

	favoritesService := favorites.NewService(favoriteRepo)
	passesService := passes.NewService(passRepo)

	offersService := offers.NewService(offerRepo, favoritesService,
		offers.WithReferenceCache(redis.NewReferenceCache(redisClient), cfg.ReferenceCacheTTL),
		offers.WithTranslator(external.NewClient(cfg.TranslationURL, offers.SourceLang), redis.NewTranslationCache(redisClient)),
		offers.WithPartnerStats(redis.NewPartnerStats(redisClient)),
	)

	redemptionsService := redemptions.NewService(
		redemptionRepo,
		redis.NewScanSessionStore(redisClient),
		redis.NewRedemptionLocks(redisClient),
		passesService,
		publisher,
		cfg.ScanResetDelay,
	)

	itinerariesService := itineraries.NewService(itineraryRepo, itineraries.Links{
		WebBaseURL:     cfg.PublicWebURL,
		DeepLinkScheme: cfg.DeepLinkScheme,
		StaticMapBase:  cfg.MapsStaticURL,
		MapsAPIKey:     cfg.MapsAPIKey,
		Salt:           cfg.ShareSalt,
	})

	communityService := community.NewService(communityRepo)

	sessionStore := session.NewStore()
	sessionService := session.NewService(
		userRepo,
		redis.NewSessionRegistry(redisClient),
		session.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		sessionStore,
		passesService,
		cfg.BcryptCost,
	)

	gate := offers.NewLatestGate()
	unsubscribe := sessionStore.Subscribe(func(ev session.Event) {
		if ev.Type == session.SignedOut {
			gate.Cancel(handler.UserClientKey(ev.UserID))
		}
	})
	defer unsubscribe()

	expiryJob := jobs.NewPassExpiryJob(passesService, cfg.PassExpiryInterval)
	expiryJob.Start()
	defer expiryJob.Stop()

	server := &handler.Server{
		OffersHandler:      handler.NewOffersHandler(offersService, gate),
		FavoritesHandler:   handler.NewFavoritesHandler(favoritesService),
		PassesHandler:      handler.NewPassesHandler(passesService),
		RedemptionsHandler: handler.NewRedemptionsHandler(redemptionsService),
		ItinerariesHandler: handler.NewItinerariesHandler(itinerariesService),
		CommunityHandler:   handler.NewCommunityHandler(communityService),
		AuthHandler:        handler.NewAuthHandler(sessionService),
	}

	swagger, err := api.GetSwagger()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load OpenAPI spec")
	}
	validator, err := helpers.OpenAPIValidator(swagger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build OpenAPI validator")
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		helpers.RequestLoggerWithBody,
	)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.Group(func(r chi.Router) {
		r.Use(
			validator,
			authmw.OptionalAuth(sessionService),
			authmw.NewTokenBucket(cfg.RateLimit, redisClient.Redis()),
		)
		api.HandlerFromMux(server, r)
	})

	addr := fmt.Sprintf(":%s", cfg.Port)

	srv := &http.Server{
		Addr:           addr,
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", addr).Msg("Bali Pass API starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
