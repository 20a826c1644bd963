package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/llm"
	natsadapter "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/repository/cache"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/admin"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/chat"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/handler"
	listingdomain "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	listingusecase "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/mailer"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/auth"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/tracer"
	reportusecase "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/report/usecase"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/router"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/search"
	userusecase "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/user/usecase"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg           *config.Config
	logger        *logger.Logger
	httpServer    *http.Server
	metricsServer *metrics.Server
	mongoClient   *mongo.Client
	redisClient   *redis.Client
	publisher     *natsadapter.Publisher
	tracer        *sdktrace.TracerProvider
}

// New connects every backing service and assembles the HTTP stack.
// MongoDB is required; Redis, NATS, MinIO, SMTP and the search LLM are
// enabled only when configured.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: log}

	a.tracer = tracer.InitTracer(cfg.Service.Name, cfg.Service.OTLPEndpoint, log)
	metricsManager := metrics.NewMetricsManager(namespace(cfg.Service.Name))
	a.metricsServer = metrics.NewServer(cfg.Service.MetricsPort, metricsManager.Registry, log)

	mongoClient, err := mongodb.NewMongoDBConnection(cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	a.mongoClient = mongoClient
	db := mongoClient.Database(cfg.Mongo.Database)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		a.closeClients(ctx)
		return nil, fmt.Errorf("ensure MongoDB indexes: %w", err)
	}
	log.Info("Successfully connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	listingRepo := mongodb.NewListingRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	roomRepo := mongodb.NewChatRoomRepository(db)
	messageRepo := mongodb.NewChatMessageRepository(db)
	reportRepo := mongodb.NewReportRepository(db)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	userUC := userusecase.NewUserUsecase(userRepo, tokens, log)
	if err := userUC.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		a.closeClients(ctx)
		return nil, fmt.Errorf("seed admin account: %w", err)
	}

	deps := listingusecase.Deps{Sellers: userUC, Metrics: metricsManager}
	if cfg.Redis.Address != "" {
		client, err := cache.NewRedisClient(cfg.Redis, log)
		if err != nil {
			log.Warn("Redis unavailable, listing cache disabled", zap.Error(err))
		} else {
			a.redisClient = client
			deps.Cache = cache.NewListingCache(client, cfg.Redis.ListingCacheTTL, log)
		}
	}
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewNATSPublisher(cfg.NATS, log)
		if err != nil {
			log.Warn("NATS unavailable, domain events disabled", zap.Error(err))
		} else {
			a.publisher = pub
			deps.Publisher = pub
		}
	}
	if cfg.SMTP.Host != "" {
		deps.Notifier = mailer.NewSMTPNotifier(cfg.SMTP, log)
	} else {
		deps.Notifier = mailer.NewLogNotifier(log)
	}
	listingUC := listingusecase.NewListingUsecase(listingRepo, log, deps)

	var storage listingdomain.Storage = disabledStorage{}
	if cfg.MinIO.Endpoint != "" {
		s, err := s3.NewS3Storage(ctx, cfg.MinIO, log)
		if err != nil {
			log.Warn("Object storage unavailable, photo upload disabled", zap.Error(err))
		} else {
			storage = s
		}
	}
	photoUC := listingusecase.NewPhotoUsecase(storage, log)

	searchSvc := search.NewService(
		search.NewFallbackParser(remoteParser(ctx, cfg.Search, log), log, metricsManager),
		listingRepo, log, metricsManager,
	)

	moderator, err := chat.NewModerator(cfg.Chat.Words())
	if err != nil {
		a.closeClients(ctx)
		return nil, fmt.Errorf("build chat moderator: %w", err)
	}
	registry := chat.NewRegistry(metricsManager)
	broadcastOpts := []chat.BroadcastOption{chat.WithModerator(moderator), chat.WithMetrics(metricsManager)}
	if a.publisher != nil {
		broadcastOpts = append(broadcastOpts, chat.WithEventPublisher(a.publisher))
	}
	broadcast := chat.NewBroadcastService(registry, messageRepo, roomRepo, log, broadcastOpts...)
	rooms := chat.NewRoomService(roomRepo, messageRepo, listingRepo, log)

	reportUC := reportusecase.NewReportUsecase(reportRepo, listingRepo, log)
	summary := admin.NewSummaryService(userUC, listingUC, reportUC)

	mux := router.New(router.Handlers{
		Auth:    handler.NewAuthHandler(userUC, log),
		Listing: handler.NewListingHandler(listingUC, photoUC, log),
		Search:  handler.NewSearchHandler(searchSvc, log),
		Chat:    handler.NewChatHandler(rooms, broadcast, registry, cfg.Chat.WriteTimeout, log),
		Report:  handler.NewReportHandler(reportUC, log),
		Admin:   handler.NewAdminHandler(summary, listingUC, userUC, reportUC, log),
	}, tokens, cfg.Service.CORSAllowedOrigins, metricsManager, log)

	a.httpServer = &http.Server{
		Addr:              ":" + cfg.Service.HTTPPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// remoteParser returns nil when no API key is configured, which keeps search heuristic-only.
func remoteParser(ctx context.Context, cfg config.SearchConfig, log *logger.Logger) search.Parser {
	key := cfg.APIKey()
	if key == "" {
		log.Info("Search LLM disabled, using heuristic parser only")
		return nil
	}

	var (
		completer search.Completer
		err       error
	)
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		completer, err = llm.NewGeminiCompleter(ctx, key, cfg.Model)
	default:
		completer, err = llm.NewOpenAICompleter(key, cfg.Model, cfg.BaseURL)
	}
	if err != nil {
		log.Warn("Search LLM client could not be built, using heuristic parser only",
			zap.String("provider", cfg.Provider), zap.Error(err))
		return nil
	}
	log.Info("Search LLM enabled", zap.String("provider", cfg.Provider))
	return search.NewRemoteParser(completer, search.WithTimeout(cfg.Timeout), search.WithMemoSize(cfg.CacheSize))
}

// Run serves HTTP and metrics until SIGINT/SIGTERM or a server failure, then shuts down.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("HTTP server starting", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.metricsServer.Start(); err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down servers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Service.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
		}
		a.closeClients(shutdownCtx)
		return errors.Join(errs...)
	})

	err := g.Wait()
	a.logger.Info("Service stopped")
	return err
}

func (a *App) closeClients(ctx context.Context) {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("Error closing Redis client", zap.Error(err))
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.logger.Error("Error disconnecting from MongoDB", zap.Error(err))
		} else {
			a.logger.Info("Disconnected from MongoDB")
		}
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			a.logger.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}
}

// namespace turns a service name into a valid Prometheus metric prefix.
func namespace(service string) string {
	return strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(strings.ToLower(service))
}

type disabledStorage struct{}

func (disabledStorage) Upload(context.Context, string, string, []byte) (string, error) {
	return "", listingdomain.ErrStorageDisabled
}
