package bootstrap

import (
	"context"
	"log"
	"time"

	"sparke-core-be/internal/config"
	"sparke-core-be/internal/controller"
	internalEvents "sparke-core-be/internal/events"
	"sparke-core-be/internal/pkg/internalauth"
	"sparke-core-be/internal/pkg/logger"
	"sparke-core-be/internal/repository/unitofwork"
	"sparke-core-be/internal/service"
	"sparke-core-be/pkg/blob"
	"sparke-core-be/pkg/embedding"
	"sparke-core-be/pkg/embedding/jina"
	pktNats "sparke-core-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	HealthController   controller.IHealthController
	DocumentController controller.IDocumentController
	SearchController   controller.ISearchController
	InsightController  controller.IInsightController
	InternalController controller.IInternalController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Held for shutdown
	JobPublisher *pktNats.Publisher
	Logger       logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Collaborators
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = jina.NewJinaProvider(cfg.Ai.JinaAPIKey, "")
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	}

	// NATS: connection retries in the background, a dead broker surfaces as
	// SERVICE_UNAVAILABLE on publish instead of killing the process.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	blobStore, err := blob.NewFsStore(cfg.Blob.Dir, cfg.Blob.BaseURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize blob store: %v", err)
	}

	// Redis backs the search rate limiter; without it the limiter falls back
	// to per-instance in-memory counting.
	var limiterStorage fiber.Storage
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Rate limiting is per-instance", err)
	} else {
		limiterStorage = newRedisStorage(rdb)
	}

	streamLogger := logger.NewIsolatedLogger("logs/insight-stream.log")
	broadcaster := internalEvents.NewBroadcaster(streamLogger)

	verifier := internalauth.NewVerifier(
		cfg.InternalAuth.Secret,
		cfg.InternalAuth.LegacyKey,
		cfg.InternalAuth.AllowLegacyKey,
	)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.AnalysisBusTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.AnalysisBusTopic, natsPub)

	documentService := service.NewDocumentService(uowFactory, blobStore, natsPub, sysLogger)
	internalService := service.NewInternalService(uowFactory, publisherService, broadcaster, cfg.Engine.Dimension, sysLogger)
	searchService := service.NewSearchService(
		uowFactory,
		embeddingProvider,
		cfg.Engine.Dimension,
		cfg.Search.MaxOffset,
		sysLogger,
	)
	insightService := service.NewInsightService(uowFactory, natsPub, broadcaster, sysLogger)

	searchLimiter := limiter.New(limiter.Config{
		Max:        cfg.Search.RateLimitPerMin,
		Expiration: time.Minute,
		Storage:    limiterStorage,
		KeyGenerator: func(ctx *fiber.Ctx) string {
			if userId, ok := ctx.Locals("user_id").(string); ok && userId != "" {
				return userId
			}
			return ctx.IP()
		},
	})

	// 5. Controllers
	return &Container{
		HealthController:   controller.NewHealthController(db, blobStore, natsPub),
		DocumentController: controller.NewDocumentController(documentService),
		SearchController:   controller.NewSearchController(searchService, searchLimiter),
		InsightController:  controller.NewInsightController(insightService),
		InternalController: controller.NewInternalController(internalService, verifier),

		ConsumerService: consumerService,

		JobPublisher: natsPub,
		Logger:       sysLogger,
	}
}
