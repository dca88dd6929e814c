package bootstrap

import (
	"log"
	"time"

	"snapshop-be/internal/config"
	"snapshop-be/internal/controller"
	"snapshop-be/internal/pkg/logger"
	"snapshop-be/internal/service"
	"snapshop-be/internal/websocket"
	"snapshop-be/pkg/detector"
	"snapshop-be/pkg/lens"
	"snapshop-be/pkg/llm/factory"
	"snapshop-be/pkg/pipeline"

	pkgNats "snapshop-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	SearchController controller.ISearchController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS (optional mirror; the pipeline never depends on it being up)
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(wsLogger)
	go wsHub.Run()

	// 3. External providers
	lensEngine := lens.NewSerpApiClient(
		cfg.Keys.SerpApi,
		cfg.Search.Locale,
		cfg.Search.Language,
		time.Duration(cfg.Pipeline.SearchTimeoutSec)*time.Second,
	)
	objectDetector := detector.NewHTTPDetector(cfg.Search.DetectorBaseURL)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Pipeline
	retriever := pipeline.NewRetriever(
		lensEngine,
		time.Duration(cfg.Search.PoolCacheTTLMin)*time.Minute,
		sysLogger,
	)
	ranker := pipeline.NewRanker(
		llmProvider,
		time.Duration(cfg.Pipeline.RankTimeoutSec)*time.Second,
		sysLogger,
	)
	validator := pipeline.NewValidator(sysLogger)
	fallbackRunner := pipeline.NewFallbackRunner(retriever, ranker, validator, sysLogger)

	publisherService := service.NewPublisherService(pubSub, cfg.Pipeline.ProgressTopic, natsPub, sysLogger)
	aggregator := pipeline.NewAggregator(
		retriever,
		ranker,
		validator,
		fallbackRunner,
		time.Duration(cfg.Pipeline.OverallTimeoutSec)*time.Second,
		publisherService,
		sysLogger,
	)

	// 5. Services
	consumerService := service.NewConsumerService(pubSub, cfg.Pipeline.ProgressTopic, wsHub, wsLogger)
	searchService := service.NewSearchService(aggregator, objectDetector, sysLogger)

	// 6. Controllers
	return &Container{
		SearchController: controller.NewSearchController(searchService, wsHub),
		ConsumerService:  consumerService,
		WebSocketHub:     wsHub,
	}
}
