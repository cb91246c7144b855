package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-assistant-be/internal/config"
	"ai-assistant-be/internal/controller"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/internal/service"
	"ai-assistant-be/pkg/docindex"
	"ai-assistant-be/pkg/embedding"
	"ai-assistant-be/pkg/llm/factory"
	pktNats "ai-assistant-be/pkg/nats"
	"ai-assistant-be/pkg/rag/intent"
	"ai-assistant-be/pkg/rag/search"
	"ai-assistant-be/pkg/websearch"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const embedTurnTopicName = "EMBED_TURN_CONTENT"

type Container struct {
	// Controllers
	AskController    controller.IAskController
	ThreadController controller.IThreadController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
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

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbeddingModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}
	// Query embeddings repeat often across turns; cache them in-process.
	embeddingProvider = embedding.NewCachingProvider(embeddingProvider)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)

	retrievalLogger := log.Default()

	var pageCache search.PageCache
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis, page cache disabled: %v", err)
	} else {
		pageCache = search.NewRedisPageCache(rdb, 15*time.Minute, retrievalLogger)
	}

	// 5. Retrieval
	unitCfg := search.UnitConfig{
		FetchTimeout:  time.Duration(cfg.Search.WebFetchTimeoutMs) * time.Millisecond,
		MinContentLen: cfg.Search.MinContentChars,
		ChunkSize:     cfg.Search.ChunkChars,
	}
	webUnit := search.NewWebUnit(embeddingProvider, pageCache, retrievalLogger, unitCfg)

	var indexSearcher search.IndexSearcher
	if cfg.Search.IndexBaseURL != "" {
		indexSearcher = service.NewIndexSearchAdapter(docindex.NewClient(cfg.Search.IndexBaseURL, cfg.Search.IndexAPIKey))
	} else {
		log.Printf("[INFO] Document/email index not configured, provider disabled")
	}

	engineCfg := search.DefaultConfig()
	engineCfg.TopK = cfg.Search.TopK
	engineCfg.WebResultCap = cfg.Search.WebResultCap

	engine := search.NewEngine(
		service.NewMemorySearchAdapter(uowFactory, cfg.Search.MemoryThreshold),
		indexSearcher,
		websearch.NewClient(),
		webUnit,
		llmProvider,
		retrievalLogger,
		engineCfg,
	)

	classifier := intent.NewClassifier(
		llmProvider,
		retrievalLogger,
		time.Duration(cfg.Search.ClassifierTimeoutS)*time.Second,
	)

	// 6. Services
	publisherService := service.NewPublisherService(embedTurnTopicName, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		embedTurnTopicName,
		uowFactory,
		embeddingProvider,
	)

	askService := service.NewAskService(classifier, engine, embeddingProvider, llmProvider, sysLogger)
	threadService := service.NewThreadService(uowFactory, publisherService, natsPub)

	return &Container{
		AskController:    controller.NewAskController(askService),
		ThreadController: controller.NewThreadController(threadService),
		ConsumerService:  consumerService,
	}
}
