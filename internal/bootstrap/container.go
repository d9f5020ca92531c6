package bootstrap

import (
	"context"
	"log"
	"time"

	"genie-chat-be/internal/config"
	"genie-chat-be/internal/controller"
	"genie-chat-be/internal/pkg/logger"
	"genie-chat-be/internal/pkg/mailer"
	"genie-chat-be/internal/pkg/serverutils"
	"genie-chat-be/internal/repository/memory"
	"genie-chat-be/internal/repository/unitofwork"
	"genie-chat-be/internal/service"
	"genie-chat-be/internal/websocket"
	"genie-chat-be/pkg/events"
	"genie-chat-be/pkg/llm"
	"genie-chat-be/pkg/llm/azure"
	"genie-chat-be/pkg/llm/factory"
	pktNats "genie-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const ownershipCacheTTL = 30 * time.Minute

type Container struct {
	// Controllers
	AuthController         controller.IAuthController
	ConversationController controller.IConversationController
	MessageController      controller.IMessageController
	CompletionController   controller.ICompletionController
	RealtimeController     controller.IRealtimeController

	Tokens *serverutils.TokenManager
	Logger logger.ILogger

	// Background Services (started by Start)
	ConsumerService service.IConsumerService
	RealtimeService *service.RealtimeService
	WebSocketHub    *websocket.Hub

	closers []func()
}

// Infrastructure holds the external collaborators of the container. Nil fields fall back to
// in-process implementations.
type Infrastructure struct {
	Logger     logger.ILogger
	Events     events.Publisher
	Subscriber service.EventSubscriber
	Redis      *redis.Client
	LLM        llm.LLMProvider
	Email      mailer.IEmailService
}

// NewContainer connects to NATS, Redis, SMTP and the completion provider described by cfg.
// Unreachable NATS or Redis degrade to in-process delivery.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	infra := Infrastructure{Logger: sysLogger}
	var closers []func()

	// NATS
	if natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL); err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		infra.Events = natsPub
		closers = append(closers, natsPub.Close)
	}
	if natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL); err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		infra.Subscriber = natsSub
		closers = append(closers, natsSub.Close)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (realtime stays instance-local)", err)
		_ = rdb.Close()
	} else {
		infra.Redis = rdb
		closers = append(closers, func() { _ = rdb.Close() })
	}

	// SMTP
	if cfg.SMTP.Host != "" {
		infra.Email = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.SenderName,
			sysLogger,
		)
	}

	// LLM
	llmProvider, err := factory.NewLLMProvider(LLMConfig(cfg))
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s", llmProvider.Name())
	infra.LLM = llmProvider

	c := NewContainerWith(db, cfg, infra)
	c.closers = append(c.closers, closers...)
	return c
}

// LLMConfig maps application settings onto the provider factory.
func LLMConfig(cfg *config.Config) factory.Config {
	fc := factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Azure: azure.Config{
			Endpoint:   cfg.Ai.Endpoint,
			APIKey:     cfg.Ai.APIKey,
			Deployment: cfg.Ai.Deployment,
			APIVersion: cfg.Ai.APIVersion,
		},
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		OllamaModel:   cfg.Ai.OllamaModel,
		Defaults: llm.Options{
			Temperature: cfg.Ai.Temperature,
			TopP:        cfg.Ai.TopP,
			MaxTokens:   cfg.Ai.MaxTokens,
		},
	}
	if cfg.Search.Endpoint != "" && cfg.Search.Index != "" {
		fc.Azure.DataSource = &azure.SearchDataSource{
			Endpoint:              cfg.Search.Endpoint,
			Key:                   cfg.Search.Key,
			IndexName:             cfg.Search.Index,
			SemanticConfiguration: cfg.Search.SemanticConfiguration,
		}
	}
	return fc
}

func NewContainerWith(db *gorm.DB, cfg *config.Config, infra Infrastructure) *Container {
	if infra.Logger == nil {
		infra.Logger = logger.NewNopLogger()
	}
	if infra.Email == nil {
		infra.Email = mailer.NopEmailService{}
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	tokens := serverutils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	ownership := memory.NewOwnershipCache(ownershipCacheTTL)

	// Realtime hub; Redis fans frames out across instances when available.
	wsLogger := infra.Logger
	if cfg.App.RealtimeLogPath != "" && cfg.IsProduction() {
		wsLogger = logger.NewIsolatedLogger(cfg.App.RealtimeLogPath)
	}
	wsHub := websocket.NewHub(infra.Redis, wsLogger)

	// Without a bus, events go straight to the hub.
	var relay *service.RealtimeService
	eventPublisher := infra.Events
	if eventPublisher == nil {
		eventPublisher = &directPublisher{delivery: wsHub, logger: infra.Logger}
	} else if infra.Subscriber != nil {
		relay = service.NewRealtimeService(infra.Subscriber, wsHub, wsLogger)
	}

	// Completion audit log bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	logPublisher := service.NewPublisherService(pubSub, cfg.App.CompletionLogTopic)
	consumerService := service.NewConsumerService(pubSub, cfg.App.CompletionLogTopic, uowFactory, infra.Logger)

	authService := service.NewAuthService(uowFactory, tokens, cfg.Auth.BcryptCost, infra.Email, eventPublisher, infra.Logger)
	conversationService := service.NewConversationService(uowFactory, ownership, eventPublisher, infra.Logger)
	messageService := service.NewMessageService(uowFactory, ownership, eventPublisher, infra.Logger)
	completionService := service.NewCompletionService(infra.LLM, cfg.Ai.SystemPrompt, logPublisher, eventPublisher, infra.Logger)

	return &Container{
		AuthController:         controller.NewAuthController(authService),
		ConversationController: controller.NewConversationController(conversationService),
		MessageController:      controller.NewMessageController(messageService),
		CompletionController:   controller.NewCompletionController(completionService),
		RealtimeController:     controller.NewRealtimeController(wsHub, tokens, wsLogger),

		Tokens: tokens,
		Logger: infra.Logger,

		ConsumerService: consumerService,
		RealtimeService: relay,
		WebSocketHub:    wsHub,

		closers: []func(){func() { _ = pubSub.Close() }},
	}
}

// Start runs the background workers until ctx is cancelled.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return err
	}
	if c.RealtimeService != nil {
		if err := c.RealtimeService.Start(ctx); err != nil {
			c.Logger.Warn("BOOTSTRAP", "Realtime relay unavailable", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

// directPublisher hands events to the hub in-process when no bus is configured.
type directPublisher struct {
	delivery service.RealtimeDelivery
	logger   logger.ILogger
}

func (p *directPublisher) Publish(ctx context.Context, event events.Event) error {
	return service.NewRealtimeService(nil, p.delivery, p.logger).HandleEvent(ctx, event)
}
