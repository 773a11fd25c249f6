package bootstrap

import (
	"context"

	"ai-sqlagent-be/internal/config"
	"ai-sqlagent-be/internal/controller"
	"ai-sqlagent-be/internal/pkg/logger"
	"ai-sqlagent-be/internal/pkg/serverutils"
	"ai-sqlagent-be/internal/repository/contract"
	"ai-sqlagent-be/internal/repository/implementation"
	"ai-sqlagent-be/internal/repository/memory"
	"ai-sqlagent-be/internal/repository/redisstore"
	"ai-sqlagent-be/internal/repository/unitofwork"
	"ai-sqlagent-be/internal/service"
	"ai-sqlagent-be/internal/websocket"

	pktNats "ai-sqlagent-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// turnTopic is the in-process topic finished turns travel on.
const turnTopic = "agent.turns"

type Container struct {
	// Controllers
	AgentController         controller.IAgentController
	KnowledgeBaseController controller.IKnowledgeBaseController // nil without an application database

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHandler *websocket.Handler
	WebSocketHub     *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

// NewContainer builds the application graph. appDB may be nil; the turn
// log, knowledge base and pgvector index are then disabled.
func NewContainer(ctx context.Context, appDB, targetDB *gorm.DB, cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c := &Container{Logger: sysLogger}

	agent, err := NewAgent(ctx, appDB, targetDB, cfg, sysLogger)
	if err != nil {
		return nil, err
	}

	// Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// NATS is optional; turns are still logged without it.
	var eventBus service.EventPublisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			eventBus = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	rdb := newRedis(ctx, cfg, sysLogger)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	var sessions contract.SessionHistoryStore
	if cfg.App.HistoryStore == "redis" && rdb != nil {
		sessions = redisstore.NewSessionRepository(rdb, cfg.App.SessionTTL)
	} else {
		sessions = memory.NewSessionRepository(cfg.App.SessionTTL)
	}

	var turnRepo contract.TurnRepository
	if appDB != nil {
		turnRepo = implementation.NewTurnRepository(appDB)
	}

	publisherService := service.NewPublisherService(turnTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		turnTopic,
		turnRepo,
		eventBus,
		cfg.App.TurnEventsSubject,
		sysLogger,
	)

	agentService := service.NewAgentService(
		agent.Orchestrator,
		sessions,
		turnRepo,
		publisherService,
		sysLogger,
		cfg.Agent.HistoryMaxEntries,
	)

	auth := serverutils.NewJwtMiddleware(cfg.App.JWTSecret)
	c.AgentController = controller.NewAgentController(agentService, auth)

	if appDB != nil && agent.Embedder != nil {
		kbService := service.NewKnowledgeBaseService(
			unitofwork.NewRepositoryFactory(appDB),
			agent.Embedder,
			cfg.Retrieval.ChunkSize,
			cfg.Retrieval.ChunkOverlap,
			sysLogger,
		)
		c.KnowledgeBaseController = controller.NewKnowledgeBaseController(kbService, auth)
	}

	wsLogger := logger.NewIsolatedLogger(cfg.App.WSLogFilePath)
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)
	c.WebSocketHandler = websocket.NewHandler(c.WebSocketHub, agentService, auth, wsLogger)

	return c, nil
}

func newRedis(ctx context.Context, cfg *config.Config, log logger.ILogger) *redis.Client {
	if cfg.App.RedisURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
