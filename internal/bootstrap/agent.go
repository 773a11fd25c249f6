package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"ai-sqlagent-be/internal/config"
	"ai-sqlagent-be/internal/pkg/logger"
	"ai-sqlagent-be/internal/repository/implementation"
	"ai-sqlagent-be/internal/service"
	"ai-sqlagent-be/pkg/agent/answer"
	"ai-sqlagent-be/pkg/agent/executor"
	"ai-sqlagent-be/pkg/agent/pipeline"
	"ai-sqlagent-be/pkg/agent/retrieval"
	"ai-sqlagent-be/pkg/agent/route"
	"ai-sqlagent-be/pkg/agent/selector"
	"ai-sqlagent-be/pkg/agent/synth"
	"ai-sqlagent-be/pkg/catalog"
	"ai-sqlagent-be/pkg/catalog/postgres"
	"ai-sqlagent-be/pkg/catalog/sqlite"
	"ai-sqlagent-be/pkg/catalog/sqlserver"
	"ai-sqlagent-be/pkg/database"
	"ai-sqlagent-be/pkg/embedding"
	"ai-sqlagent-be/pkg/embedding/jina"
	"ai-sqlagent-be/pkg/llm"
	"ai-sqlagent-be/pkg/llm/factory"
	"ai-sqlagent-be/pkg/vectorindex"

	"gorm.io/gorm"
)

// Agent bundles the orchestrator with the providers other components share.
type Agent struct {
	Orchestrator *pipeline.Orchestrator
	LLM          llm.LLMProvider
	Embedder     embedding.EmbeddingProvider // nil when nothing needs embeddings
}

// NewEmbeddingProvider picks the backend named by EMBEDDING_PROVIDER.
func NewEmbeddingProvider(ctx context.Context, cfg *config.Config) (embedding.EmbeddingProvider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel), nil
	case "jina":
		return jina.NewJinaProvider(cfg.Keys.Jina, cfg.Ai.EmbeddingModel), nil
	case "gemini", "":
		return embedding.NewGeminiProvider(ctx, cfg.Keys.GoogleGemini, cfg.Ai.EmbeddingModel)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
}

func llmAPIKey(cfg *config.Config) string {
	switch cfg.Ai.LLMProvider {
	case "openai":
		return cfg.Keys.OpenAI
	case "huggingface":
		return cfg.Keys.HuggingFace
	case "gemini":
		return cfg.Keys.GoogleGemini
	default:
		return ""
	}
}

// LoadCatalog reads the target database's schema once at startup.
func LoadCatalog(ctx context.Context, targetDB *gorm.DB, cfg *config.Config) (*catalog.Catalog, error) {
	var adapter catalog.Adapter
	switch strings.ToLower(cfg.Database.TargetDriver) {
	case database.DriverSQLite:
		adapter = sqlite.NewAdapter(targetDB, cfg.Database.SQLiteComments)
	case database.DriverSQLServer, "mssql":
		adapter = sqlserver.NewAdapter(targetDB, cfg.Database.TargetSchema)
	case database.DriverPostgres, database.DriverRedshift, "":
		adapter = postgres.NewAdapter(targetDB, postgres.Config{
			Schema:         cfg.Database.TargetSchema,
			ExternalSchema: cfg.Database.ExternalSchema,
		})
	default:
		return nil, fmt.Errorf("unsupported target driver: %s", cfg.Database.TargetDriver)
	}
	return catalog.Load(ctx, adapter)
}

// NewAgent wires every pipeline stage. appDB may be nil: the pgvector index
// and the knowledge base then stay unavailable.
func NewAgent(ctx context.Context, appDB, targetDB *gorm.DB, cfg *config.Config, log logger.ILogger) (*Agent, error) {
	cat, err := LoadCatalog(ctx, targetDB, cfg)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	log.Info("BOOTSTRAP", "Catalog loaded", map[string]interface{}{
		"tables":    cat.Len(),
		"federated": cat.Federated(),
	})

	provider, err := factory.NewLLMProvider(ctx, factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  firstNonEmpty(cfg.Ai.LLMBaseURL, ollamaURLFor(cfg)),
		APIKey:   llmAPIKey(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	log.Info("BOOTSTRAP", "Using LLM provider", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	kind := selector.Kind(cfg.Agent.SelectorStrategy)
	kbEnabled := cfg.Retrieval.Enabled && appDB != nil

	var embedder embedding.EmbeddingProvider
	if kind == selector.KindSimilarity || kbEnabled {
		embedder, err = NewEmbeddingProvider(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init embedding provider: %w", err)
		}
	}

	index, err := newIndex(ctx, appDB, cfg)
	if err != nil {
		return nil, err
	}

	sel, err := selector.New(ctx, kind, selector.Deps{
		Catalog:  cat,
		Embedder: embedder,
		Index:    index,
		LLM:      provider,
		Logger:   log,
	})
	if err != nil {
		return nil, fmt.Errorf("init table selector: %w", err)
	}

	dialect, err := synth.LookupDialect(cfg.DialectName(), cfg.Database.TargetSchema, cfg.Agent.DBSpecifics)
	if err != nil {
		return nil, err
	}

	var retriever retrieval.Retriever
	if kbEnabled {
		store := service.NewKnowledgeStore(implementation.NewKBChunkRepository(appDB))
		retriever = retrieval.NewKnowledgeBase(embedder, store, provider, retrieval.KnowledgeBaseConfig{
			MaxResults:    cfg.Retrieval.MaxResults,
			MinSimilarity: cfg.Retrieval.MinSimilarity,
		}, log)
	}

	window := cfg.Agent.HistoryMaxEntries
	orchestrator, err := pipeline.New(cat, pipeline.Deps{
		Classifier:  route.NewClassifier(provider, window),
		Selector:    sel,
		Synthesizer: synth.NewSynthesizer(provider, window),
		Executor: executor.NewGormExecutor(targetDB, executor.Options{
			Timeout: cfg.Agent.QueryTimeout,
			MaxRows: cfg.Agent.QueryMaxRows,
		}, log),
		Answerer:  answer.NewGenerator(provider, window),
		Retriever: retriever,
		Logger:    log,
	}, pipeline.Config{TopK: cfg.Agent.TopK, Dialect: dialect})
	if err != nil {
		return nil, err
	}

	return &Agent{Orchestrator: orchestrator, LLM: provider, Embedder: embedder}, nil
}

func newIndex(ctx context.Context, appDB *gorm.DB, cfg *config.Config) (vectorindex.Index, error) {
	switch cfg.Agent.VectorIndex {
	case "pgvector":
		if appDB == nil {
			return nil, fmt.Errorf("pgvector index requires DB_CONNECTION_STRING")
		}
		return vectorindex.NewPGVector(ctx, appDB, "tables")
	case "memory", "":
		return vectorindex.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported vector index: %s", cfg.Agent.VectorIndex)
	}
}

func ollamaURLFor(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
