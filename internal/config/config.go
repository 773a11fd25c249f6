package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Agent     AgentConfig
	Retrieval RetrievalConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	WSLogFilePath      string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string // empty keeps sessions and socket fan-out in process
	JWTSecret          string // empty disables bearer auth
	OtelEnabled        bool
	OtelEndpoint       string
	TurnEventsSubject  string
	HistoryStore       string // "memory" or "redis"
	SessionTTL         time.Duration
}

type DatabaseConfig struct {
	// Connection is the application database (turn log, knowledge base, vector index).
	Connection string
	// Target is the database questions are answered from.
	TargetDriver     string // "postgres", "redshift", "sqlite" or "sqlserver"
	TargetConnection string
	TargetSchema     string
	ExternalSchema   string // Redshift external (Glue) schema, optional
	SQLiteComments   string // SQLite side table with descriptions
}

type APIKeys struct {
	GoogleGemini string
	OpenAI       string
	HuggingFace  string
	Jina         string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "jina"
	EmbeddingModel    string
	OllamaBaseURL     string
	LLMProvider       string // "ollama", "openai", "huggingface" or "gemini"
	LLMModel          string
	LLMBaseURL        string
}

type AgentConfig struct {
	SelectorStrategy  string // "similarity" or "ranking"
	VectorIndex       string // "memory" or "pgvector"
	TopK              int
	Dialect           string
	DBSpecifics       string
	HistoryMaxEntries int
	QueryTimeout      time.Duration
	QueryMaxRows      int
}

type RetrievalConfig struct {
	Enabled       bool
	MaxResults    int
	MinSimilarity float64
	ChunkSize     int
	ChunkOverlap  int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WSLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/websocket.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			TurnEventsSubject:  getEnv("TURN_EVENTS_SUBJECT", "agent.turn.completed"),
			HistoryStore:       getEnv("HISTORY_STORE", "memory"),
			SessionTTL:         getEnvAsDuration("SESSION_TTL", 2*time.Hour),
		},
		Database: DatabaseConfig{
			Connection:       getEnv("DB_CONNECTION_STRING", ""),
			TargetDriver:     strings.ToLower(getEnv("TARGET_DB_DRIVER", "postgres")),
			TargetConnection: getEnv("TARGET_DB_CONNECTION_STRING", getEnv("DB_CONNECTION_STRING", "")),
			TargetSchema:     getEnv("TARGET_DB_SCHEMA", ""),
			ExternalSchema:   getEnv("TARGET_DB_EXTERNAL_SCHEMA", ""),
			SQLiteComments:   getEnv("SQLITE_COMMENTS_TABLE", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
		},
		Agent: AgentConfig{
			SelectorStrategy:  getEnv("SELECTOR_STRATEGY", "similarity"),
			VectorIndex:       getEnv("VECTOR_INDEX", "memory"),
			TopK:              getEnvAsInt("TOP_K", 5),
			Dialect:           getEnv("DB_DIALECT", ""),
			DBSpecifics:       getEnv("DB_SPECIFICS", ""),
			HistoryMaxEntries: getEnvAsInt("HISTORY_MAX_ENTRIES", 40),
			QueryTimeout:      getEnvAsDuration("QUERY_TIMEOUT", 30*time.Second),
			QueryMaxRows:      getEnvAsInt("QUERY_MAX_ROWS", 200),
		},
		Retrieval: RetrievalConfig{
			Enabled:       getEnvAsBool("KB_ENABLED", true),
			MaxResults:    getEnvAsInt("KB_MAX_RESULTS", 5),
			MinSimilarity: getEnvAsFloat("KB_MIN_SIMILARITY", 0),
			ChunkSize:     getEnvAsInt("KB_CHUNK_SIZE", 1000),
			ChunkOverlap:  getEnvAsInt("KB_CHUNK_OVERLAP", 200),
		},
	}
}

// DialectName falls back to the target driver when DB_DIALECT is unset.
// SQL Server targets use the "mssql" dialect.
func (c *Config) DialectName() string {
	if c.Agent.Dialect != "" {
		return c.Agent.Dialect
	}
	if c.Database.TargetDriver == "sqlserver" {
		return "mssql"
	}
	return c.Database.TargetDriver
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
