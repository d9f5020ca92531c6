package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Auth     AuthConfig
	Ai       AIConfig
	Search   SearchConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	RealtimeLogPath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	CompletionLogTopic string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Connection string
}

// ClientConfig configures the terminal chat client.
type ClientConfig struct {
	APIURL      string
	StoragePath string
	LogFilePath string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

type AIConfig struct {
	LLMProvider   string // "azure" or "ollama"
	Endpoint      string
	APIKey        string
	Deployment    string
	APIVersion    string
	SystemPrompt  string
	OllamaBaseURL string
	OllamaModel   string
	Temperature   float64
	TopP          float64
	MaxTokens     int
}

// SearchConfig describes the retrieval data source handed to the completion provider.
type SearchConfig struct {
	Endpoint              string
	Key                   string
	Index                 string
	SemanticConfiguration string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

// AccessTokenTTL is fixed; there is no refresh flow.
const AccessTokenTTL = time.Hour

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5001"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			RealtimeLogPath:    getEnv("REALTIME_LOG_PATH", "logs/realtime.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			CompletionLogTopic: getEnv("COMPLETION_LOG_TOPIC", "COMPLETION_LOGGED"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Genie"),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			TokenTTL:   AccessTokenTTL,
			BcryptCost: getEnvAsInt("BCRYPT_COST", 12),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "azure"),
			Endpoint:      getEnv("AZURE_OAI_ENDPOINT", ""),
			APIKey:        getEnv("AZURE_OAI_KEY", ""),
			Deployment:    getEnv("AZURE_OAI_DEPLOYMENT", ""),
			APIVersion:    getEnv("AZURE_OAI_API_VERSION", "2023-08-01-preview"),
			SystemPrompt:  getEnv("SYSTEM_PROMPT", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),
			Temperature:   getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			TopP:          getEnvAsFloat("LLM_TOP_P", 0.95),
			MaxTokens:     getEnvAsInt("LLM_MAX_TOKENS", 4096),
		},
		Search: SearchConfig{
			Endpoint:              getEnv("AZURE_SEARCH_ENDPOINT", ""),
			Key:                   getEnv("AZURE_SEARCH_KEY", ""),
			Index:                 getEnv("AZURE_SEARCH_INDEX", ""),
			SemanticConfiguration: getEnv("AZURE_SEARCH_SEMANTIC_CONFIG", "Config"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "genie-chat-backend"),
		},
	}
}

func LoadClient() *ClientConfig {
	_ = godotenv.Load()

	return &ClientConfig{
		APIURL:      getEnv("GENIE_API_URL", "http://localhost:5001"),
		StoragePath: getEnv("GENIE_STORAGE_PATH", defaultStoragePath()),
		LogFilePath: getEnv("GENIE_LOG_FILE_PATH", ""),
	}
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".genie.json"
	}
	return filepath.Join(dir, "genie", "storage.json")
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() []string {
	var missing []string
	if c.Database.Connection == "" {
		missing = append(missing, "DB_CONNECTION_STRING")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Ai.LLMProvider == "azure" {
		if c.Ai.Endpoint == "" {
			missing = append(missing, "AZURE_OAI_ENDPOINT")
		}
		if c.Ai.Deployment == "" {
			missing = append(missing, "AZURE_OAI_DEPLOYMENT")
		}
	}
	return missing
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
