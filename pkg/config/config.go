package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Storage       StorageConfig
	Transcription TranscriptionConfig
	Extractor     ExtractorConfig
	Jira          JiraConfig
	Worker        WorkerConfig
	Auth          AuthConfig
}

// AuthConfig holds service bearer-token configuration
type AuthConfig struct {
	Enabled     bool          `envconfig:"AUTH_ENABLED" default:"false"`
	TokenSecret string        `envconfig:"AUTH_TOKEN_SECRET" default:""`
	TokenExpiry time.Duration `envconfig:"AUTH_TOKEN_EXPIRY" default:"168h"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"sprint_copilot"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	Queue    string `envconfig:"REDIS_IMPORT_QUEUE" default:"meeting-imports"`
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Endpoint        string        `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string        `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string        `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	RecordingBucket string        `envconfig:"STORAGE_RECORDING_BUCKET" default:"meeting-recordings"`
	ArtifactBucket  string        `envconfig:"STORAGE_ARTIFACT_BUCKET" default:"extraction-artifacts"`
	VoiceBucket     string        `envconfig:"STORAGE_VOICE_BUCKET" default:"voice-samples"`
	UseSSL          bool          `envconfig:"STORAGE_USE_SSL" default:"false"`
	UploadURLExpiry time.Duration `envconfig:"STORAGE_UPLOAD_URL_EXPIRY" default:"15m"`
}

// TranscriptionConfig holds speech-to-text provider configuration
type TranscriptionConfig struct {
	APIKey       string        `envconfig:"ASSEMBLYAI_API_KEY" default:""`
	PollInterval time.Duration `envconfig:"TRANSCRIPTION_POLL_INTERVAL" default:"3s"`
	Timeout      time.Duration `envconfig:"TRANSCRIPTION_TIMEOUT" default:"15m"`
	UseMock      bool          `envconfig:"TRANSCRIPTION_USE_MOCK" default:"false"`
}

// ExtractorConfig holds LLM task-extraction configuration
type ExtractorConfig struct {
	APIKey   string        `envconfig:"GROQ_API_KEY" default:""`
	BaseURL  string        `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`
	Model    string        `envconfig:"GROQ_MODEL" default:"llama-3.3-70b-versatile"`
	Timeout  time.Duration `envconfig:"EXTRACTOR_TIMEOUT" default:"2m"`
	MaxTasks int           `envconfig:"EXTRACTOR_MAX_TASKS" default:"50"`
	UseMock  bool          `envconfig:"EXTRACTOR_USE_MOCK" default:"false"`
}

// JiraConfig holds Jira REST configuration
type JiraConfig struct {
	BaseURL          string `envconfig:"JIRA_BASE_URL" default:""`
	Email            string `envconfig:"JIRA_EMAIL" default:""`
	APIToken         string `envconfig:"JIRA_API_TOKEN" default:""`
	ProjectKey       string `envconfig:"JIRA_PROJECT_KEY" default:"SPC"`
	StoryPointsField string `envconfig:"JIRA_STORY_POINTS_FIELD" default:"customfield_10016"`
	UseMock          bool   `envconfig:"JIRA_USE_MOCK" default:"false"`
}

// WorkerConfig holds import worker configuration
type WorkerConfig struct {
	PollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"2s"`
	MaxRetries   int           `envconfig:"WORKER_MAX_RETRIES" default:"3"`
	Enabled      bool          `envconfig:"WORKER_ENABLED" default:"true"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !c.Transcription.UseMock && c.Transcription.APIKey == "" {
		return fmt.Errorf("ASSEMBLYAI_API_KEY is required unless TRANSCRIPTION_USE_MOCK is set")
	}
	if !c.Extractor.UseMock && c.Extractor.APIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required unless EXTRACTOR_USE_MOCK is set")
	}
	if c.Auth.Enabled && c.Auth.TokenSecret == "" {
		return fmt.Errorf("AUTH_TOKEN_SECRET is required when AUTH_ENABLED is set")
	}
	if !c.Jira.UseMock {
		if c.Jira.BaseURL == "" {
			return fmt.Errorf("JIRA_BASE_URL is required unless JIRA_USE_MOCK is set")
		}
		if c.Jira.Email == "" || c.Jira.APIToken == "" {
			return fmt.Errorf("JIRA_EMAIL and JIRA_API_TOKEN are required unless JIRA_USE_MOCK is set")
		}
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
