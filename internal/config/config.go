package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Qdrant     QdrantConfig
	Gemini     GeminiConfig
	Storage    StorageConfig
	Worker     WorkerConfig
	Credits    CreditsConfig
	OCR        OCRConfig
	Extraction ExtractionConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	Enabled    bool
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey       string
	BaseURL      string
	TailorModel  string
	InsightModel string
	VisionModel  string
	EmbedModel   string
	Timeout      time.Duration
	MaxAttempts  int
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency  int
	PollInterval time.Duration
}

type CreditsConfig struct {
	InitialBalance int
	ExtractionCost int
}

type OCRConfig struct {
	Engine   string
	Language string
	Scale    float64
}

type ExtractionConfig struct {
	PagePolicy string
}

type LogConfig struct {
	Level  string
	Format string
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"

	EngineTesseract = "tesseract"
	EngineGemini    = "gemini"

	PolicyAbort = "abort"
	PolicySkip  = "skip"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_optimizer"),
		},
		Qdrant: QdrantConfig{
			Enabled:    getEnvAsBool("QDRANT_ENABLED", false),
			URL:        getEnv("QDRANT_URL", "http://localhost:6334"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "resume_chunks"),
		},
		Gemini: GeminiConfig{
			APIKey:       getEnv("GEMINI_API_KEY", ""),
			BaseURL:      getEnv("GEMINI_BASE_URL", ""),
			TailorModel:  getEnv("GEMINI_TAILOR_MODEL", "gemini-2.5-flash"),
			InsightModel: getEnv("GEMINI_INSIGHTS_MODEL", "gemini-2.0-flash"),
			VisionModel:  getEnv("GEMINI_VISION_MODEL", "gemini-2.5-flash"),
			EmbedModel:   getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
			Timeout:      getEnvAsDuration("GEMINI_TIMEOUT", "60s"),
			MaxAttempts:  getEnvAsInt("GEMINI_MAX_ATTEMPTS", 1),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency:  getEnvAsInt("WORKER_CONCURRENCY", 2),
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", "30s"),
		},
		Credits: CreditsConfig{
			InitialBalance: getEnvAsInt("CREDITS_INITIAL", 100),
			ExtractionCost: getEnvAsInt("CREDITS_EXTRACTION_COST", 10),
		},
		OCR: OCRConfig{
			Engine:   strings.ToLower(getEnv("OCR_ENGINE", EngineTesseract)),
			Language: getEnv("OCR_LANGUAGE", "eng"),
			Scale:    getEnvAsFloat("OCR_SCALE", 2.0),
		},
		Extraction: ExtractionConfig{
			PagePolicy: strings.ToLower(getEnv("EXTRACTION_PAGE_POLICY", PolicyAbort)),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMemory, DriverPostgres:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Database.Driver)
	}

	switch c.OCR.Engine {
	case EngineTesseract, EngineGemini:
	default:
		return fmt.Errorf("unsupported OCR_ENGINE %q", c.OCR.Engine)
	}

	switch c.Extraction.PagePolicy {
	case PolicyAbort, PolicySkip:
	default:
		return fmt.Errorf("unsupported EXTRACTION_PAGE_POLICY %q", c.Extraction.PagePolicy)
	}

	if c.OCR.Scale <= 0 {
		return fmt.Errorf("OCR_SCALE must be positive, got %v", c.OCR.Scale)
	}
	if c.Credits.InitialBalance < 0 {
		return fmt.Errorf("CREDITS_INITIAL must not be negative")
	}
	if c.Credits.ExtractionCost <= 0 {
		return fmt.Errorf("CREDITS_EXTRACTION_COST must be positive")
	}

	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
