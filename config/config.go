package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable override
const EnvPrefix = "SHOPASSIST"

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Catalog      CatalogConfig      `mapstructure:"catalog"`
	Cart         CartConfig         `mapstructure:"cart"`
	Index        IndexConfig        `mapstructure:"index"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Embedding    EmbeddingConfig    `mapstructure:"embedding"`
	Speech       SpeechConfig       `mapstructure:"speech"`
	Conversation ConversationConfig `mapstructure:"conversation"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig points at the static product catalog
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// CartConfig points at the cart file
type CartConfig struct {
	Path string `mapstructure:"path"`
}

// IndexConfig holds retrieval index configuration
type IndexConfig struct {
	Dir           string        `mapstructure:"dir"`
	Collection    string        `mapstructure:"collection"`
	TopK          int           `mapstructure:"top_k"`
	QueryCacheTTL time.Duration `mapstructure:"query_cache_ttl"`
}

// LLMConfig holds chat model configuration
type LLMConfig struct {
	Provider          string  `mapstructure:"provider"` // "genai" or "ark"
	APIKey            string  `mapstructure:"api_key"`
	Model             string  `mapstructure:"model"`
	BaseURL           string  `mapstructure:"base_url"`
	Temperature       float32 `mapstructure:"temperature"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// EmbeddingConfig holds embedding model configuration
type EmbeddingConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// SpeechConfig holds whisper server configuration
type SpeechConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Language          string        `mapstructure:"language"`
	BeamSize          int           `mapstructure:"beam_size"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// ConversationConfig holds chat history configuration
type ConversationConfig struct {
	HistorySize int `mapstructure:"history_size"`
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from an explicit file. An empty path searches
// the default locations.
func LoadFile(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/cartwise/")
	}

	// Environment variable settings, e.g. SHOPASSIST_LLM_API_KEY
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default so Unmarshal sees env overrides
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Embeddings always go to Gemini, so only a genai key can be shared
	if config.Embedding.APIKey == "" && config.LLM.Provider == "genai" {
		config.Embedding.APIKey = config.LLM.APIKey
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile exports variables from ./.env without overriding the
// environment. A missing file is not an error.
func loadEnvFile() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Data files
	v.SetDefault("catalog.path", "products.json")
	v.SetDefault("cart.path", "carts.json")

	// Retrieval index defaults
	v.SetDefault("index.dir", "data/index")
	v.SetDefault("index.collection", "products")
	v.SetDefault("index.top_k", 3)
	v.SetDefault("index.query_cache_ttl", "1h")

	// LLM defaults
	v.SetDefault("llm.provider", "genai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0)
	v.SetDefault("llm.requests_per_second", 5)

	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.model", "gemini-embedding-001")

	// Speech defaults
	v.SetDefault("speech.base_url", "http://localhost:8178")
	v.SetDefault("speech.language", "en")
	v.SetDefault("speech.beam_size", 5)
	v.SetDefault("speech.timeout", "60s")
	v.SetDefault("speech.requests_per_second", 2)

	v.SetDefault("conversation.history_size", 5)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key is required (set %s_LLM_API_KEY)", EnvPrefix)
	}

	switch config.LLM.Provider {
	case "genai":
	case "ark":
		if config.LLM.Model == "" {
			return fmt.Errorf("llm model is required when provider is 'ark'")
		}
		if config.Embedding.APIKey == "" {
			return fmt.Errorf("embedding API key is required when provider is 'ark' (set %s_EMBEDDING_API_KEY)", EnvPrefix)
		}
	default:
		return fmt.Errorf("llm provider must be 'genai' or 'ark', got: %s", config.LLM.Provider)
	}

	if config.Index.TopK <= 0 {
		return fmt.Errorf("index top_k must be positive, got: %d", config.Index.TopK)
	}

	if config.Conversation.HistorySize <= 0 {
		return fmt.Errorf("conversation history_size must be positive, got: %d", config.Conversation.HistorySize)
	}

	if config.Catalog.Path == "" || config.Cart.Path == "" {
		return fmt.Errorf("catalog and cart paths are required")
	}

	return nil
}
