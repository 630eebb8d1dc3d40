package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// 後端模式
const (
	LLMModeOllama     = "ollama"
	LLMModeOpenRouter = "openrouter"
	LLMModeEmbedded   = "embedded"
)

// 圖片模式
const (
	ImageModeOllama      = "ollama"
	ImageModePlaceholder = "placeholder"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	LLM         LLMConfig        `mapstructure:"llm"`
	Ollama      OllamaConfig     `mapstructure:"ollama"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Generation  GenerationConfig `mapstructure:"generation"`
	Daily       DailyConfig      `mapstructure:"daily"`
	Queue       QueueConfig      `mapstructure:"queue"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Image       ImageConfig      `mapstructure:"image"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Auth        AuthConfig       `mapstructure:"auth"`
	CORSOrigins []string         `mapstructure:"cors_origins"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// DatabaseConfig 資料庫設定
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite | postgres
	DSN    string `mapstructure:"dsn"`
	Debug  bool   `mapstructure:"debug"`
}

// RedisConfig Redis 設定，未啟用時改用行程內實作
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LLMConfig 文字生成後端選擇
type LLMConfig struct {
	Mode    string        `mapstructure:"mode"`
	Timeout time.Duration `mapstructure:"timeout"` // 單次呼叫逾時
}

// OllamaConfig 本機模型伺服器設定
type OllamaConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	ImageModel  string  `mapstructure:"image_model"`
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// GenerationConfig 食譜生成策略
type GenerationConfig struct {
	MaxAttempts         int     `mapstructure:"max_attempts"`
	RecentWindow        int     `mapstructure:"recent_window"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	CompareDescription  bool    `mapstructure:"compare_description"`
	FreshDirective      string  `mapstructure:"fresh_directive"`
}

// DailyConfig 每日推薦設定
type DailyConfig struct {
	Timezone     string        `mapstructure:"timezone"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// Location 每日推薦使用的時區
func (d DailyConfig) Location() *time.Location {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// QueueConfig 後端請求隊列設定
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	Mode           string        `mapstructure:"mode"`
	PlaceholderURL string        `mapstructure:"placeholder_url"`
	StaticDir      string        `mapstructure:"static_dir"`
	MaxSizeBytes   int64         `mapstructure:"max_size_bytes"`
	MaxDimension   int           `mapstructure:"max_dimension"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// AuthConfig 身分驗證設定
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定常用環境變量
	_ = v.BindEnv("database.driver", "DATABASE_DRIVER")
	_ = v.BindEnv("database.dsn", "DATABASE_URL")
	_ = v.BindEnv("redis.enabled", "REDIS_ENABLED")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("llm.mode", "LLM_MODE")
	_ = v.BindEnv("llm.timeout", "LLM_TIMEOUT")
	_ = v.BindEnv("ollama.base_url", "OLLAMA_BASE_URL")
	_ = v.BindEnv("ollama.model", "OLLAMA_MODEL")
	_ = v.BindEnv("ollama.image_model", "OLLAMA_IMAGE_MODEL")
	_ = v.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	_ = v.BindEnv("openrouter.base_url", "OPENROUTER_BASE_URL")
	_ = v.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	_ = v.BindEnv("openrouter.max_tokens", "MODEL_MAX_TOKENS")
	_ = v.BindEnv("generation.max_attempts", "GENERATION_MAX_ATTEMPTS")
	_ = v.BindEnv("generation.recent_window", "GENERATION_RECENT_WINDOW")
	_ = v.BindEnv("generation.similarity_threshold", "GENERATION_SIMILARITY_THRESHOLD")
	_ = v.BindEnv("image.mode", "IMAGE_MODE")
	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("cors_origins", "CORS_ORIGINS")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration", "llm_mode:", v.GetString("llm.mode"), "openrouter_api_key:", maskAPIKey(v.GetString("openrouter.api_key")))

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// CORS_ORIGINS 以逗號分隔
	config.CORSOrigins = splitAndTrim(strings.Join(config.CORSOrigins, ","))

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "pantry-wizard")

	// 伺服器設定
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "420s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "400s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// 資料庫
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "pantry.db")
	v.SetDefault("database.debug", false)

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// 文字生成後端
	v.SetDefault("llm.mode", LLMModeOllama)
	v.SetDefault("llm.timeout", "120s")

	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.1:8b-instruct-q4_K_M")
	v.SetDefault("ollama.image_model", "abedalswaity7/flux-prompt:latest")
	v.SetDefault("ollama.temperature", 0.7)
	v.SetDefault("ollama.top_p", 0.9)

	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "openai/gpt-3.5-turbo")
	v.SetDefault("openrouter.max_tokens", 1024)
	v.SetDefault("openrouter.temperature", 0.7)

	// 生成策略
	v.SetDefault("generation.max_attempts", 3)
	v.SetDefault("generation.recent_window", 5)
	v.SetDefault("generation.similarity_threshold", 0.85)
	v.SetDefault("generation.compare_description", false)
	v.SetDefault("generation.fresh_directive", "IMPORTANT: Generate a DIFFERENT recipe that is not similar to the recent recipes listed above.")

	// 每日推薦
	v.SetDefault("daily.timezone", "UTC")
	v.SetDefault("daily.lock_ttl", "10m")
	v.SetDefault("daily.poll_interval", "250ms")

	// 隊列設定
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.max_size", 32)

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 圖片設定
	v.SetDefault("image.mode", ImageModePlaceholder)
	v.SetDefault("image.placeholder_url", "/static/images/placeholder.jpg")
	v.SetDefault("image.static_dir", "static")
	v.SetDefault("image.max_size_bytes", 10*1024*1024) // 10MB
	v.SetDefault("image.max_dimension", 1024)
	v.SetDefault("image.timeout", "180s")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 身分驗證
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")

	v.SetDefault("cors_origins", []string{"http://localhost:3000", "http://localhost:3001"})
	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", config.Database.Driver)
	}
	if config.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}

	switch config.LLM.Mode {
	case LLMModeOllama:
		if config.Ollama.BaseURL == "" || config.Ollama.Model == "" {
			return fmt.Errorf("ollama base_url and model are required")
		}
	case LLMModeOpenRouter:
		if config.OpenRouter.APIKey == "" {
			return fmt.Errorf("openrouter api_key is required when llm.mode=openrouter")
		}
	case LLMModeEmbedded:
	default:
		return fmt.Errorf("unsupported llm mode: %s", config.LLM.Mode)
	}
	if config.LLM.Timeout <= 0 {
		return fmt.Errorf("invalid llm timeout")
	}

	// 生成策略
	if config.Generation.MaxAttempts <= 0 {
		return fmt.Errorf("generation.max_attempts must be positive")
	}
	if config.Generation.RecentWindow < 0 {
		return fmt.Errorf("generation.recent_window must not be negative")
	}
	if config.Generation.SimilarityThreshold <= 0 || config.Generation.SimilarityThreshold > 1 {
		return fmt.Errorf("generation.similarity_threshold must be in (0, 1]")
	}
	// 請求逾時須容納全部重試次數
	if budget := time.Duration(config.Generation.MaxAttempts) * config.LLM.Timeout; config.Server.RequestTimeout < budget {
		return fmt.Errorf("server.request_timeout (%s) must be at least generation.max_attempts * llm.timeout (%s)",
			config.Server.RequestTimeout, budget)
	}

	if _, err := time.LoadLocation(config.Daily.Timezone); err != nil {
		return fmt.Errorf("invalid daily timezone: %w", err)
	}
	if config.Daily.LockTTL <= 0 || config.Daily.PollInterval <= 0 {
		return fmt.Errorf("invalid daily lock settings")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	// 驗證隊列設定
	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	switch config.Image.Mode {
	case ImageModeOllama, ImageModePlaceholder:
	default:
		return fmt.Errorf("unsupported image mode: %s", config.Image.Mode)
	}

	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	return nil
}
