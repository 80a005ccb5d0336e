package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     App     `mapstructure:"app"`
	AI      AI      `mapstructure:"ai"`
	TTS     TTS     `mapstructure:"tts"`
	Audio   Audio   `mapstructure:"audio"`
	News    News    `mapstructure:"news"`
	Storage Storage `mapstructure:"storage"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	LogLevel   string `mapstructure:"log_level"`
	DataDir    string `mapstructure:"data_dir"`
	ConfigFile string `mapstructure:"config_file"`
}

// AI holds LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// TTS holds text-to-speech provider configuration
type TTS struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	Voice   string `mapstructure:"voice"`
	Timeout string `mapstructure:"timeout"`
}

// Audio holds chunking and concatenation configuration
type Audio struct {
	ChunkCharLimit int    `mapstructure:"chunk_char_limit"`
	ChunkPauseMS   int    `mapstructure:"chunk_pause_ms"`
	TempDir        string `mapstructure:"temp_dir"`
}

// News holds content selection configuration
type News struct {
	MaxArticles      int    `mapstructure:"max_articles"`
	MinArticleChars  int    `mapstructure:"min_article_chars"`
	EnrichBelowChars int    `mapstructure:"enrich_below_chars"`
	MaxContextChars  int    `mapstructure:"max_context_chars"`
	FetchTimeout     string `mapstructure:"fetch_timeout"`
}

// Storage holds audio artifact storage configuration
type Storage struct {
	AudioDir      string `mapstructure:"audio_dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

var loaded *Config

// Load reads configuration from file, environment variables, and defaults.
// Priority: env vars > config file > defaults. A .env file is loaded first
// when present, matching the deployment layout.
func Load(configFile string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".newslistener")
		viper.SetConfigType("yaml")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.App.ConfigFile = viper.ConfigFileUsed()

	loaded = cfg
	return cfg, nil
}

// Get returns the loaded configuration, loading defaults if Load was never called.
func Get() *Config {
	if loaded == nil {
		cfg, err := Load("")
		if err != nil {
			// Fall back to pure defaults so callers always get a usable config.
			setDefaults()
			cfg = &Config{}
			_ = viper.Unmarshal(cfg)
		}
		loaded = cfg
	}
	return loaded
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".newslistener")

	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.gemini.max_tokens", 4096)
	viper.SetDefault("ai.gemini.temperature", 0.7)

	viper.SetDefault("tts.base_url", "https://api.openai.com/v1")
	viper.SetDefault("tts.model", "gpt-4o-mini-tts")
	viper.SetDefault("tts.voice", "alloy")
	viper.SetDefault("tts.timeout", "120s")

	viper.SetDefault("audio.chunk_char_limit", 3000)
	viper.SetDefault("audio.chunk_pause_ms", 200)
	viper.SetDefault("audio.temp_dir", "")

	viper.SetDefault("news.max_articles", 15)
	viper.SetDefault("news.min_article_chars", 100)
	viper.SetDefault("news.enrich_below_chars", 150)
	viper.SetDefault("news.max_context_chars", 30000)
	viper.SetDefault("news.fetch_timeout", "15s")

	viper.SetDefault("storage.audio_dir", "static/audio")
	viper.SetDefault("storage.public_base_url", "/static/audio")
}

// FetchTimeout returns the article fetch timeout as a duration.
func (n News) FetchTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(n.FetchTimeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// TimeoutDuration returns the TTS request timeout as a duration.
func (t TTS) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(t.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}
