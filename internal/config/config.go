package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App     App     `mapstructure:"app"`
	AI      AI      `mapstructure:"ai"`
	Collect Collect `mapstructure:"collect"`
	Store   Store   `mapstructure:"store"`
	Cache   Cache   `mapstructure:"cache"`
	Output  Output  `mapstructure:"output"`
}

// App holds general application configuration.
type App struct {
	Debug   bool   `mapstructure:"debug"`
	DataDir string `mapstructure:"data_dir"`
}

// AI holds LLM provider configuration. Provider selects which client the
// structuring stage uses: "openai" (any OpenAI-compatible endpoint, the
// default) or "gemini".
type AI struct {
	Provider string       `mapstructure:"provider"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

// OpenAIConfig holds configuration for OpenAI-compatible chat completion
// endpoints. Deployment is the model (or Azure deployment) name.
type OpenAIConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	APIKey      string  `mapstructure:"api_key"`
	Deployment  string  `mapstructure:"deployment"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     string  `mapstructure:"timeout"`
}

// GeminiConfig holds Google Gemini configuration.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// Collect holds collection stage configuration.
type Collect struct {
	SectionURL  string `mapstructure:"section_url"`
	MaxArticles int    `mapstructure:"max_articles"`
	UserAgent   string `mapstructure:"user_agent"`
	Timeout     string `mapstructure:"timeout"`
	Delay       string `mapstructure:"delay"`
}

// Store holds the durable record store configuration. URL is a Postgres
// connection string; Key, when set, supplies the password for DSNs that
// lack one (hosted stores hand out url+key pairs).
type Store struct {
	URL string `mapstructure:"url"`
	Key string `mapstructure:"key"`
}

// Cache holds the local scrape cache configuration.
type Cache struct {
	Directory string `mapstructure:"directory"`
	TTL       string `mapstructure:"ttl"`
}

// Output holds file output configuration for pipeline artifacts.
type Output struct {
	BlobFile     string `mapstructure:"blob_file"`
	RecordsFile  string `mapstructure:"records_file"`
	CSVBackup    string `mapstructure:"csv_backup"`
	BriefingsDir string `mapstructure:"briefings_dir"`
}

var globalConfig *Config

// Load loads the configuration from .env, config file and environment.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".marketbrief")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	if config.Cache.Directory != "" {
		config.Cache.Directory = expandPath(config.Cache.Directory)
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the global configuration so the next Load starts fresh.
// Intended for tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

// setDefaults sets default configuration values.
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", "data")

	// AI defaults
	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.openai.endpoint", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.deployment", "gpt-4o-mini")
	viper.SetDefault("ai.openai.max_tokens", 3000)
	viper.SetDefault("ai.openai.temperature", 0.2)
	viper.SetDefault("ai.openai.timeout", "60s")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash-preview-05-20")
	viper.SetDefault("ai.gemini.max_tokens", 3000)
	viper.SetDefault("ai.gemini.temperature", 0.2)

	// Collection defaults
	viper.SetDefault("collect.section_url", "https://www.wsj.com/news/business")
	viper.SetDefault("collect.max_articles", 3)
	viper.SetDefault("collect.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	viper.SetDefault("collect.timeout", "30s")
	viper.SetDefault("collect.delay", "2s")

	// Cache defaults
	viper.SetDefault("cache.directory", ".marketbrief-cache")
	viper.SetDefault("cache.ttl", "24h")

	// Output defaults
	viper.SetDefault("output.blob_file", "data/raw_blob.txt")
	viper.SetDefault("output.records_file", "data/structured_articles.json")
	viper.SetDefault("output.csv_backup", "data/articles_backup.csv")
	viper.SetDefault("output.briefings_dir", "briefings")
}

// bindEnvironmentVariables sets up flexible environment variable binding.
func bindEnvironmentVariables() {
	// OpenAI-compatible endpoint - support Azure-style names
	bindEnvKeys("ai.openai.endpoint", []string{
		"OPENAI_ENDPOINT",
		"AZURE_OPENAI_ENDPOINT",
	})

	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
		"AZURE_OPENAI_API_KEY",
	})

	bindEnvKeys("ai.openai.deployment", []string{
		"OPENAI_DEPLOYMENT",
		"OPENAI_DEPLOYMENT_NAME",
	})

	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	// Record store credentials
	bindEnvKeys("store.url", []string{
		"STORE_URL",
		"SUPABASE_URL",
		"DATABASE_URL",
	})

	bindEnvKeys("store.key", []string{
		"STORE_KEY",
		"SUPABASE_KEY",
	})

	// General settings
	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"MARKETBRIEF_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key.
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// expandPath expands ~ to the user home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
