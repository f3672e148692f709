// Package config loads engine configuration from an optional YAML file,
// environment variables, and built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	envPrefix = "ASSISTANT"
)

type Config struct {
	PostgresDSN string `mapstructure:"postgres_dsn"`

	// ResumeDir is the base directory that relative résumé locators are
	// resolved against.
	ResumeDir    string        `mapstructure:"resume_dir"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`

	OllamaHost    string `mapstructure:"ollama_host"`
	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`

	Embeddings Model     `mapstructure:"embeddings"`
	LLM        Model     `mapstructure:"llm"`
	Retrieval  Retrieval `mapstructure:"retrieval"`
	Guard      Guard     `mapstructure:"guard"`
}

// Model selects a provider-backed model endpoint.
type Model struct {
	Provider    string  `mapstructure:"provider"`
	Name        string  `mapstructure:"name"`
	Dimension   int     `mapstructure:"dimension"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// Retrieval tunes context assembly: chunk geometry, result count, and the
// size bounds applied to assembled fields.
type Retrieval struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
	TopK         int `mapstructure:"top_k"`
	HistoryTurns int `mapstructure:"history_turns"`
	ExcerptChars int `mapstructure:"excerpt_chars"`
}

// Guard holds the redaction and sanitization denylists. These are data, not
// logic: operators extend them without touching the engine.
type Guard struct {
	IdentifierKeys []string `mapstructure:"identifier_keys"`
	BlockedPhrases []string `mapstructure:"blocked_phrases"`
	LeakMarkers    []string `mapstructure:"leak_markers"`
	MaxMessageLen  int      `mapstructure:"max_message_len"`
}

// Load reads configuration from path (optional, pass "" to skip the file) and
// the ASSISTANT_* environment, falling back to defaults for anything unset.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("postgres_dsn", "postgres://localhost:5432/forsa?sslmode=disable")
	v.SetDefault("resume_dir", "./uploads")
	v.SetDefault("fetch_timeout", 15*time.Second)

	v.SetDefault("ollama_host", "http://localhost:11434")
	v.SetDefault("openai_base_url", "https://openrouter.ai/api/v1")

	v.SetDefault("embeddings.provider", ProviderOllama)
	v.SetDefault("embeddings.name", "nomic-embed-text")
	v.SetDefault("embeddings.dimension", 768)

	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.name", "qwen/qwen3-235b-a22b-07-25:free")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.temperature", 0.2)

	v.SetDefault("retrieval.chunk_size", 1000)
	v.SetDefault("retrieval.chunk_overlap", 100)
	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("retrieval.history_turns", 3)
	v.SetDefault("retrieval.excerpt_chars", 500)

	v.SetDefault("guard.identifier_keys", defaultIdentifierKeys)
	v.SetDefault("guard.blocked_phrases", defaultBlockedPhrases)
	v.SetDefault("guard.leak_markers", defaultLeakMarkers)
	v.SetDefault("guard.max_message_len", 2000)
}

var defaultIdentifierKeys = []string{
	"id",
	"_id",
	"user_id",
	"student_id",
	"company_id",
	"internship_id",
	"password",
	"password_hash",
	"resume_url",
}

var defaultBlockedPhrases = []string{
	"ignore previous instructions",
	"ignore all previous instructions",
	"disregard previous instructions",
	"forget your instructions",
	"you are now",
	"act as the system",
	"system:",
	"assistant:",
	"<|im_start|>",
	"<|endoftext|>",
	"```system",
	"[inst]",
}

var defaultLeakMarkers = []string{
	"password",
	"password_hash",
	"objectid(",
	"_id:",
	"resume_url",
}
