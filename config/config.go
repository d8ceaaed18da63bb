package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type OpenAIOptions struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	Model   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	BaseURL string `env:"OPENAI_BASE_URL"`
}

type GeminiOptions struct {
	APIKey  string `env:"GEMINI_API_KEY"`
	Model   string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	BaseURL string `env:"GEMINI_BASE_URL"`
	// api talks to the public REST endpoint, vertex goes through Vertex AI
	Backend         string `env:"GEMINI_BACKEND" envDefault:"api"`
	VertexProjectID string `env:"VERTEX_PROJECT_ID"`
	VertexLocation  string `env:"VERTEX_LOCATION" envDefault:"us-central1"`
}

type ElevenLabsOptions struct {
	APIKey  string        `env:"ELEVENLABS_API_KEY"`
	Model   string        `env:"ELEVENLABS_MODEL" envDefault:"eleven_multilingual_v2"`
	Timeout time.Duration `env:"ELEVENLABS_TIMEOUT" envDefault:"30s"`
}

type AuthOptions struct {
	JWTSecret          string `env:"SUPABASE_JWT_SECRET"`
	JWTIssuer          string `env:"SUPABASE_JWT_ISSUER"`
	JWTAudience        string `env:"SUPABASE_JWT_AUDIENCE"`
	DefaultPrincipalID string `env:"DEFAULT_PRINCIPAL_ID" envDefault:"system"`
}

type PostgresOptions struct {
	URI             string        `env:"POSTGRES_URI"`
	AutoMigrate     bool          `env:"POSTGRES_AUTO_MIGRATE" envDefault:"false"`
	MaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"100"`
	MaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"30m"`
}

type RedisOptions struct {
	Addr     string `env:"REDIS_ADDR"`
	URL      string `env:"REDIS_URL"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"0"` // 0 keeps the driver default
}

// Target prefers REDIS_ADDR over REDIS_URL; empty means Redis is off.
func (o RedisOptions) Target() string {
	if v := strings.TrimSpace(o.Addr); v != "" {
		return v
	}
	return strings.TrimSpace(o.URL)
}

type MongoOptions struct {
	URI            string        `env:"MONGO_URI"`
	Database       string        `env:"MONGO_DB" envDefault:"wacrm"`
	AppName        string        `env:"MONGO_APP_NAME" envDefault:"wacrm"`
	MaxPoolSize    uint64        `env:"MONGO_MAX_POOL_SIZE" envDefault:"10"`
	ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"15s"`
}

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Postgres PostgresOptions
	Redis    RedisOptions
	Mongo    MongoOptions

	OpenAI     OpenAIOptions
	Gemini     GeminiOptions
	ElevenLabs ElevenLabsOptions
	Auth       AuthOptions

	GCSAudioBucket        string `env:"GCS_AUDIO_BUCKET"`
	GoogleCredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE"`
	SpeechToTextEnabled   bool   `env:"SPEECH_TO_TEXT_ENABLED" envDefault:"false"`

	// Turns per contact, not pairs. The Gemini adapters re-pair the window
	// (leading ai turns dropped, same-role runs joined) before sending.
	HistoryLimit       int           `env:"HISTORY_LIMIT" envDefault:"10"`
	GroundingMaxChars  int           `env:"GROUNDING_MAX_CHARS" envDefault:"24000"`
	CredentialCacheTTL time.Duration `env:"CREDENTIAL_CACHE_TTL" envDefault:"5m"`
	TraceTTL           time.Duration `env:"TRACE_TTL" envDefault:"168h"`
	ProviderTimeout    time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"0s"`

	VoiceNoteWorkers int    `env:"VOICE_NOTE_WORKERS" envDefault:"0"`
	VoiceNoteStream  string `env:"VOICE_NOTE_STREAM" envDefault:"voicenote:stream"`
	VoiceNoteGroup   string `env:"VOICE_NOTE_GROUP" envDefault:"voicenote-workers"`
}

// LoadEnvFiles loads the files that exist and ignores the rest.
func LoadEnvFiles(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	}
	if c.GroundingMaxChars < 0 {
		return fmt.Errorf("GROUNDING_MAX_CHARS must be non-negative, got %d", c.GroundingMaxChars)
	}
	if c.ProviderTimeout < 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be non-negative, got %s", c.ProviderTimeout)
	}
	if c.Postgres.MaxOpenConns < 0 || c.Postgres.MaxIdleConns < 0 {
		return fmt.Errorf("POSTGRES_MAX_OPEN_CONNS and POSTGRES_MAX_IDLE_CONNS must be non-negative")
	}
	if c.VoiceNoteWorkers < 0 {
		return fmt.Errorf("VOICE_NOTE_WORKERS must be non-negative, got %d", c.VoiceNoteWorkers)
	}
	switch c.Gemini.Backend {
	case "api":
	case "vertex":
		if c.Gemini.VertexProjectID == "" {
			return fmt.Errorf("VERTEX_PROJECT_ID is required when GEMINI_BACKEND is 'vertex'")
		}
	default:
		return fmt.Errorf("GEMINI_BACKEND must be 'api' or 'vertex', got '%s'", c.Gemini.Backend)
	}
	return nil
}
