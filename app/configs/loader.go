package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
	ProviderLMStudio = "lmstudio"

	StoreSQLite = "sqlite"
	StoreQdrant = "qdrant"
)

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Agent     AgentConfig     `yaml:"agent"`
	Output    OutputConfig    `yaml:"output"`
	Publish   PublishConfig   `yaml:"publish,omitempty"`
	Questions []string        `yaml:"questions" validate:"min=1,dive,required"`
}

type LLMConfig struct {
	Provider       string  `yaml:"provider" validate:"oneof=gemini openai lmstudio"`
	APIKey         string  `yaml:"api_key,omitempty"`
	Model          string  `yaml:"model" validate:"required"`
	EmbeddingModel string  `yaml:"embedding_model" validate:"required"`
	BaseURL        string  `yaml:"base_url,omitempty"`
	Temperature    float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens      int     `yaml:"max_tokens"`
}

type KnowledgeConfig struct {
	Dir          string `yaml:"dir" validate:"required"`
	Pattern      string `yaml:"pattern" validate:"required"`
	VectorStore  string `yaml:"vector_store" validate:"oneof=sqlite qdrant"`
	StoreURI     string `yaml:"store_uri" validate:"required"`
	Table        string `yaml:"table" validate:"required,identifier"`
	MaxResults   int    `yaml:"max_results" validate:"gt=0"`
	ChunkSize    int    `yaml:"chunk_size" validate:"gt=0"`
	ChunkOverlap int    `yaml:"chunk_overlap" validate:"gte=0,ltfield=ChunkSize"`
	QdrantHost   string `yaml:"qdrant_host,omitempty"`
	QdrantPort   int    `yaml:"qdrant_port,omitempty"`
}

type AgentConfig struct {
	Name            string      `yaml:"name" validate:"required"`
	Description     string      `yaml:"description"`
	Instructions    []string    `yaml:"instructions"`
	ExpectedOutput  string      `yaml:"expected_output"`
	HistoryTurns    int         `yaml:"history_turns" validate:"gte=0"`
	PreviewQuestion string      `yaml:"preview_question"`
	Retry           RetryConfig `yaml:"retry"`
}

// RetryConfig is applied around every question asked to the agent.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" validate:"gte=1"`
	Delay       time.Duration `yaml:"delay" validate:"gte=0"`
	MaxDelay    time.Duration `yaml:"max_delay" validate:"gte=0"`
	Exponential bool          `yaml:"exponential"`
}

type OutputConfig struct {
	ReportsDir string `yaml:"reports_dir" validate:"required"`
	LogsDir    string `yaml:"logs_dir" validate:"required"`
	LogLevel   string `yaml:"log_level" validate:"oneof=debug info warn warning error"`
	HistoryDB  string `yaml:"history_db" validate:"required"`
}

type PublishConfig struct {
	MinIO   MinIOConfig   `yaml:"minio,omitempty"`
	Discord DiscordConfig `yaml:"discord,omitempty"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket" validate:"required_with=Endpoint"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type DiscordConfig struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id" validate:"required_with=Token"`
}

type LoadOptions struct {
	EnvFile     string
	ProfilePath string
	// SkipCredential loads without an LLM credential, for commands that never call the model.
	SkipCredential bool
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Load builds the configuration from defaults, an optional profile, the .env file and the environment,
// in increasing order of precedence.
func Load(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, configErr("env_file", fmt.Errorf("read %s: %w", opts.EnvFile, err))
		}
	}

	cfg := Default()
	if opts.ProfilePath != "" {
		if err := loadProfile(opts.ProfilePath, cfg); err != nil {
			return nil, configErr("profile", err)
		}
	}

	applyEnv(cfg)
	applyProviderDefaults(&cfg.LLM)

	if cfg.LLM.APIKey == "" && !opts.SkipCredential {
		return nil, configErr("LLM_API_KEY", ErrMissingCredential)
	}

	if err := validateStruct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadProfile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profile file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err = yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.LLM.Provider = envString("LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.Model = envString("LLM_MODEL", envString("MODEL_ID", cfg.LLM.Model))
	cfg.LLM.EmbeddingModel = envString("LLM_EMBEDDINGS_MODEL", cfg.LLM.EmbeddingModel)
	cfg.LLM.BaseURL = envString("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Temperature = envFloat("LLM_TEMPERATURE", cfg.LLM.Temperature)
	cfg.LLM.APIKey = resolveAPIKey(cfg.LLM)

	cfg.Knowledge.Dir = envString("KNOWLEDGE_DIR", cfg.Knowledge.Dir)
	cfg.Knowledge.Pattern = envString("KNOWLEDGE_PATTERN", cfg.Knowledge.Pattern)
	cfg.Knowledge.VectorStore = envString("VECTOR_STORE", cfg.Knowledge.VectorStore)
	cfg.Knowledge.StoreURI = envString("VECTOR_STORE_URI", cfg.Knowledge.StoreURI)
	cfg.Knowledge.Table = envString("TABLE_NAME", cfg.Knowledge.Table)
	cfg.Knowledge.MaxResults = envInt("MAX_SEARCH_RESULTS", cfg.Knowledge.MaxResults)
	cfg.Knowledge.ChunkSize = envInt("CHUNK_SIZE", cfg.Knowledge.ChunkSize)
	cfg.Knowledge.ChunkOverlap = envInt("CHUNK_OVERLAP", cfg.Knowledge.ChunkOverlap)
	cfg.Knowledge.QdrantHost = envString("QDRANT_URL", cfg.Knowledge.QdrantHost)
	cfg.Knowledge.QdrantPort = envInt("QDRANT_PORT", cfg.Knowledge.QdrantPort)

	cfg.Agent.Name = envString("AGENT_NAME", cfg.Agent.Name)
	cfg.Agent.Retry.MaxAttempts = envInt("AGENT_MAX_ATTEMPTS", cfg.Agent.Retry.MaxAttempts)
	cfg.Agent.Retry.Delay = envDuration("AGENT_RETRY_DELAY", cfg.Agent.Retry.Delay)

	cfg.Output.ReportsDir = envString("REPORTS_DIR", cfg.Output.ReportsDir)
	cfg.Output.LogsDir = envString("LOGS_DIR", cfg.Output.LogsDir)
	cfg.Output.LogLevel = strings.ToLower(envString("LOG_LEVEL", cfg.Output.LogLevel))
	cfg.Output.HistoryDB = envString("DB_PATH", cfg.Output.HistoryDB)

	m := &cfg.Publish.MinIO
	m.Endpoint = envString("MINIO_ENDPOINT", m.Endpoint)
	m.AccessKey = envString("MINIO_ACCESS_KEY", m.AccessKey)
	m.SecretKey = envString("MINIO_SECRET_KEY", m.SecretKey)
	m.Bucket = envString("MINIO_BUCKET", m.Bucket)
	m.Region = envString("MINIO_REGION", m.Region)
	m.UseSSL = envBool("MINIO_USE_SSL", m.UseSSL)

	d := &cfg.Publish.Discord
	d.Token = envString("DISCORD_TOKEN", d.Token)
	d.ChannelID = envString("DISCORD_CHANNEL_ID", d.ChannelID)
}

func resolveAPIKey(llm LLMConfig) string {
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		return v
	}
	switch llm.Provider {
	case ProviderGemini:
		return envString("GOOGLE_API_KEY", envString("GEMINI_API_KEY", llm.APIKey))
	case ProviderOpenAI:
		return envString("OPENAI_API_KEY", llm.APIKey)
	}
	return llm.APIKey
}

func applyProviderDefaults(llm *LLMConfig) {
	if llm.Model == "" {
		llm.Model = defaultModels[llm.Provider]
	}
	if llm.EmbeddingModel == "" {
		llm.EmbeddingModel = defaultEmbeddingModels[llm.Provider]
	}
	if llm.Provider == ProviderLMStudio && llm.BaseURL == "" {
		llm.BaseURL = "http://localhost:1234"
	}
}

func validateStruct(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return identifierRe.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return configErr(fe.Namespace(), fmt.Errorf("value %v fails %q rule", fe.Value(), fe.Tag()))
	}
	return configErr("", err)
}

// LogValue keeps the credential out of log lines.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("provider", c.LLM.Provider),
		slog.String("model", c.LLM.Model),
		slog.String("knowledge_dir", c.Knowledge.Dir),
		slog.String("vector_store", c.Knowledge.VectorStore),
		slog.String("table", c.Knowledge.Table),
		slog.Int("questions", len(c.Questions)),
	)
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
