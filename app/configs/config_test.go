package configs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var credentialVars = []string{"LLM_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "LLM_PROVIDER", "LLM_MODEL", "MODEL_ID"}

func clearCredentials(t *testing.T) {
	t.Helper()
	for _, k := range credentialVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearCredentials(t)
	t.Setenv("GOOGLE_API_KEY", "g-key")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "g-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, "text-embedding-004", cfg.LLM.EmbeddingModel)
	assert.Equal(t, "knowledge", cfg.Knowledge.Dir)
	assert.Equal(t, "docs_empresarial_v2", cfg.Knowledge.Table)
	assert.Equal(t, 15, cfg.Knowledge.MaxResults)
	assert.Equal(t, 3, cfg.Agent.Retry.MaxAttempts)
	assert.Len(t, cfg.Questions, len(AnalysisQuestions))
}

func TestLoadEnvOverrides(t *testing.T) {
	clearCredentials(t)
	t.Setenv("LLM_PROVIDER", "lmstudio")
	t.Setenv("LLM_API_KEY", "local")
	t.Setenv("MODEL_ID", "qwen")
	t.Setenv("TABLE_NAME", "other_docs")
	t.Setenv("MAX_SEARCH_RESULTS", "7")
	t.Setenv("AGENT_RETRY_DELAY", "250ms")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "qwen", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:1234", cfg.LLM.BaseURL)
	assert.Equal(t, "other_docs", cfg.Knowledge.Table)
	assert.Equal(t, 7, cfg.Knowledge.MaxResults)
	assert.Equal(t, 250*time.Millisecond, cfg.Agent.Retry.Delay)
	assert.Equal(t, "debug", cfg.Output.LogLevel)
}

func TestLoadLogLevels(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "WARNING", "error"} {
		t.Run(level, func(t *testing.T) {
			clearCredentials(t)
			t.Setenv("LLM_API_KEY", "k")
			t.Setenv("LOG_LEVEL", level)

			cfg, err := Load(LoadOptions{})
			require.NoError(t, err)
			assert.Equal(t, strings.ToLower(level), cfg.Output.LogLevel)
		})
	}

	clearCredentials(t)
	t.Setenv("LLM_API_KEY", "k")
	t.Setenv("LOG_LEVEL", "verbose")
	_, err := Load(LoadOptions{})
	var cerr *ConfigurationError
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, cerr.Field, "LogLevel")
}

func TestLoadEnvFile(t *testing.T) {
	clearCredentials(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("OPENAI_API_KEY=sk-test\nLLM_PROVIDER=openai\n"), 0o644))

	cfg, err := Load(LoadOptions{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)

	_, err = Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)
}

func TestLoadProfile(t *testing.T) {
	clearCredentials(t)
	t.Setenv("LLM_API_KEY", "k")
	t.Setenv("PROFILE_DIR", "/srv/docs")

	profile := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(profile, []byte(`
knowledge:
  dir: ${PROFILE_DIR}
  max_results: 4
agent:
  name: Auditor
questions:
  - What are the main findings?
`), 0o644))

	cfg, err := Load(LoadOptions{ProfilePath: profile})
	require.NoError(t, err)
	assert.Equal(t, "/srv/docs", cfg.Knowledge.Dir)
	assert.Equal(t, 4, cfg.Knowledge.MaxResults)
	assert.Equal(t, "*.pdf", cfg.Knowledge.Pattern)
	assert.Equal(t, "Auditor", cfg.Agent.Name)
	assert.Equal(t, []string{"What are the main findings?"}, cfg.Questions)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing_credential", func(t *testing.T) {
		clearCredentials(t)
		_, err := Load(LoadOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingCredential)

		var cerr *ConfigurationError
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "LLM_API_KEY", cerr.Field)
	})

	t.Run("missing_credential_skipped", func(t *testing.T) {
		clearCredentials(t)
		cfg, err := Load(LoadOptions{SkipCredential: true})
		require.NoError(t, err)
		assert.Empty(t, cfg.LLM.APIKey)
		assert.ErrorIs(t, Validate(cfg), ErrMissingCredential)
	})

	t.Run("invalid_table_name", func(t *testing.T) {
		clearCredentials(t)
		t.Setenv("LLM_API_KEY", "k")
		t.Setenv("TABLE_NAME", "docs-2024")
		_, err := Load(LoadOptions{})
		var cerr *ConfigurationError
		require.True(t, errors.As(err, &cerr))
		assert.Contains(t, cerr.Field, "Table")
	})

	t.Run("unknown_provider", func(t *testing.T) {
		clearCredentials(t)
		t.Setenv("LLM_API_KEY", "k")
		t.Setenv("LLM_PROVIDER", "mystery")
		t.Setenv("LLM_MODEL", "m")
		t.Setenv("LLM_EMBEDDINGS_MODEL", "e")
		_, err := Load(LoadOptions{})
		var cerr *ConfigurationError
		require.True(t, errors.As(err, &cerr))
		assert.Contains(t, cerr.Field, "Provider")
	})

	t.Run("broken_profile", func(t *testing.T) {
		clearCredentials(t)
		t.Setenv("LLM_API_KEY", "k")
		profile := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(profile, []byte("knowledge: [unclosed"), 0o644))
		_, err := Load(LoadOptions{ProfilePath: profile})
		var cerr *ConfigurationError
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "profile", cerr.Field)
	})
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.pdf"), []byte("%PDF-1.4"), 0o644))
	cfg := Default()
	cfg.LLM.APIKey = "k"
	cfg.Knowledge.Dir = dir
	return cfg
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Validate(validConfig(t)))
	})

	t.Run("missing_credential", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.LLM.APIKey = ""
		assert.ErrorIs(t, Validate(cfg), ErrMissingCredential)
	})

	t.Run("directory_not_found", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Knowledge.Dir = filepath.Join(cfg.Knowledge.Dir, "nope")
		assert.ErrorIs(t, Validate(cfg), ErrKnowledgeDirectoryNotFound)
	})

	t.Run("directory_is_a_file", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Knowledge.Dir = filepath.Join(cfg.Knowledge.Dir, "report.pdf")
		assert.ErrorIs(t, Validate(cfg), ErrKnowledgeDirectoryNotFound)
	})

	t.Run("no_documents", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Knowledge.Dir = t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Knowledge.Dir, "notes.txt"), []byte("x"), 0o644))
		err := Validate(cfg)
		assert.ErrorIs(t, err, ErrNoDocumentsFound)
		var cerr *ConfigurationError
		assert.True(t, errors.As(err, &cerr))
	})

	t.Run("credential_checked_first", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.LLM.APIKey = ""
		cfg.Knowledge.Dir = "/does/not/exist"
		assert.ErrorIs(t, Validate(cfg), ErrMissingCredential)
	})
}

func TestConfigLogValueHidesCredential(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = "super-secret"
	assert.NotContains(t, cfg.LogValue().String(), "super-secret")
}
