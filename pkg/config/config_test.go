package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/xhad/docload/pkg/processor"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DOCLOAD_PROVIDER", "DOCLOAD_MODEL", "PORT",
		"HUGGINGFACEHUB_API_TOKEN", "HF_TOKEN",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OLLAMA_BASE_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
llm:
  provider: "ollama"
  base_url: "http://localhost:11434"
  model: "gemma2"
  max_tokens: 1000
  temperature: 0.5

pdf:
  path: "docs/curriculum.pdf"

text:
  path: "docs/cricket.txt"
  encoding: "latin1"

web:
  urls:
    - "https://example.com/a"
    - "https://example.com/b"
  question: "who wrote this?"
  requests_per_second: 1.5
  max_depth: 1
  ignore_patterns:
    - "/private/"
  continue_on_failure: true
  readability: true

processor:
  splitter: "recursive"
  chunk_size: 500
  chunk_overlap: 100

ui:
  streaming: true
`
	require.NoError(t, os.WriteFile(configPath, []byte(configData), 0644))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "ollama", config.LLM.Provider)
	assert.Equal(t, "http://localhost:11434", config.LLM.BaseURL)
	assert.Equal(t, "gemma2", config.LLM.Model)
	assert.Equal(t, 1000, config.LLM.MaxTokens)
	assert.Equal(t, 0.5, config.LLM.Temperature)
	assert.Equal(t, "docs/curriculum.pdf", config.PDF.Path)
	assert.Equal(t, "docs/cricket.txt", config.Text.Path)
	assert.Equal(t, "latin1", config.Text.Encoding)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, config.Web.URLs)
	assert.Equal(t, "who wrote this?", config.Web.Question)
	assert.Equal(t, 1, config.Web.MaxDepth)
	assert.True(t, config.Web.ContinueOnFailure)
	assert.Equal(t, 500, config.Processor.ChunkSize)
	assert.True(t, config.UI.Streaming)

	// Unset sections fall back to defaults
	assert.Equal(t, 30, config.Web.TimeoutSeconds)
	assert.Equal(t, ":8080", config.Server.Addr)

	assert.Empty(t, config.Validate())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	clearEnv(t)

	config, err := getDefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, "huggingface", config.LLM.Provider)
	assert.Equal(t, 0.7, config.LLM.Temperature)
	assert.Equal(t, "dl-curriculum.pdf", config.PDF.Path)
	assert.Equal(t, "cricket.txt", config.Text.Path)
	assert.Equal(t, "utf-8", config.Text.Encoding)
	assert.Equal(t, []string{"https://www.magicbricks.com/owner-property-for-sale-in-mumbai-pppfs"}, config.Web.URLs)
	assert.Equal(t, "what is the page about?", config.Web.Question)
	assert.Empty(t, config.Validate())
}

func TestConfigValidation(t *testing.T) {
	clearEnv(t)

	valid, err := getDefaultConfig()
	require.NoError(t, err)

	tests := []struct {
		name          string
		mutate        func(c *Config)
		errorMessages []string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name: "invalid llm",
			mutate: func(c *Config) {
				c.LLM.Provider = "carrier-pigeon"
				c.LLM.BaseURL = "not a url"
				c.LLM.MaxTokens = 10000
				c.LLM.Temperature = 3.0
			},
			errorMessages: []string{
				"llm.provider: provider must be one of huggingface, ollama, openai",
				"llm.base_url: invalid base URL",
				"llm.max_tokens: max_tokens must be between 1 and 8192",
				"llm.temperature: temperature must be between 0 and 2",
			},
		},
		{
			name: "invalid web",
			mutate: func(c *Config) {
				c.Web.URLs = []string{"ftp://example.com"}
				c.Web.RequestsPerSecond = 0
				c.Web.MaxDepth = -1
			},
			errorMessages: []string{
				"web.urls: invalid URL: ftp://example.com",
				"web.requests_per_second: requests_per_second must be positive",
				"web.max_depth: max_depth cannot be negative",
			},
		},
		{
			name: "invalid processor",
			mutate: func(c *Config) {
				c.Text.Encoding = ""
				c.Processor.Splitter = "words"
				c.Processor.ChunkOverlap = c.Processor.ChunkSize
			},
			errorMessages: []string{
				"text.encoding: encoding is required",
				"processor.splitter: splitter must be sentence or recursive",
				"processor.chunk_overlap: chunk_overlap must be less than chunk_size",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := *valid
			tt.mutate(&config)

			errors := config.Validate()
			require.Len(t, errors, len(tt.errorMessages))
			for i, msg := range tt.errorMessages {
				assert.Equal(t, msg, errors[i].Error())
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnv(t)

	t.Run("huggingface token", func(t *testing.T) {
		t.Setenv("HF_TOKEN", "hf_env")

		config := &Config{LLM: LLMConfig{Provider: "huggingface"}}
		ResolveCredentials(config)
		assert.Equal(t, "hf_env", config.LLM.Token)
	})

	t.Run("ollama", func(t *testing.T) {
		t.Setenv("DOCLOAD_PROVIDER", "ollama")
		t.Setenv("OLLAMA_BASE_URL", "http://env-ollama:11434")
		t.Setenv("PORT", "9000")

		config := &Config{}
		mergeWithEnv(config)
		ResolveCredentials(config)
		assert.Equal(t, "ollama", config.LLM.Provider)
		assert.Equal(t, "http://env-ollama:11434", config.LLM.BaseURL)
		assert.Equal(t, ":9000", config.Server.Addr)
	})

	t.Run("ollama default endpoint", func(t *testing.T) {
		config := &Config{LLM: LLMConfig{Provider: "ollama"}}
		ResolveCredentials(config)
		assert.Equal(t, "http://localhost:11434", config.LLM.BaseURL)
	})

	t.Run("openai", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-env")
		t.Setenv("HF_TOKEN", "hf_env")

		config := &Config{LLM: LLMConfig{Provider: "openai"}}
		ResolveCredentials(config)
		assert.Equal(t, "sk-env", config.LLM.Token)
	})

	t.Run("provider credentials stay out of the generic merge", func(t *testing.T) {
		t.Setenv("HF_TOKEN", "hf_env")

		config := &Config{}
		mergeWithEnv(config)
		assert.Empty(t, config.LLM.Token)
	})
}

func TestTemperature(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name     string
		yaml     string
		expected float64
	}{
		{"explicit zero is kept", "llm:\n  temperature: 0\n", 0},
		{"explicit value", "llm:\n  temperature: 1.2\n", 1.2},
		{"unset uses default", "llm:\n  model: \"gemma2\"\n", 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))

			config, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, config.LLM.Temperature)
			assert.Equal(t, tt.expected, config.ChatConfig().Temperature)
		})
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is present, even if empty
	os.Unsetenv("HUGGINGFACEHUB_API_TOKEN")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HUGGINGFACEHUB_API_TOKEN=hf_from_file\n"), 0644))

	require.NoError(t, LoadEnv(path))

	config, err := getDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, "hf_from_file", config.LLM.Token)

	assert.Error(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestSplitter(t *testing.T) {
	config := &Config{Processor: ProcessorConfig{Splitter: SplitterRecursive, ChunkSize: 100, ChunkOverlap: -1}}
	_, ok := config.Splitter().(textsplitter.RecursiveCharacter)
	assert.True(t, ok)

	config.Processor.Splitter = SplitterSentence
	_, ok = config.Splitter().(processor.Processor)
	assert.True(t, ok)
}

func TestComponentConfigs(t *testing.T) {
	clearEnv(t)

	config, err := getDefaultConfig()
	require.NoError(t, err)
	config.LLM.Token = "hf_test"
	config.Web.MaxDepth = 2

	chat := config.ChatConfig()
	assert.Equal(t, "huggingface", chat.Provider)
	assert.Equal(t, "hf_test", chat.Token)

	web := config.WebConfig()
	assert.Equal(t, 2, web.MaxDepth)
	assert.Equal(t, 30.0, web.Timeout.Seconds())
}
