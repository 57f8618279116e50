package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/xhad/docload/pkg/llm"
	"github.com/xhad/docload/pkg/loader"
	"github.com/xhad/docload/pkg/processor"
	"gopkg.in/yaml.v3"
)

const (
	SplitterSentence  = "sentence"
	SplitterRecursive = "recursive"
)

type LLMConfig struct {
	Provider        string  `yaml:"provider"`
	BaseURL         string  `yaml:"base_url"`
	Model           string  `yaml:"model"`
	Token           string  `yaml:"token"`
	MaxTokens       int     `yaml:"max_tokens"`
	Temperature     float64 `yaml:"temperature"`
	SummaryTemplate string  `yaml:"summary_template"`
	AnswerTemplate  string  `yaml:"answer_template"`
}

type PDFConfig struct {
	Path     string `yaml:"path"`
	Password string `yaml:"password"`
}

type TextConfig struct {
	Path     string `yaml:"path"`
	Encoding string `yaml:"encoding"`
}

type WebConfig struct {
	URLs              []string `yaml:"urls"`
	Question          string   `yaml:"question"`
	UserAgent         string   `yaml:"user_agent"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	MaxDepth          int      `yaml:"max_depth"`
	IgnorePatterns    []string `yaml:"ignore_patterns"`
	ContinueOnFailure bool     `yaml:"continue_on_failure"`
	Readability       bool     `yaml:"readability"`
	TimeoutSeconds    int      `yaml:"timeout_seconds"`
}

type ProcessorConfig struct {
	Splitter        string `yaml:"splitter"`
	ChunkSize       int    `yaml:"chunk_size"`
	ChunkOverlap    int    `yaml:"chunk_overlap"`
	Lowercase       bool   `yaml:"lowercase"`
	RemoveStopwords bool   `yaml:"remove_stopwords"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type UIConfig struct {
	Streaming bool `yaml:"streaming"`
	NoColor   bool `yaml:"no_color"`
}

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	PDF       PDFConfig       `yaml:"pdf"`
	Text      TextConfig      `yaml:"text"`
	Web       WebConfig       `yaml:"web"`
	Processor ProcessorConfig `yaml:"processor"`
	Server    ServerConfig    `yaml:"server"`
	UI        UIConfig        `yaml:"ui"`
}

// LoadEnv loads credentials from an env file without overriding variables
// already set. With an empty path a missing ./.env is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading env file: %w", err)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/docload/config.yaml"),
			"/etc/docload/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := newConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)
	ResolveCredentials(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := newConfig()
	mergeWithEnv(&config)
	applyDefaults(&config)
	ResolveCredentials(&config)
	return &config, nil
}

// newConfig presets the fields whose zero value is a valid setting, so a
// file that sets them to zero keeps it.
func newConfig() Config {
	return Config{
		LLM: LLMConfig{Temperature: 0.7},
	}
}

func applyDefaults(config *Config) {
	if config.LLM.Provider == "" {
		config.LLM.Provider = llm.ProviderHuggingFace
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}

	if config.PDF.Path == "" {
		config.PDF.Path = "dl-curriculum.pdf"
	}

	if config.Text.Path == "" {
		config.Text.Path = "cricket.txt"
	}
	if config.Text.Encoding == "" {
		config.Text.Encoding = loader.EncodingUTF8
	}

	if len(config.Web.URLs) == 0 {
		config.Web.URLs = []string{"https://www.magicbricks.com/owner-property-for-sale-in-mumbai-pppfs"}
	}
	if config.Web.Question == "" {
		config.Web.Question = "what is the page about?"
	}
	if config.Web.RequestsPerSecond == 0 {
		config.Web.RequestsPerSecond = 2.0
	}
	if config.Web.TimeoutSeconds == 0 {
		config.Web.TimeoutSeconds = 30
	}

	if config.Processor.Splitter == "" {
		config.Processor.Splitter = SplitterSentence
	}
	if config.Processor.ChunkSize == 0 {
		config.Processor.ChunkSize = 1000
	}
	if config.Processor.ChunkOverlap == 0 {
		config.Processor.ChunkOverlap = 200
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
}

func mergeWithEnv(config *Config) {
	if provider := os.Getenv("DOCLOAD_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
	if model := os.Getenv("DOCLOAD_MODEL"); model != "" {
		config.LLM.Model = model
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Addr = ":" + port
	}
}

// ResolveCredentials fills the token and endpoint of the selected provider
// from its environment variables, which take precedence over file values.
// Call it again whenever the provider changes.
func ResolveCredentials(config *Config) {
	switch config.LLM.Provider {
	case llm.ProviderHuggingFace:
		if token := firstEnv("HUGGINGFACEHUB_API_TOKEN", "HF_TOKEN"); token != "" {
			config.LLM.Token = token
		}
	case llm.ProviderOpenAI:
		if token := os.Getenv("OPENAI_API_KEY"); token != "" {
			config.LLM.Token = token
		}
		if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
			config.LLM.BaseURL = baseURL
		}
	case llm.ProviderOllama:
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			config.LLM.BaseURL = baseURL
		}
		if config.LLM.BaseURL == "" {
			config.LLM.BaseURL = "http://localhost:11434"
		}
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func (c *Config) ChatConfig() llm.ChatConfig {
	return llm.ChatConfig{
		Provider:        c.LLM.Provider,
		Model:           c.LLM.Model,
		BaseURL:         c.LLM.BaseURL,
		Token:           c.LLM.Token,
		MaxTokens:       c.LLM.MaxTokens,
		Temperature:     c.LLM.Temperature,
		SummaryTemplate: c.LLM.SummaryTemplate,
		AnswerTemplate:  c.LLM.AnswerTemplate,
	}
}

func (c *Config) WebConfig() loader.WebConfig {
	return loader.WebConfig{
		UserAgent:         c.Web.UserAgent,
		Timeout:           time.Duration(c.Web.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.Web.RequestsPerSecond,
		MaxDepth:          c.Web.MaxDepth,
		IgnorePatterns:    c.Web.IgnorePatterns,
		ContinueOnFailure: c.Web.ContinueOnFailure,
		Readability:       c.Web.Readability,
	}
}

// Splitter returns the text splitter selected by the processor section.
func (c *Config) Splitter() textsplitter.TextSplitter {
	if c.Processor.Splitter == SplitterRecursive {
		overlap := c.Processor.ChunkOverlap
		if overlap < 0 {
			overlap = 0
		}
		return textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(c.Processor.ChunkSize),
			textsplitter.WithChunkOverlap(overlap),
		)
	}
	return processor.NewWithConfig(processor.ProcessorConfig{
		ChunkSize:       c.Processor.ChunkSize,
		ChunkOverlap:    c.Processor.ChunkOverlap,
		Lowercase:       c.Processor.Lowercase,
		RemoveStopwords: c.Processor.RemoveStopwords,
	})
}
