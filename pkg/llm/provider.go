package llm

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/huggingface"
	"github.com/tmc/langchaingo/llms/ollama"
)

const (
	ProviderHuggingFace = "huggingface"
	ProviderOllama      = "ollama"
	ProviderOpenAI      = "openai"
)

var defaultModels = map[string]string{
	ProviderHuggingFace: "google/gemma-2-2b-it",
	ProviderOllama:      "mistral",
	ProviderOpenAI:      "gpt-4o-mini",
}

// Providers lists the supported provider names.
func Providers() []string {
	return []string{ProviderHuggingFace, ProviderOllama, ProviderOpenAI}
}

func newModel(config ChatConfig) (llms.Model, error) {
	switch config.Provider {
	case ProviderHuggingFace:
		opts := []huggingface.Option{huggingface.WithModel(config.Model)}
		if config.Token != "" {
			opts = append(opts, huggingface.WithToken(config.Token))
		}
		if config.BaseURL != "" {
			opts = append(opts, huggingface.WithURL(config.BaseURL))
		}
		return huggingface.New(opts...)

	case ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(config.Model)}
		if config.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(config.BaseURL))
		}
		return ollama.New(opts...)

	case ProviderOpenAI:
		return NewOpenAI(config.Token, config.BaseURL, config.Model), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", config.Provider)
	}
}
