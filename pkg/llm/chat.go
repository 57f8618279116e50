package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty response from model")

// ChatConfig represents the configuration for a chat engine.
type ChatConfig struct {
	Provider        string
	Model           string
	BaseURL         string
	Token           string
	MaxTokens       int
	Temperature     float64
	SummaryTemplate string
	AnswerTemplate  string
}

// ChatEngine runs prompt templates against a model.
type ChatEngine struct {
	config ChatConfig
	llm    llms.Model
}

// NewWithConfig creates a ChatEngine backed by the configured provider.
func NewWithConfig(config ChatConfig) (*ChatEngine, error) {
	config, err := withDefaults(config)
	if err != nil {
		return nil, err
	}

	model, err := newModel(config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &ChatEngine{
		config: config,
		llm:    model,
	}, nil
}

// NewWithModel creates a ChatEngine around an existing model.
func NewWithModel(model llms.Model, config ChatConfig) (*ChatEngine, error) {
	if model == nil {
		return nil, errors.New("model is required")
	}
	config, err := withDefaults(config)
	if err != nil {
		return nil, err
	}
	return &ChatEngine{config: config, llm: model}, nil
}

func withDefaults(config ChatConfig) (ChatConfig, error) {
	if config.Provider == "" {
		config.Provider = ProviderHuggingFace
	}
	if config.Model == "" {
		config.Model = defaultModels[config.Provider]
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return config, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return config, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	return config, nil
}

// Config returns the engine configuration with defaults applied.
func (ce *ChatEngine) Config() ChatConfig {
	return ce.config
}

// Summarize asks the model for a summary of text.
func (ce *ChatEngine) Summarize(ctx context.Context, text string) (string, error) {
	return ce.Run(ctx, SummaryPrompt(ce.config.SummaryTemplate), map[string]any{
		InputText: text,
	})
}

// Answer asks the model to answer question from text.
func (ce *ChatEngine) Answer(ctx context.Context, question, text string) (string, error) {
	return ce.Run(ctx, AnswerPrompt(ce.config.AnswerTemplate), map[string]any{
		InputQuestion: question,
		InputText:     text,
	})
}

// Run fills prompt with values, sends it to the model and returns the
// response text unchanged.
func (ce *ChatEngine) Run(ctx context.Context, prompt prompts.PromptTemplate, values map[string]any) (string, error) {
	if err := checkInputs(prompt, values); err != nil {
		return "", err
	}
	return ce.call(ctx, prompt, values, ce.callOptions()...)
}

// Chunk is one piece of a streamed response. A chunk with Err set is the
// last one on its channel.
type Chunk struct {
	Text string
	Err  error
}

// Stream is Run with the response delivered in chunks as the model produces
// them. Providers that do not stream deliver the whole response as one chunk.
func (ce *ChatEngine) Stream(ctx context.Context, prompt prompts.PromptTemplate, values map[string]any) (<-chan Chunk, error) {
	if err := checkInputs(prompt, values); err != nil {
		return nil, err
	}

	resultChan := make(chan Chunk)

	go func() {
		defer close(resultChan)

		streamed := false
		opts := append(ce.callOptions(), chains.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			streamed = true
			return send(ctx, resultChan, Chunk{Text: string(chunk)})
		}))

		text, err := ce.call(ctx, prompt, values, opts...)
		if err != nil {
			_ = send(ctx, resultChan, Chunk{Err: err})
			return
		}
		if !streamed {
			_ = send(ctx, resultChan, Chunk{Text: text})
		}
	}()

	return resultChan, nil
}

func (ce *ChatEngine) call(ctx context.Context, prompt prompts.PromptTemplate, values map[string]any, opts ...chains.ChainCallOption) (string, error) {
	chain := chains.NewLLMChain(ce.llm, prompt)

	out, err := chains.Call(ctx, chain, values, opts...)
	if err != nil {
		return "", fmt.Errorf("chat error: %w", err)
	}

	text, ok := out[chain.OutputKey].(string)
	if !ok || text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (ce *ChatEngine) callOptions() []chains.ChainCallOption {
	opts := []chains.ChainCallOption{
		chains.WithMaxTokens(ce.config.MaxTokens),
	}
	// The Hugging Face inference API rejects a zero temperature.
	if ce.config.Temperature > 0 || ce.config.Provider != ProviderHuggingFace {
		opts = append(opts, chains.WithTemperature(ce.config.Temperature))
	}
	return opts
}

func send(ctx context.Context, ch chan<- Chunk, c Chunk) error {
	select {
	case ch <- c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
