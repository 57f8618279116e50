// Package cli holds the flag handling shared by the docload programs.
package cli

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/xhad/docload/internal/console"
	"github.com/xhad/docload/pkg/config"
)

// Common are the flags every program accepts. Flags that are set on the
// command line override the config file and environment.
type Common struct {
	ConfigPath  string
	EnvFile     string
	Provider    string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Streaming   bool
	Split       bool
	NoColor     bool
}

func Register(fs *flag.FlagSet) *Common {
	c := &Common{}
	fs.StringVar(&c.ConfigPath, "config", "", "Path to config file")
	fs.StringVar(&c.EnvFile, "env", "", "Path to .env file with API tokens")
	fs.StringVar(&c.Provider, "provider", "", "LLM provider (huggingface, ollama, openai)")
	fs.StringVar(&c.Model, "model", "", "LLM model to use")
	fs.StringVar(&c.BaseURL, "base-url", "", "LLM server URL")
	fs.IntVar(&c.MaxTokens, "max-tokens", 2000, "Maximum tokens for LLM response")
	fs.Float64Var(&c.Temperature, "temperature", 0.7, "Set the LLM Temperature")
	fs.BoolVar(&c.Streaming, "stream", false, "Stream the LLM response")
	fs.BoolVar(&c.Split, "split", false, "Split loaded documents into chunks")
	fs.BoolVar(&c.NoColor, "no-color", false, "Disable colored output")
	return c
}

// Load reads the env file and config, applies the flags that were set on fs
// and validates the result. fs must already be parsed.
func (c *Common) Load(fs *flag.FlagSet) (*config.Config, error) {
	if err := config.LoadEnv(c.EnvFile); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(c.ConfigPath)
	if err != nil {
		return nil, err
	}

	provider := cfg.LLM.Provider
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
		switch f.Name {
		case "provider":
			cfg.LLM.Provider = c.Provider
		case "model":
			cfg.LLM.Model = c.Model
		case "base-url":
			cfg.LLM.BaseURL = c.BaseURL
		case "max-tokens":
			cfg.LLM.MaxTokens = c.MaxTokens
		case "temperature":
			cfg.LLM.Temperature = c.Temperature
		case "stream":
			cfg.UI.Streaming = c.Streaming
		case "no-color":
			cfg.UI.NoColor = c.NoColor
		}
	})

	// Token, endpoint and model resolved so far belong to the old provider.
	if cfg.LLM.Provider != provider {
		cfg.LLM.Token = ""
		if !set["base-url"] {
			cfg.LLM.BaseURL = ""
		}
		if !set["model"] {
			cfg.LLM.Model = ""
		}
		config.ResolveCredentials(cfg)
		if set["base-url"] {
			cfg.LLM.BaseURL = c.BaseURL
		}
	}

	if verrs := cfg.Validate(); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, e := range verrs {
			errs[i] = e
		}
		return nil, errors.Join(errs...)
	}

	if cfg.UI.NoColor {
		console.DisableColor()
	}
	return cfg, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
