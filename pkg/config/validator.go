package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/xhad/docload/pkg/llm"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate LLM config
	if !contains(llm.Providers(), c.LLM.Provider) {
		errors = append(errors, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("provider must be one of %s", strings.Join(llm.Providers(), ", ")),
		})
	}

	if c.LLM.BaseURL != "" && !isHTTPURL(c.LLM.BaseURL) {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "invalid base URL",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 8192 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 8192",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	// Validate Text config
	if c.Text.Encoding == "" {
		errors = append(errors, ValidationError{
			Field:   "text.encoding",
			Message: "encoding is required",
		})
	}

	// Validate Web config
	for _, u := range c.Web.URLs {
		if !isHTTPURL(u) {
			errors = append(errors, ValidationError{
				Field:   "web.urls",
				Message: fmt.Sprintf("invalid URL: %s", u),
			})
		}
	}

	if c.Web.RequestsPerSecond <= 0 {
		errors = append(errors, ValidationError{
			Field:   "web.requests_per_second",
			Message: "requests_per_second must be positive",
		})
	}

	if c.Web.MaxDepth < 0 {
		errors = append(errors, ValidationError{
			Field:   "web.max_depth",
			Message: "max_depth cannot be negative",
		})
	}

	if c.Web.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "web.timeout_seconds",
			Message: "timeout_seconds cannot be negative",
		})
	}

	// Validate Processor config
	if c.Processor.Splitter != SplitterSentence && c.Processor.Splitter != SplitterRecursive {
		errors = append(errors, ValidationError{
			Field:   "processor.splitter",
			Message: fmt.Sprintf("splitter must be %s or %s", SplitterSentence, SplitterRecursive),
		})
	}

	if c.Processor.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "processor.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Processor.ChunkOverlap >= c.Processor.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "processor.chunk_overlap",
			Message: "chunk_overlap must be less than chunk_size",
		})
	}

	return errors
}

func isHTTPURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
