package llm

import (
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/prompts"
)

// Default prompt templates, in Go template syntax.
const (
	SummaryTemplate = "Write a summary for the following text {{.text}}"
	AnswerTemplate  = "Answer the following question \n {{.question}} from the {{.text}}"
)

// Input variable names used by the templates.
const (
	InputText     = "text"
	InputQuestion = "question"
)

// ErrMissingInput is returned when a prompt variable has no value.
var ErrMissingInput = errors.New("missing prompt input")

func SummaryPrompt(template string) prompts.PromptTemplate {
	if template == "" {
		template = SummaryTemplate
	}
	return prompts.NewPromptTemplate(template, []string{InputText})
}

func AnswerPrompt(template string) prompts.PromptTemplate {
	if template == "" {
		template = AnswerTemplate
	}
	return prompts.NewPromptTemplate(template, []string{InputQuestion, InputText})
}

func checkInputs(prompt prompts.PromptTemplate, values map[string]any) error {
	for _, name := range prompt.InputVariables {
		if _, ok := values[name]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingInput, name)
		}
	}
	return nil
}
