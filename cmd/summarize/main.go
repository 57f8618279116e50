// Command summarize loads a text file and asks an LLM to summarize it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/tmc/langchaingo/schema"
	"github.com/xhad/docload/internal/cli"
	"github.com/xhad/docload/internal/console"
	"github.com/xhad/docload/internal/models"
	"github.com/xhad/docload/pkg/config"
	"github.com/xhad/docload/pkg/llm"
	"github.com/xhad/docload/pkg/loader"
)

func main() {
	common := cli.Register(flag.CommandLine)
	file := flag.String("file", "", "Text file to summarize (default from config: cricket.txt)")
	encoding := flag.String("encoding", "", "File encoding, or \"auto\" to detect it (default utf-8)")
	flag.Parse()

	cfg, err := common.Load(flag.CommandLine)
	if err != nil {
		log.Fatal(err)
	}
	if *file != "" {
		cfg.Text.Path = *file
	}
	if *encoding != "" {
		cfg.Text.Encoding = *encoding
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := run(ctx, cfg, common.Split); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config, split bool) error {
	chatEngine, err := llm.NewWithConfig(cfg.ChatConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize chat engine: %w", err)
	}

	text := loader.NewText(cfg.Text.Path, loader.WithEncoding(cfg.Text.Encoding))
	var docs []schema.Document
	if split {
		docs, err = text.LoadAndSplit(ctx, cfg.Splitter())
	} else {
		docs, err = text.Load(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to load text: %w", err)
	}

	color.Green("✓ Loaded %d documents from %s\n", len(docs), cfg.Text.Path)
	console.PrintDocuments(os.Stdout, docs)

	input := models.JoinContent(docs)

	if cfg.UI.Streaming {
		stream, err := chatEngine.Stream(ctx, llm.SummaryPrompt(cfg.LLM.SummaryTemplate), map[string]any{
			llm.InputText: input,
		})
		if err != nil {
			return err
		}
		return console.PrintStream(os.Stdout, "Summary:", stream)
	}

	spinner := console.Spinner(" Generating summary...")
	summary, err := chatEngine.Summarize(ctx, input)
	spinner.Finish()
	if err != nil {
		return fmt.Errorf("failed to summarize: %w", err)
	}

	console.PrintResult(os.Stdout, "Summary:", summary)
	return nil
}
