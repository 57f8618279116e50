// Command webqa loads web pages and asks an LLM a question about them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

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
	urls := flag.String("url", "", "Comma-separated URLs to load")
	question := flag.String("question", "", "Question to ask about the pages")
	maxDepth := flag.Int("max-depth", -1, "Follow same-host links up to this depth")
	rateLimit := flag.Float64("rate-limit", 0, "Maximum requests per second")
	readability := flag.Bool("readability", false, "Extract the main article text only")
	continueOnFailure := flag.Bool("continue", false, "Skip pages that fail to load")
	flag.Parse()

	cfg, err := common.Load(flag.CommandLine)
	if err != nil {
		log.Fatal(err)
	}
	if *urls != "" {
		cfg.Web.URLs = strings.Split(*urls, ",")
	}
	if *question != "" {
		cfg.Web.Question = *question
	}
	if *maxDepth >= 0 {
		cfg.Web.MaxDepth = *maxDepth
	}
	if *rateLimit > 0 {
		cfg.Web.RequestsPerSecond = *rateLimit
	}
	if *readability {
		cfg.Web.Readability = true
	}
	if *continueOnFailure {
		cfg.Web.ContinueOnFailure = true
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

	var fetched int32
	webConfig := cfg.WebConfig()
	webConfig.OnProgress = func(url string) {
		atomic.AddInt32(&fetched, 1)
	}

	web, err := loader.NewWeb(cfg.Web.URLs, webConfig)
	if err != nil {
		return err
	}

	loadingBar := console.ProgressBar(-1, " Loading pages")
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				loadingBar.Set(int(atomic.LoadInt32(&fetched)))
			}
		}
	}()

	var docs []schema.Document
	if split {
		docs, err = web.LoadAndSplit(ctx, cfg.Splitter())
	} else {
		docs, err = web.Load(ctx)
	}
	close(done)
	loadingBar.Finish()
	if err != nil {
		return fmt.Errorf("failed to load pages: %w", err)
	}

	color.Green("\n✓ Loaded %d documents\n", len(docs))
	console.PrintDocuments(os.Stdout, docs)

	color.Blue("\nQuestion: %s", cfg.Web.Question)
	input := models.JoinContent(docs)

	if cfg.UI.Streaming {
		stream, err := chatEngine.Stream(ctx, llm.AnswerPrompt(cfg.LLM.AnswerTemplate), map[string]any{
			llm.InputQuestion: cfg.Web.Question,
			llm.InputText:     input,
		})
		if err != nil {
			return err
		}
		return console.PrintStream(os.Stdout, "Answer:", stream)
	}

	spinner := console.Spinner(" Thinking...")
	answer, err := chatEngine.Answer(ctx, cfg.Web.Question, input)
	spinner.Finish()
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	console.PrintResult(os.Stdout, "Answer:", answer)
	return nil
}
