// Command pdfload loads a PDF file, one document per page, and prints the
// result.
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
	"github.com/xhad/docload/pkg/config"
	"github.com/xhad/docload/pkg/loader"
)

func main() {
	common := cli.Register(flag.CommandLine)
	file := flag.String("file", "", "PDF file to load (default from config: dl-curriculum.pdf)")
	password := flag.String("password", "", "Password for encrypted PDFs")
	flag.Parse()

	cfg, err := common.Load(flag.CommandLine)
	if err != nil {
		log.Fatal(err)
	}
	if *file != "" {
		cfg.PDF.Path = *file
	}
	if *password != "" {
		cfg.PDF.Password = *password
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := run(ctx, cfg, common.Split); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config, split bool) error {
	pdf := loader.NewPDF(cfg.PDF.Path, loader.WithPassword(cfg.PDF.Password))

	spinner := console.Spinner(fmt.Sprintf(" Loading %s...", cfg.PDF.Path))
	var (
		docs []schema.Document
		err  error
	)
	if split {
		docs, err = pdf.LoadAndSplit(ctx, cfg.Splitter())
	} else {
		docs, err = pdf.Load(ctx)
	}
	spinner.Finish()
	if err != nil {
		return fmt.Errorf("failed to load PDF: %w", err)
	}

	color.Green("\n✓ Loaded %d documents from %s\n", len(docs), cfg.PDF.Path)
	console.PrintDocuments(os.Stdout, docs)
	return nil
}
