// Command server exposes the loaders and prompt chains over a websocket.
package main

import (
	"flag"
	"log"

	"github.com/xhad/docload/internal/cli"
	"github.com/xhad/docload/pkg/llm"
	"github.com/xhad/docload/pkg/server"
)

func main() {
	common := cli.Register(flag.CommandLine)
	addr := flag.String("addr", "", "Listen address (default from config or PORT: :8080)")
	root := flag.String("root", ".", "Directory that pdf and summarize paths are resolved against")
	flag.Parse()

	cfg, err := common.Load(flag.CommandLine)
	if err != nil {
		log.Fatal(err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	chatEngine, err := llm.NewWithConfig(cfg.ChatConfig())
	if err != nil {
		log.Fatalf("failed to initialize chat engine: %v", err)
	}

	serverConfig := server.Config{
		Root:         *root,
		PDFPassword:  cfg.PDF.Password,
		TextEncoding: cfg.Text.Encoding,
		Web:          cfg.WebConfig(),
		Question:     cfg.Web.Question,
		Streaming:    cfg.UI.Streaming,
	}
	if common.Split {
		serverConfig.Splitter = cfg.Splitter()
	}

	srv, err := server.NewWSServer(chatEngine, serverConfig)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		log.Fatal(err)
	}
}
