package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/prompts"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/xhad/docload/internal/models"
	"github.com/xhad/docload/pkg/llm"
	"github.com/xhad/docload/pkg/loader"
)

// Client message types.
const (
	TypePDF       = "pdf"
	TypeSummarize = "summarize"
	TypeAsk       = "ask"
)

// Server message types.
const (
	TypeStatus   = "status"
	TypeDocument = "document"
	TypeStream   = "stream"
	TypeResponse = "response"
	TypeDone     = "done"
	TypeError    = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

type Message struct {
	Type     string      `json:"type"`
	Content  string      `json:"content"`
	Question string      `json:"question,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

type Config struct {
	// Root confines pdf and summarize paths to a directory. Empty means the
	// working directory.
	Root string

	PDFPassword  string
	TextEncoding string
	Web          loader.WebConfig
	Question     string

	// Splitter, when set, splits loaded documents before they are sent.
	Splitter  textsplitter.TextSplitter
	Streaming bool
}

type WSServer struct {
	config     Config
	chatEngine *llm.ChatEngine
}

func NewWSServer(chatEngine *llm.ChatEngine, config Config) (*WSServer, error) {
	if chatEngine == nil {
		return nil, errors.New("chat engine is required")
	}
	return &WSServer{
		config:     config,
		chatEngine: chatEngine,
	}, nil
}

// Handler returns the websocket endpoint at /ws and a health check at /health.
func (s *WSServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *WSServer) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting WebSocket server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// conn serializes writes; gorilla connections allow one concurrent writer.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(msgType, content string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := Message{Type: msgType, Content: content, Data: data}
	if err := c.ws.WriteJSON(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

func (s *WSServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	// In-flight requests stop when the client goes away.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &conn{ws: ws}
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Error reading message: %v", err)
			}
			cancel()
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			c.send(TypeError, fmt.Sprintf("invalid message: %v", err), nil)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleMessage(ctx, c, msg)
		}()
	}
}

func (s *WSServer) handleMessage(ctx context.Context, c *conn, msg Message) {
	if strings.TrimSpace(msg.Content) == "" {
		c.send(TypeError, "content is required", nil)
		return
	}

	var err error
	switch msg.Type {
	case TypePDF:
		err = s.handlePDF(ctx, c, msg)
	case TypeSummarize:
		err = s.handleSummarize(ctx, c, msg)
	case TypeAsk:
		err = s.handleAsk(ctx, c, msg)
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}

	if err != nil {
		c.send(TypeError, err.Error(), nil)
		return
	}
	c.send(TypeDone, msg.Type, nil)
}

func (s *WSServer) handlePDF(ctx context.Context, c *conn, msg Message) error {
	path, err := s.resolvePath(msg.Content)
	if err != nil {
		return err
	}

	c.send(TypeStatus, fmt.Sprintf("Loading PDF: %s", msg.Content), nil)
	docs, err := s.load(ctx, loader.NewPDF(path, loader.WithPassword(s.config.PDFPassword)))
	if err != nil {
		return fmt.Errorf("failed to load PDF: %w", err)
	}

	c.send(TypeStatus, fmt.Sprintf("Loaded %d documents", len(docs)), nil)
	for _, doc := range docs {
		c.send(TypeDocument, doc.PageContent, doc.Metadata)
	}
	return nil
}

func (s *WSServer) handleSummarize(ctx context.Context, c *conn, msg Message) error {
	path, err := s.resolvePath(msg.Content)
	if err != nil {
		return err
	}

	c.send(TypeStatus, fmt.Sprintf("Loading text: %s", msg.Content), nil)
	docs, err := s.load(ctx, loader.NewText(path, loader.WithEncoding(s.config.TextEncoding)))
	if err != nil {
		return fmt.Errorf("failed to load text: %w", err)
	}

	return s.respond(ctx, c, llm.SummaryPrompt(s.chatEngine.Config().SummaryTemplate), map[string]any{
		llm.InputText: models.JoinContent(docs),
	})
}

func (s *WSServer) handleAsk(ctx context.Context, c *conn, msg Message) error {
	question := msg.Question
	if question == "" {
		question = s.config.Question
	}

	webConfig := s.config.Web
	webConfig.OnProgress = func(url string) {
		c.send(TypeStatus, fmt.Sprintf("Fetching %s", url), nil)
	}
	web, err := loader.NewWeb([]string{msg.Content}, webConfig)
	if err != nil {
		return err
	}

	docs, err := s.load(ctx, web)
	if err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}

	return s.respond(ctx, c, llm.AnswerPrompt(s.chatEngine.Config().AnswerTemplate), map[string]any{
		llm.InputQuestion: question,
		llm.InputText:     models.JoinContent(docs),
	})
}

func (s *WSServer) load(ctx context.Context, l documentloaders.Loader) ([]schema.Document, error) {
	if s.config.Splitter != nil {
		return l.LoadAndSplit(ctx, s.config.Splitter)
	}
	return l.Load(ctx)
}

func (s *WSServer) respond(ctx context.Context, c *conn, prompt prompts.PromptTemplate, values map[string]any) error {
	if !s.config.Streaming {
		response, err := s.chatEngine.Run(ctx, prompt, values)
		if err != nil {
			return err
		}
		c.send(TypeResponse, response, nil)
		return nil
	}

	stream, err := s.chatEngine.Stream(ctx, prompt, values)
	if err != nil {
		return err
	}
	for chunk := range stream {
		if chunk.Err != nil {
			return chunk.Err
		}
		c.send(TypeStream, chunk.Text, nil)
	}
	return nil
}

// resolvePath maps a client path into the configured root so that clients
// cannot read files outside it.
func (s *WSServer) resolvePath(p string) (string, error) {
	root := s.config.Root
	if root == "" {
		root = "."
	}
	if filepath.IsAbs(p) {
		return "", fmt.Errorf("absolute paths are not allowed: %s", p)
	}
	return filepath.Join(root, filepath.Clean(string(filepath.Separator)+p)), nil
}
