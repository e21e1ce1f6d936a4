// Package server serves the card creation web UI and its JSON API.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/cardcreator/internal/cards"
	"codeberg.org/snonux/cardcreator/internal/lookup"
)

//go:embed templates/*.html
var templateFS embed.FS

// Lookuper looks words up, it is implemented by lookup.Service
type Lookuper interface {
	Lookup(ctx context.Context, word string) (*lookup.Result, error)
}

// CardStore persists assembled cards, it is implemented by anki.PendingStore
type CardStore interface {
	Append(records []cards.Record) error
}

// Exporter turns the pending cards into an Anki package and returns its path
type Exporter interface {
	Export(ctx context.Context) (string, error)
}

// Pinger checks a backing store for the health endpoint
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the server's collaborators
type Config struct {
	Lookup   Lookuper
	Store    CardStore
	Exporter Exporter
	// Components are pinged by /health, keyed by name
	Components map[string]Pinger
	Version    string
	Logger     *zap.Logger
}

// Server is the HTTP front end
type Server struct {
	cfg       Config
	log       *zap.Logger
	templates *template.Template
}

// New creates a server and parses its templates
func New(cfg Config) (*Server, error) {
	if cfg.Lookup == nil || cfg.Store == nil {
		return nil, errors.New("server needs a lookup service and a card store")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"infoLines": func(info string) []string {
			return strings.Split(info, cards.InfoSeparator)
		},
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		cfg:       cfg,
		log:       cfg.Logger.With(zap.String("component", "server")),
		templates: tmpl,
	}, nil
}

// Handler returns the routes wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /create", s.handleCreateRedirect)
	mux.HandleFunc("GET /create/{word}", s.handleCreatePage)
	mux.HandleFunc("POST /create/{word}", s.handleCreateAction)
	mux.HandleFunc("GET /words/{word}", s.handleWordPage)

	mux.HandleFunc("GET /api/lookup/{word}", s.handleAPILookup)
	mux.HandleFunc("POST /api/cards", s.handleAPICards)
	mux.HandleFunc("POST /api/add_cards", s.handleAPIAddCards)
	mux.HandleFunc("GET /export", s.handleExport)
	mux.HandleFunc("GET /health", s.handleHealth)

	return Chain(
		RequestID,
		Recovery(s.log),
		Logger(s.log),
	)(mux)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
