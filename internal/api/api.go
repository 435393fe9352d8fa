// Package api provides HTTP handlers and the main API server logic for LeavePipe.
//
// It exposes the inbound webhook plus read-only endpoints for leave
// requests, receipts, and stats. The API integrates the messaging,
// engine, and store modules and owns the inbound response loop that
// feeds sender messages into the conversation engine.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/BTreeMap/LeavePipe/internal/advisor"
	"github.com/BTreeMap/LeavePipe/internal/directory"
	"github.com/BTreeMap/LeavePipe/internal/engine"
	"github.com/BTreeMap/LeavePipe/internal/messaging"
	"github.com/BTreeMap/LeavePipe/internal/session"
	"github.com/BTreeMap/LeavePipe/internal/store"
	"github.com/BTreeMap/LeavePipe/internal/twiliowhatsapp"
	"github.com/BTreeMap/LeavePipe/internal/util"
	"github.com/BTreeMap/LeavePipe/internal/whatsapp"
)

// DefaultAddr is the default API server listen address.
const DefaultAddr = ":8080"

// Opts holds configuration options for the API server.
type Opts struct {
	// Addr is the listen address for the HTTP server.
	Addr string
	// ManagerPhone is the designated manager's WhatsApp number.
	ManagerPhone string
	// DirectoryDSN is the SQLite DSN for the employee directory.
	DirectoryDSN string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the API server listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithManagerPhone sets the designated manager's WhatsApp number.
func WithManagerPhone(phone string) Option {
	return func(o *Opts) { o.ManagerPhone = phone }
}

// WithDirectoryDSN sets the SQLite DSN for the employee directory.
func WithDirectoryDSN(dsn string) Option {
	return func(o *Opts) { o.DirectoryDSN = dsn }
}

// Server wires the messaging service, workflow store, and conversation
// engine behind the HTTP surface.
type Server struct {
	msgService messaging.Service
	st         store.Store
	eng        *engine.Engine
	addr       string

	// twilio is set when the messaging service is Twilio-backed, so the
	// inbound webhook route can be registered.
	twilio *messaging.TwilioService
}

// NewServer creates a Server over the given collaborators. An empty
// addr falls back to DefaultAddr.
func NewServer(msgService messaging.Service, st store.Store, eng *engine.Engine, addr string) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	s := &Server{
		msgService: msgService,
		st:         st,
		eng:        eng,
		addr:       addr,
	}
	if twilioService, ok := msgService.(*messaging.TwilioService); ok {
		s.twilio = twilioService
	}
	return s
}

// Handler builds the HTTP route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/message", s.messageHandler)
	mux.HandleFunc("/requests", s.requestsHandler)
	mux.HandleFunc("/requests/", s.requestDetailHandler)
	mux.HandleFunc("/receipts", s.receiptsHandler)
	mux.HandleFunc("/stats", s.statsHandler)
	if s.twilio != nil {
		mux.HandleFunc("/webhook", s.twilio.TwilioWebhookHandler)
	}
	return mux
}

// Start launches the inbound response loop and the HTTP server. It
// blocks until the server exits.
func (s *Server) Start(ctx context.Context) error {
	if err := s.msgService.Start(ctx); err != nil {
		return fmt.Errorf("failed to start messaging service: %w", err)
	}
	go s.responseLoop(ctx)

	slog.Info("LeavePipe API running", "addr", s.addr)
	if err := http.ListenAndServe(s.addr, s.Handler()); err != nil {
		return fmt.Errorf("API server failed: %w", err)
	}
	return nil
}

// responseLoop drains inbound sender messages from the messaging
// service, runs each through the engine, and sends the reply back to
// the sender. This is the conversational core of the service; the HTTP
// endpoints are operational surface around it.
func (s *Server) responseLoop(ctx context.Context) {
	slog.Debug("Server.responseLoop started")
	for {
		select {
		case <-ctx.Done():
			slog.Debug("Server.responseLoop stopping due to context cancellation")
			return
		case resp, ok := <-s.msgService.Responses():
			if !ok {
				slog.Debug("Server.responseLoop responses channel closed")
				return
			}
			reply, err := s.eng.HandleMessage(ctx, resp.From, resp.Body)
			if err != nil {
				slog.Error("Server.responseLoop engine error", "error", err, "from", resp.From)
				continue
			}
			if reply == "" {
				continue
			}
			if err := s.msgService.SendMessage(ctx, resp.From, reply); err != nil {
				slog.Error("Server.responseLoop reply send failed", "error", err, "to", resp.From)
			}
		}
	}
}

// Run wires up all modules from the given option sets and starts the
// service. It blocks until the HTTP server exits.
func Run(waOpts []whatsapp.Option, storeOpts []store.Option, advisorOpts []advisor.Option, apiOpts []Option) error {
	var cfg Opts
	for _, opt := range apiOpts {
		opt(&cfg)
	}

	st, err := buildStore(storeOpts)
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.DirectoryDSN == "" {
		return fmt.Errorf("employee directory DSN must be provided")
	}
	dir, err := directory.NewSQLiteDirectory(cfg.DirectoryDSN)
	if err != nil {
		return fmt.Errorf("failed to open employee directory: %w", err)
	}
	defer dir.Close()

	msgService, err := buildMessagingService(waOpts)
	if err != nil {
		return err
	}
	defer msgService.Stop()

	ttlMinutes := util.ParseIntEnv("SESSION_TTL_MINUTES", int(session.DefaultIdleTTL/time.Minute))
	sessions := session.NewStore(session.WithIdleTTL(time.Duration(ttlMinutes) * time.Minute))
	defer sessions.Close()

	engineOpts := []engine.Option{
		engine.WithStore(st),
		engine.WithSessions(sessions),
		engine.WithDirectory(dir),
		engine.WithManagerCheck(directory.NewManagerCheck(cfg.ManagerPhone)),
		engine.WithNotifier(msgService),
	}
	if analyzer := buildAnalyzer(advisorOpts); analyzer != nil {
		engineOpts = append(engineOpts, engine.WithAnalyzer(analyzer))
	}
	eng, err := engine.New(engineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	server := NewServer(msgService, st, eng, cfg.Addr)
	return server.Start(context.Background())
}

// buildStore creates the workflow store, picking the backend from the
// configured DSN.
func buildStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if store.DetectDSNType(cfg.DSN) == "postgres" {
		slog.Debug("Run using PostgreSQL store", "dsn_set", cfg.DSN != "")
		st, err := store.NewPostgresStore(storeOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL store: %w", err)
		}
		return st, nil
	}
	slog.Debug("Run using SQLite store", "dsn_set", cfg.DSN != "")
	st, err := store.NewSQLiteStore(storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite store: %w", err)
	}
	return st, nil
}

// buildMessagingService selects the message transport: Twilio when
// USE_TWILIO is set, the Whatsmeow client otherwise.
func buildMessagingService(waOpts []whatsapp.Option) (messaging.Service, error) {
	if util.ParseBoolEnv("USE_TWILIO", false) {
		slog.Info("Run using Twilio WhatsApp transport")
		twilioClient, err := twiliowhatsapp.NewClient()
		if err != nil {
			return nil, fmt.Errorf("failed to create Twilio client: %w", err)
		}
		return messaging.NewTwilioService(twilioClient), nil
	}
	slog.Info("Run using Whatsmeow WhatsApp transport")
	waClient, err := whatsapp.NewClient(waOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create WhatsApp client: %w", err)
	}
	return messaging.NewWhatsAppService(waClient), nil
}

// buildAnalyzer creates the advisory analyzer when an API key is
// configured. The analyzer is optional; without one, manager
// notifications carry a fixed "not available" note.
func buildAnalyzer(advisorOpts []advisor.Option) advisor.Analyzer {
	var cfg advisor.Opts
	for _, opt := range advisorOpts {
		opt(&cfg)
	}
	if cfg.APIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
		slog.Warn("Run: no OpenAI API key configured, advisory analysis disabled")
		return nil
	}
	if cfg.APIKey == "" {
		advisorOpts = append(advisorOpts, advisor.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
	}
	analyzer, err := advisor.NewOpenAIAnalyzer(advisorOpts...)
	if err != nil {
		slog.Warn("Run: failed to create advisory analyzer, continuing without it", "error", err)
		return nil
	}
	return analyzer
}
