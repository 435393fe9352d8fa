// Package engine implements the conversation state machine at the core
// of LeavePipe: it consumes one inbound (sender, text) pair at a time
// and produces one reply plus zero or more side notifications.
//
// Routing precedence per inbound message, highest first:
//  1. substitute accept/decline bound to an existing assignment
//  2. manager role + command-shaped text
//  3. known submitter conversation session
//  4. directory lookup to start a new submitter session
//  5. unresolvable sender
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BTreeMap/LeavePipe/internal/advisor"
	"github.com/BTreeMap/LeavePipe/internal/directory"
	"github.com/BTreeMap/LeavePipe/internal/extract"
	"github.com/BTreeMap/LeavePipe/internal/models"
	"github.com/BTreeMap/LeavePipe/internal/session"
	"github.com/BTreeMap/LeavePipe/internal/store"
)

// Notifier sends outbound text to a destination address. Delivery is
// best-effort: failures are recorded as receipts, never surfaced to
// the triggering sender.
type Notifier interface {
	SendMessage(ctx context.Context, to, body string) error
}

// Opts holds the collaborators injected into the engine.
type Opts struct {
	Store     store.Store
	Sessions  *session.Store
	Directory directory.Directory
	Manager   *directory.ManagerCheck
	Notifier  Notifier
	Analyzer  advisor.Analyzer
}

// Option defines a configuration option for the engine.
type Option func(*Opts)

// WithStore sets the workflow record store.
func WithStore(s store.Store) Option {
	return func(o *Opts) { o.Store = s }
}

// WithSessions sets the conversation session store.
func WithSessions(s *session.Store) Option {
	return func(o *Opts) { o.Sessions = s }
}

// WithDirectory sets the people directory.
func WithDirectory(d directory.Directory) Option {
	return func(o *Opts) { o.Directory = d }
}

// WithManagerCheck sets the manager identity check.
func WithManagerCheck(m *directory.ManagerCheck) Option {
	return func(o *Opts) { o.Manager = m }
}

// WithNotifier sets the outbound notification sender.
func WithNotifier(n Notifier) Option {
	return func(o *Opts) { o.Notifier = n }
}

// WithAnalyzer sets the advisory analyzer. Optional: without one,
// manager notifications carry a fixed "not available" note.
func WithAnalyzer(a advisor.Analyzer) Option {
	return func(o *Opts) { o.Analyzer = a }
}

// Engine is the per-sender conversation state machine plus the
// stateless manager and substitute tracks.
type Engine struct {
	store     store.Store
	sessions  *session.Store
	directory directory.Directory
	manager   *directory.ManagerCheck
	notifier  Notifier
	analyzer  advisor.Analyzer

	senderLocks  *keyedMutex
	requestLocks *keyedMutex
}

// New creates an engine from the given options. Store, Sessions,
// Directory, Manager, and Notifier are required.
func New(opts ...Option) (*Engine, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("engine requires a store")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("engine requires a session store")
	}
	if cfg.Directory == nil {
		return nil, fmt.Errorf("engine requires a directory")
	}
	if cfg.Manager == nil {
		return nil, fmt.Errorf("engine requires a manager check")
	}
	if cfg.Notifier == nil {
		return nil, fmt.Errorf("engine requires a notifier")
	}
	return &Engine{
		store:        cfg.Store,
		sessions:     cfg.Sessions,
		directory:    cfg.Directory,
		manager:      cfg.Manager,
		notifier:     cfg.Notifier,
		analyzer:     cfg.Analyzer,
		senderLocks:  newKeyedMutex(),
		requestLocks: newKeyedMutex(),
	}, nil
}

// HandleMessage processes one inbound message and returns the reply
// for the sender. Side notifications to other parties are dispatched
// through the Notifier and recorded as receipts.
func (e *Engine) HandleMessage(ctx context.Context, from, body string) (string, error) {
	text := strings.TrimSpace(body)
	senderKey := directory.CanonicalPhone(from)
	slog.Debug("Engine HandleMessage", "sender", senderKey, "length", len(text))

	unlock := e.senderLocks.lock(senderKey)
	defer unlock()

	// Substitute accept/decline outranks everything, but only when an
	// assignment actually exists for the referenced id. The manager is
	// exempt so that "reject #N <reason>" always reaches command
	// dispatch.
	if reply, ok := extract.ParseSubstituteReply(text); ok && !e.manager.IsManager(from) {
		if handled, resp := e.handleSubstituteReply(ctx, from, reply); handled {
			return resp, nil
		}
	}

	if e.manager.IsManager(from) && extract.IsManagerCommand(text) {
		return e.handleManagerCommand(ctx, text), nil
	}

	sess := e.sessions.Get(from)
	if sess == nil {
		person, err := e.directory.FindByPhone(from)
		if err != nil {
			return "", fmt.Errorf("directory lookup failed: %w", err)
		}
		if person == nil {
			slog.Debug("Engine HandleMessage unresolvable sender", "sender", senderKey)
			return msgUnknownSender(), nil
		}
		sess = &models.Session{Phone: from, State: models.StateInitial, Person: *person}
	}
	return e.handleSubmitterMessage(ctx, sess, text), nil
}

// notify sends a side notification and records the outcome as a
// receipt. Failures never propagate to the caller.
func (e *Engine) notify(ctx context.Context, to, body string) {
	if to == "" {
		return
	}
	status := models.MessageStatusSent
	if err := e.notifier.SendMessage(ctx, to, body); err != nil {
		slog.Error("Engine notification failed", "error", err, "to", directory.CanonicalPhone(to))
		status = models.MessageStatusFailed
	}
	if err := e.store.AddReceipt(models.Receipt{To: to, Status: status, Time: time.Now().Unix()}); err != nil {
		slog.Error("Engine receipt write failed", "error", err, "to", directory.CanonicalPhone(to))
	}
}

// notifyByName resolves a person's phone through the directory and
// notifies them. Unresolvable names are skipped silently.
func (e *Engine) notifyByName(ctx context.Context, name, body string) {
	person, err := e.directory.FindByName(name)
	if err != nil || person == nil {
		slog.Debug("Engine notifyByName could not resolve recipient", "name", name)
		return
	}
	e.notify(ctx, person.Phone, body)
}

// lockRequest serializes work on a single leave request id.
func (e *Engine) lockRequest(id int) func() {
	return e.requestLocks.lock(strconv.Itoa(id))
}

// advisorySummary runs the analyzer for a freshly created request.
// Any failure degrades to a fixed note rather than blocking the
// submission.
func (e *Engine) advisorySummary(ctx context.Context, req *models.LeaveRequest, requester models.Person) string {
	const unavailable = "Analysis not available"
	if e.analyzer == nil {
		return unavailable
	}
	candidates, err := e.directory.ListOthers(requester.Name, models.MaxSubstituteSuggestions)
	if err != nil {
		slog.Error("Engine substitute listing for advisory failed", "error", err)
		candidates = nil
	}
	summary, err := e.analyzer.Analyze(ctx, advisor.Input{
		Requester:  requester,
		Request:    *req,
		Candidates: candidates,
	})
	if err != nil {
		slog.Error("Engine advisory analysis failed", "error", err, "leave_id", req.ID)
		return unavailable
	}
	return advisor.Truncate(summary, models.MaxAdvisorySummaryLength)
}

// keyedMutex serializes work per string key so unrelated conversations
// and requests never block each other. Entries are reference-counted
// and dropped once the last holder releases, so the map only ever
// holds keys with a message in flight.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// size returns the number of keys currently held or awaited.
func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
