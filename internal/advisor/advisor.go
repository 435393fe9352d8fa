// Package advisor produces free-text advisory summaries for manager
// decisions using the OpenAI API. The summary is non-binding context
// attached to manager notifications; the engine never branches on it.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/BTreeMap/LeavePipe/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Input carries the request context handed to the analyzer.
type Input struct {
	Requester  models.Person
	Request    models.LeaveRequest
	Candidates []models.Person
}

// Analyzer produces an advisory summary for a leave request.
type Analyzer interface {
	Analyze(ctx context.Context, in Input) (string, error)
}

// Opts holds configuration options for the OpenAI analyzer.
type Opts struct {
	// APIKey is the OpenAI API key.
	APIKey string
	// Model overrides the default chat model.
	Model string
}

// Option defines a configuration option for the OpenAI analyzer.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

const systemPrompt = "You are an HR assistant. Analyze leave requests and give a short, " +
	"factual recommendation for the manager. You advise only; the manager decides."

// OpenAIAnalyzer is an Analyzer backed by the OpenAI chat completions API.
type OpenAIAnalyzer struct {
	client openai.Client
	model  string
}

// NewOpenAIAnalyzer creates an analyzer using the provided options.
func NewOpenAIAnalyzer(opts ...Option) (*OpenAIAnalyzer, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not set")
	}
	model := cfg.Model
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	slog.Debug("NewOpenAIAnalyzer created", "model", model)
	return &OpenAIAnalyzer{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  model,
	}, nil
}

// Analyze returns an advisory summary for the request, truncated to
// models.MaxAdvisorySummaryLength.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, in Input) (string, error) {
	completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(in)),
		},
	})
	if err != nil {
		slog.Error("OpenAIAnalyzer Analyze failed", "error", err, "leave_id", in.Request.ID)
		return "", fmt.Errorf("advisory analysis failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("advisory analysis returned no choices")
	}
	return Truncate(completion.Choices[0].Message.Content, models.MaxAdvisorySummaryLength), nil
}

// buildPrompt renders the request context as the user message.
func buildPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Employee: %s\n", in.Requester.Name)
	if in.Requester.Department != "" {
		fmt.Fprintf(&b, "Department: %s\n", in.Requester.Department)
	}
	if in.Requester.AvailableLeaves > 0 {
		fmt.Fprintf(&b, "Available leave balance: %d days\n", in.Requester.AvailableLeaves)
	}
	if in.Requester.PendingWork != "" {
		fmt.Fprintf(&b, "Pending work: %s\n", in.Requester.PendingWork)
	}
	if in.Requester.RoleCriticality != "" {
		fmt.Fprintf(&b, "Role criticality: %s\n", in.Requester.RoleCriticality)
	}
	fmt.Fprintf(&b, "Days requested: %d\n", in.Request.Days)
	fmt.Fprintf(&b, "Reason: %s\n", in.Request.Reason)

	if len(in.Candidates) > 0 {
		b.WriteString("Available substitutes for this period:\n")
		for _, p := range in.Candidates {
			dept := p.Department
			if dept == "" {
				dept = "N/A"
			}
			fmt.Fprintf(&b, "- %s (Dept: %s)\n", p.Name, dept)
		}
	} else {
		b.WriteString("Available substitutes for this period: none\n")
	}

	b.WriteString("\nConsider:\n")
	b.WriteString("1. LEAVE BALANCE: Does the employee have enough leave left?\n")
	b.WriteString("2. DURATION: Is the requested duration reasonable for the reason?\n")
	b.WriteString("3. ROLE IMPACT: Can the role be covered while they are away?\n")
	b.WriteString("4. SUBSTITUTE AVAILABILITY: Comment on the available substitutes.\n")
	b.WriteString("5. RECOMMENDATION: A one-line approve/reject lean with rationale.\n")
	return b.String()
}

// Truncate shortens s to at most max runes, appending an ellipsis when
// anything was cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// MockAnalyzer is a test Analyzer returning a canned summary. Safe for
// concurrent use.
type MockAnalyzer struct {
	Summary string
	Err     error

	mu     sync.Mutex
	inputs []Input
}

// Analyze records the input and returns the canned summary.
func (m *MockAnalyzer) Analyze(_ context.Context, in Input) (string, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, in)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if m.Summary == "" {
		return "Advisory analysis not available", nil
	}
	return m.Summary, nil
}

// Inputs returns a copy of every recorded call.
func (m *MockAnalyzer) Inputs() []Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Input(nil), m.inputs...)
}
