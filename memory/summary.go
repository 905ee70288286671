package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/logging"
	"github.com/hupe1980/agentloop/model"
)

// SummaryOptions configure a Summary store.
type SummaryOptions struct {
	// MaxMessages triggers compaction once the raw message count exceeds it.
	MaxMessages int
	// SummaryThreshold is how many of the most recent raw messages survive
	// compaction verbatim. Must be smaller than MaxMessages.
	SummaryThreshold int
	// Scope tags the store's tenant/conversation identity.
	Scope Scope
	// Logger receives compaction telemetry. Defaults to NoOp.
	Logger logging.Logger
}

const summaryInstruction = "You maintain a running summary of a conversation. " +
	"Merge the previous summary (if any) with the new messages into one concise summary " +
	"that preserves every fact, decision and open question. Reply with the summary only."

// Summary accumulates messages normally until the count exceeds MaxMessages,
// then compacts everything older than the last SummaryThreshold messages into
// a single summary message produced by the language model. The summary
// message is unique and mutated in place, never duplicated; compaction is a
// monotonic one-way reduction.
type Summary struct {
	mu        sync.RWMutex
	scope     Scope
	max       int
	threshold int
	llm       model.Model
	logger    logging.Logger
	summary   *core.Message
	messages  []core.Message
}

// NewSummary creates a Summary store compacting through the given model.
func NewSummary(llm model.Model, optFns ...func(o *SummaryOptions)) *Summary {
	opts := SummaryOptions{
		MaxMessages:      20,
		SummaryThreshold: 10,
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxMessages < 2 {
		opts.MaxMessages = 2
	}
	if opts.SummaryThreshold < 1 || opts.SummaryThreshold >= opts.MaxMessages {
		opts.SummaryThreshold = opts.MaxMessages / 2
	}
	return &Summary{
		scope:     opts.Scope,
		max:       opts.MaxMessages,
		threshold: opts.SummaryThreshold,
		llm:       llm,
		logger:    opts.Logger,
	}
}

// Add implements Store. Compaction failures surface as *WriteError because
// they would otherwise lose history.
func (s *Summary) Add(ctx context.Context, msg core.Message) error {
	if !core.ValidRole(msg.Role) {
		return &WriteError{Store: "summary", Err: errInvalidRole(msg.Role)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg.Clone())
	if len(s.messages) <= s.max {
		return nil
	}
	if err := s.compact(ctx); err != nil {
		return &WriteError{Store: "summary", Err: err}
	}
	return nil
}

// compact folds everything older than the last threshold messages into the
// summary message. Caller holds the write lock.
func (s *Summary) compact(ctx context.Context) error {
	evicted := s.messages[:len(s.messages)-s.threshold]
	kept := s.messages[len(s.messages)-s.threshold:]

	var b strings.Builder
	if s.summary != nil {
		b.WriteString("Previous summary:\n")
		b.WriteString(s.summary.Content)
		b.WriteString("\n\n")
	}
	b.WriteString("New messages:\n")
	for _, m := range evicted {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}

	resp, err := s.llm.Complete(ctx, model.Request{
		Messages: []core.Message{
			core.SystemMessage(summaryInstruction),
			core.UserMessage(b.String()),
		},
	})
	if err != nil {
		return fmt.Errorf("summarize evicted messages: %w", err)
	}

	if s.summary == nil {
		msg := core.SystemMessage(resp.Content)
		msg.IsSummary = true
		s.summary = &msg
	} else {
		// Mutate in place, keeping the identity of the summary message.
		s.summary.Content = resp.Content
	}

	s.logger.Debug("memory.summary.compacted",
		"scope", s.scope.Key(),
		"evicted", len(evicted),
		"kept", len(kept),
	)

	s.messages = append([]core.Message{}, kept...)
	return nil
}

// All implements Store: the summary message (when present) followed by the
// raw messages.
func (s *Summary) All(_ context.Context) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Message, 0, len(s.messages)+1)
	if s.summary != nil {
		out = append(out, s.summary.Clone())
	}
	out = append(out, core.CloneMessages(s.messages)...)
	return out, nil
}

// Recent implements Store over the raw (non-summary) messages.
func (s *Summary) Recent(_ context.Context, n int) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || len(s.messages) == 0 {
		return []core.Message{}, nil
	}
	if n > len(s.messages) {
		n = len(s.messages)
	}
	return core.CloneMessages(s.messages[len(s.messages)-n:]), nil
}

// Relevant degrades to recency for this store.
func (s *Summary) Relevant(ctx context.Context, _ string, limit int) ([]core.Message, error) {
	return s.Recent(ctx, limit)
}

// Recall implements Store: summary plus raw history.
func (s *Summary) Recall(ctx context.Context, _ string) ([]core.Message, error) {
	return s.All(ctx)
}

// Clear implements Store, dropping the summary too.
func (s *Summary) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.summary = nil
	return nil
}

// Count implements Store, counting the summary message when present.
func (s *Summary) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.messages)
	if s.summary != nil {
		n++
	}
	return n, nil
}

// Export implements Store.
func (s *Summary) Export(_ context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := &Snapshot{
		Scope:    s.scope,
		Messages: core.CloneMessages(s.messages),
	}
	if s.summary != nil {
		c := s.summary.Clone()
		snap.Summary = &c
	}
	return snap, nil
}

// Import implements Store.
func (s *Summary) Import(_ context.Context, snap *Snapshot) error {
	if snap == nil {
		return &WriteError{Store: "summary", Err: errNilSnapshot}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scope = snap.Scope
	s.messages = core.CloneMessages(snap.Messages)
	s.summary = nil
	if snap.Summary != nil {
		c := snap.Summary.Clone()
		s.summary = &c
	}
	return nil
}

// Scope implements Store.
func (s *Summary) Scope() Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scope
}
