package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/aquabot/internal/core"
	"github.com/sandevgo/aquabot/pkg/log"
	"github.com/sandevgo/aquabot/pkg/tokens"
)

var (
	ErrEmptyInput         = errors.New("empty input")
	ErrSessionClosed      = errors.New("session is closed")
	ErrNothingToSummarize = errors.New("need at least two user messages to summarize")
	ErrSuggestUnavailable = errors.New("suggestions are only offered before the first question")
)

const minUserMessagesForSummary = 2

type Options struct {
	Resolver  core.Resolver
	Completer core.Completer
	// Stats is optional.
	Stats core.StatsRecorder

	ReplyDelay       time.Duration
	SummaryMaxTokens int
}

// State is a point-in-time copy of a session's conversation.
type State struct {
	Open        bool
	Loading     bool
	LastError   string
	Suggestions []string
	Messages    []core.Message
}

// Session owns one conversation. Only one request runs at a time: starting a new one
// cancels the previous, and a superseded request never touches the log.
type Session struct {
	id   string
	opts Options

	mu          sync.Mutex
	open        bool
	messages    []core.Message
	loading     bool
	lastErr     error
	lastStatus  string
	suggestions []string

	gen    uint64
	cancel context.CancelFunc
}

func NewSession(id string, opts Options) *Session {
	return &Session{id: id, opts: opts}
}

// Open starts a fresh conversation holding only the greeting.
func (s *Session) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.abortLocked()
	s.open = true
	s.messages = []core.Message{{
		ID:        core.GreetingID,
		Sender:    core.SenderBot,
		Text:      GreetingText,
		CreatedAt: time.Now(),
	}}
	s.suggestions = nil
	s.lastErr = nil
	s.lastStatus = ""
}

// Close cancels in-flight work. The log stays readable until the next Open.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.abortLocked()
	s.open = false
}

func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Session) Messages() []core.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Message(nil), s.messages...)
}

func (s *Session) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.suggestions...)
}

// LastError returns the user-facing status of the last failed request, or "".
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastStatus
}

// Err returns the error behind LastError.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Open:        s.open,
		Loading:     s.loading,
		LastError:   s.lastStatus,
		Suggestions: append([]string(nil), s.suggestions...),
		Messages:    append([]core.Message(nil), s.messages...),
	}
}

func (s *Session) CanSummarize() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open && s.userMessagesLocked() >= minUserMessagesForSummary
}

func (s *Session) CanSuggest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open && len(s.messages) == 1
}

// Send runs one turn: the user message is logged, then answered from the knowledge
// table or, failing that, by the completer. On failure nothing but the user message
// is logged and LastError is set.
func (s *Session) Send(ctx context.Context, text string) (core.Message, error) {
	text = trimInput(text)
	if text == "" {
		return core.Message{}, ErrEmptyInput
	}

	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return core.Message{}, ErrSessionClosed
	}
	s.messages = append(s.messages, core.NewMessage(core.SenderUser, text))
	s.suggestions = nil
	ctx, gen := s.beginLocked(ctx)
	s.mu.Unlock()

	logger := log.FromCtx(ctx)

	if entry, ok := s.match(text); ok {
		if err := sleepCtx(ctx, s.opts.ReplyDelay); err != nil {
			s.finish(gen, nil)
			return core.Message{}, err
		}
		msg, err := s.appendReply(gen, entry.Answer)
		if err != nil {
			return core.Message{}, err
		}
		logger.Debug().Str("keyword", entry.Keyword).Msg("answered from knowledge table")
		// The request context is already released once the reply is in the log.
		s.record(context.WithoutCancel(ctx), entry.Keyword, core.OutcomeResolved)
		return msg, nil
	}

	s.record(ctx, "", core.OutcomeFallback)
	reply, err := s.opts.Completer.Complete(ctx, core.CompletionRequest{Prompt: TurnPrompt(text)})
	if err != nil {
		return core.Message{}, s.fail(ctx, gen, err, core.StatusConnectionTrouble)
	}
	return s.appendReply(gen, reply)
}

// Summarize asks the completer for a summary of the whole log and appends it
// as a bot message.
func (s *Session) Summarize(ctx context.Context) (core.Message, error) {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return core.Message{}, ErrSessionClosed
	}
	if s.userMessagesLocked() < minUserMessagesForSummary {
		s.mu.Unlock()
		return core.Message{}, ErrNothingToSummarize
	}
	lines := TranscriptLines(s.messages)
	ctx, gen := s.beginLocked(ctx)
	s.mu.Unlock()

	logger := log.FromCtx(ctx)

	if budget := s.opts.SummaryMaxTokens; budget > 0 {
		kept, err := tokens.KeepNewest(lines, budget)
		switch {
		case err != nil:
			logger.Warn().Err(err).Msg("token counting unavailable, summarizing full transcript")
		case len(kept) == 0:
			// Never send an empty transcript; the newest line alone still goes out.
			lines = lines[len(lines)-1:]
		default:
			if dropped := len(lines) - len(kept); dropped > 0 {
				logger.Debug().Int("dropped_lines", dropped).Int("budget", budget).Msg("trimmed transcript for summary")
			}
			lines = kept
		}
	}

	summary, err := s.opts.Completer.Complete(ctx, core.CompletionRequest{Prompt: buildSummaryPrompt(lines)})
	if err != nil {
		return core.Message{}, s.fail(ctx, gen, err, core.StatusConnectionTrouble)
	}
	return s.appendReply(gen, SummaryPrefix+summary)
}

// SuggestTopics fetches starter questions in JSON mode, replacing any earlier ones.
// A response that is not a JSON array of strings is reported without retrying and
// leaves the suggestions empty.
func (s *Session) SuggestTopics(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if len(s.messages) != 1 {
		s.mu.Unlock()
		return nil, ErrSuggestUnavailable
	}
	s.suggestions = nil
	ctx, gen := s.beginLocked(ctx)
	s.mu.Unlock()

	raw, err := s.opts.Completer.Complete(ctx, core.CompletionRequest{Prompt: suggestPrompt, JSONMode: true})
	if err != nil {
		return nil, s.fail(ctx, gen, err, core.StatusConnectionTrouble)
	}

	topics, err := ParseSuggestions(raw)
	if err != nil {
		return nil, s.fail(ctx, gen, err, core.StatusSuggestionFailed)
	}

	if !s.finish(gen, func() { s.suggestions = topics }) {
		return nil, context.Canceled
	}
	log.FromCtx(ctx).Debug().Int("count", len(topics)).Msg("suggested topics")
	return append([]string(nil), topics...), nil
}

// beginLocked supersedes any running request and returns a context for the new one.
func (s *Session) beginLocked(parent context.Context) (context.Context, uint64) {
	s.abortLocked()
	s.gen++

	ctx, cancel := context.WithCancel(log.WithSession(parent, s.id))
	s.cancel = cancel
	s.loading = true
	s.lastErr = nil
	s.lastStatus = ""
	return ctx, s.gen
}

func (s *Session) abortLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.loading = false
}

// finish applies fn if request gen is still current and reports whether it was.
func (s *Session) finish(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}
	if fn != nil {
		fn()
	}
	s.loading = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return true
}

func (s *Session) appendReply(gen uint64, text string) (core.Message, error) {
	msg := core.NewMessage(core.SenderBot, text)
	if !s.finish(gen, func() { s.messages = append(s.messages, msg) }) {
		return core.Message{}, context.Canceled
	}
	return msg, nil
}

// fail records err under status unless the request was cancelled, in which case
// the session is left without an error.
func (s *Session) fail(ctx context.Context, gen uint64, err error, status string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.finish(gen, nil)
		return ctxErr
	}

	logger := log.FromCtx(ctx)
	logger.Error().Err(err).Str("kind", core.KindOf(err).String()).Msg("request failed")

	if !errors.Is(err, core.ErrSuggestionParse) {
		s.record(ctx, "", core.OutcomeFailed)
	}
	if !s.finish(gen, func() {
		s.lastErr = err
		s.lastStatus = status
	}) {
		return context.Canceled
	}
	return err
}

func (s *Session) match(text string) (core.KnowledgeEntry, bool) {
	if s.opts.Resolver == nil {
		return core.KnowledgeEntry{}, false
	}
	if m, ok := s.opts.Resolver.(core.KeywordMatcher); ok {
		return m.Match(text)
	}
	answer, ok := s.opts.Resolver.Resolve(text)
	return core.KnowledgeEntry{Answer: answer}, ok
}

func (s *Session) record(ctx context.Context, keyword, outcome string) {
	if s.opts.Stats == nil {
		return
	}
	if err := s.opts.Stats.Record(ctx, keyword, outcome); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("outcome", outcome).Msg("failed to record lookup stat")
	}
}

func (s *Session) userMessagesLocked() int {
	n := 0
	for _, m := range s.messages {
		if m.Sender == core.SenderUser {
			n++
		}
	}
	return n
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// StatusText renders err as the inline status line a transport shows, or "" when
// nothing should be shown.
func StatusText(err error) string {
	switch {
	case err == nil,
		errors.Is(err, ErrEmptyInput),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return ""
	case errors.Is(err, core.ErrSuggestionParse):
		return core.StatusSuggestionFailed
	case errors.Is(err, ErrSessionClosed):
		return "The conversation is closed. Start a new one to continue."
	case errors.Is(err, ErrNothingToSummarize):
		return "Ask at least two questions before summarizing."
	case errors.Is(err, ErrSuggestUnavailable):
		return "Suggestions are only available at the start of a conversation."
	default:
		return core.StatusConnectionTrouble
	}
}

func trimInput(text string) string {
	return strings.TrimSpace(text)
}
