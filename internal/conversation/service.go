package conversation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MyatBhoneThet/ai-receptionist/internal/observability/metrics"
	"github.com/MyatBhoneThet/ai-receptionist/pkg/logging"
)

// historyWindow bounds how much transcript is replayed to the model per turn.
const historyWindow = 4

const defaultCompletionTimeout = 15 * time.Second

// Transcript is the append-only conversation log collaborator.
type Transcript interface {
	Append(ctx context.Context, sessionID, role, content string) error
	History(ctx context.Context, sessionID string) ([]ChatMessage, error)
}

// Reconciler maps a completed draft onto a persisted booking record.
type Reconciler interface {
	Reconcile(ctx context.Context, sessionID string, intent Intent, draft Draft) error
}

// TurnService runs one full dialogue turn: normalize the message, call the
// completion collaborator, validate the response, merge it into session
// state, and hand complete drafts to the reconciler.
type TurnService struct {
	llm        LLMClient
	engine     *Engine
	transcript Transcript
	reconciler Reconciler
	metrics    *metrics.ChatMetrics
	logger     *logging.Logger
	timeout    time.Duration
	now        func() time.Time
}

// NewTurnService wires the dialogue core together. The reconciler and
// metrics are optional; transcript and llm are not.
func NewTurnService(llm LLMClient, engine *Engine, transcript Transcript, reconciler Reconciler, m *metrics.ChatMetrics, logger *logging.Logger) *TurnService {
	if llm == nil {
		panic("conversation: llm client required")
	}
	if engine == nil {
		panic("conversation: engine required")
	}
	if transcript == nil {
		panic("conversation: transcript store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TurnService{
		llm:        llm,
		engine:     engine,
		transcript: transcript,
		reconciler: reconciler,
		metrics:    m,
		logger:     logger,
		timeout:    defaultCompletionTimeout,
		now:        time.Now,
	}
}

// WithCompletionTimeout bounds the completion call; a timeout is treated as
// a malformed response, not a turn failure.
func (s *TurnService) WithCompletionTimeout(d time.Duration) *TurnService {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// withClock injects a deterministic clock for tests.
func (s *TurnService) withClock(now func() time.Time) *TurnService {
	s.now = now
	return s
}

// turnPayload is the JSON envelope handed to the model as the user message:
// the reference date, the accumulated state, and the new utterance.
type turnPayload struct {
	Today   string `json:"today"`
	State   Draft  `json:"state"`
	Message string `json:"message"`
}

// ProcessTurn executes one request/response cycle of the dialogue. It only
// errors on storage failures; model malformation and calendar trouble are
// absorbed into a conversational reply.
func (s *TurnService) ProcessTurn(ctx context.Context, sessionID, message string) (TurnResult, error) {
	history, err := s.transcript.History(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}
	state, err := s.engine.Snapshot(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	today := Today(s.now())
	normalized := NormalizeWrittenDate(message)
	result := s.complete(ctx, history, state, today, normalized)

	merged, err := s.engine.Advance(ctx, sessionID, result.Data)
	if err != nil {
		return TurnResult{}, err
	}

	if err := s.transcript.Append(ctx, sessionID, ChatRoleUser, message); err != nil {
		return TurnResult{}, err
	}

	outcome := "reply"
	if result.Intent.Bookable() {
		complete, missing := Completeness(result.Intent, merged)
		if !complete {
			result.Message, result.Speak = MissingFieldsReply(missing)
			result.MissingFields = missing
			outcome = "incomplete"
		} else {
			if s.reconciler != nil {
				if err := s.reconciler.Reconcile(ctx, sessionID, result.Intent, merged); err != nil {
					return TurnResult{}, err
				}
			}
			result.MissingFields = []string{}
			outcome = "booked"
		}
	}

	// The assistant entry records the reply that actually went out, after
	// any missing-fields rewrite. User message first, assistant second;
	// readers of the transcript depend on that order.
	if err := s.transcript.Append(ctx, sessionID, ChatRoleAssistant, result.Message); err != nil {
		return TurnResult{}, err
	}

	// The client always reflects accumulated state, not just this turn's
	// delta.
	result.Data = merged
	s.metrics.ObserveTurn(string(result.Intent), outcome)
	return result, nil
}

// complete calls the model under a bounded timeout and validates its output.
// Any failure collapses into the fallback turn so the dialogue always has a
// reply.
func (s *TurnService) complete(ctx context.Context, history []ChatMessage, state Draft, today, message string) TurnResult {
	payload, err := json.Marshal(turnPayload{Today: today, State: state, Message: message})
	if err != nil {
		s.logger.Error("turn payload marshal failed", "error", err)
		return FallbackTurn()
	}

	messages := append(trimHistory(history, historyWindow), ChatMessage{
		Role:    ChatRoleUser,
		Content: string(payload),
	})

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.llm.Complete(ctx, LLMRequest{
		System:      []string{systemPrompt},
		Messages:    messages,
		MaxTokens:   256,
		Temperature: 0.2,
	})
	s.metrics.ObserveCompletionLatency(time.Since(start).Seconds())
	if err != nil {
		s.logger.Warn("completion failed, using fallback", "error", err)
		return FallbackTurn()
	}
	return ValidateResponse(resp.Text)
}

// trimHistory keeps the most recent n entries.
func trimHistory(history []ChatMessage, n int) []ChatMessage {
	if len(history) <= n {
		return append([]ChatMessage(nil), history...)
	}
	return append([]ChatMessage(nil), history[len(history)-n:]...)
}
