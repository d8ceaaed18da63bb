package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/wacrm/internal/metrics"
	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/providers/llm"
	"github.com/yoockh/wacrm/internal/providers/tts"
	pgrepo "github.com/yoockh/wacrm/internal/repositories/postgres"
	"github.com/yoockh/wacrm/internal/utils"
	"gorm.io/datatypes"
)

type ReplyState string

const (
	StateReceived         ReplyState = "received"
	StateContextReady     ReplyState = "context_ready"
	StateHistoryReady     ReplyState = "history_ready"
	StateProviderSelected ReplyState = "provider_selected"
	StateReplyObtained    ReplyState = "reply_obtained"
	StatePersisted        ReplyState = "persisted"
	StateSpeechAttempted  ReplyState = "speech_attempted"
	StateDone             ReplyState = "done"
	StateFailed           ReplyState = "failed"
)

type ReplyInput struct {
	Message   string
	SessionID string
	ContactID string
	Language  string
	// DefaultProvider applies when the session has no AI profile model.
	DefaultProvider models.Provider
	RequestID       string
}

type ReplyOutput struct {
	Reply    string  `json:"reply"`
	AudioURL *string `json:"audioUrl"`

	Provider      models.Provider `json:"-"`
	UserMessageID string          `json:"-"`
	AIMessageID   string          `json:"-"`
}

type ReplyService interface {
	Reply(ctx context.Context, p models.Principal, in ReplyInput) (*ReplyOutput, error)
}

// ReplyDeps wires the orchestrator. Providers is keyed by backend; Models
// names the model each backend runs and ends up in message metadata.
type ReplyDeps struct {
	Sessions     pgrepo.ChatSessionRepository
	Exchanges    pgrepo.ExchangeRepository
	Context      ContextService
	History      HistoryService
	Credentials  CredentialService
	Speech       SpeechService
	Audio        AudioService
	Traces       TraceRecorder
	Providers    map[models.Provider]llm.Provider
	Models       map[models.Provider]string
	HistoryLimit int
	Timeout      time.Duration
	Log          *logrus.Logger
}

type replyService struct {
	ReplyDeps
	now func() time.Time
}

func NewReplyService(d ReplyDeps) ReplyService {
	if d.Traces == nil {
		d.Traces = NewTraceRecorder(nil, 0, d.Log)
	}
	return &replyService{ReplyDeps: d, now: func() time.Time { return time.Now().UTC() }}
}

// SelectProvider picks the backend for a reply: the profile's model family
// when it names one, else the entry point's default, else OpenAI.
func SelectProvider(profile *models.AIProfile, fallback models.Provider) models.Provider {
	if profile != nil && strings.TrimSpace(profile.AIModel) != "" {
		return models.ProviderFromModel(profile.AIModel)
	}
	if fallback != "" {
		return fallback
	}
	return models.ProviderOpenAI
}

// replyRun carries one orchestration's progress for logging and tracing.
type replyRun struct {
	state    ReplyState
	failedAt ReplyState
	trace    models.ReplyTrace
	started  time.Time
}

func (r *replyRun) advance(s ReplyState) { r.state = s }

func (r *replyRun) fail(err error) error {
	r.failedAt = r.state
	r.state = StateFailed
	r.trace.Error = DescribeError(err)
	return err
}

func (s *replyService) Reply(ctx context.Context, p models.Principal, in ReplyInput) (*ReplyOutput, error) {
	receivedAt := s.now().Truncate(time.Microsecond)
	run := &replyRun{
		state:   StateReceived,
		started: receivedAt,
		trace: models.ReplyTrace{
			RequestID:    in.RequestID,
			SessionID:    in.SessionID,
			ContactID:    in.ContactID,
			UserID:       p.UserID,
			Language:     NormalizeLanguage(in.Language),
			SpeechStatus: "skipped",
			CreatedAt:    receivedAt,
		},
	}
	out, err := s.reply(ctx, p, in, receivedAt, run)
	s.finish(ctx, run, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *replyService) reply(ctx context.Context, p models.Principal, in ReplyInput, receivedAt time.Time, run *replyRun) (*ReplyOutput, error) {
	const op = "ReplyService.Reply"

	message := in.Message
	if strings.TrimSpace(message) == "" || in.SessionID == "" || in.ContactID == "" {
		return nil, run.fail(utils.E(utils.CodeInvalidArgument, op, "message, sessionId, and contactId are required", nil))
	}

	session, err := s.Sessions.GetByID(ctx, in.SessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, run.fail(utils.E(utils.CodeNotFound, op, "session not found", err))
		}
		return nil, run.fail(utils.E(utils.CodeInternal, op, "failed to get session", err))
	}
	if session.ContactID != in.ContactID {
		return nil, run.fail(utils.E(utils.CodeInvalidArgument, op, "session does not belong to contact", nil))
	}

	// Received -> ContextReady
	prompt, err := s.Context.BuildForSession(ctx, session, in.Language)
	if err != nil {
		return nil, run.fail(err)
	}
	run.trace.PromptChars = len(prompt.Text)
	if prompt.Profile != nil {
		id := prompt.Profile.ID
		run.trace.AIProfileID = &id
	}
	run.advance(StateContextReady)

	// ContextReady -> HistoryReady
	history, err := s.History.LoadRecentTurns(ctx, in.ContactID, s.HistoryLimit)
	if err != nil {
		return nil, run.fail(err)
	}
	run.trace.HistoryTurns = len(history)
	run.advance(StateHistoryReady)

	// HistoryReady -> ProviderSelected
	provider := SelectProvider(prompt.Profile, in.DefaultProvider)
	run.trace.Provider = provider.String()
	adapter, ok := s.Providers[provider]
	if !ok || adapter == nil {
		return nil, run.fail(utils.E(utils.CodeNotConfigured, op, fmt.Sprintf("%s provider is not available", provider), nil))
	}
	apiKey, ok, err := s.Credentials.Resolve(ctx, provider.CredentialKey())
	if err != nil {
		return nil, run.fail(err)
	}
	if !ok {
		return nil, run.fail(utils.E(utils.CodeNotConfigured, op, fmt.Sprintf("%s API key is not configured", provider), nil))
	}
	run.advance(StateProviderSelected)

	// ProviderSelected -> ReplyObtained
	reply, err := s.complete(ctx, adapter, provider, prompt.Text, history, message, apiKey, run)
	if err != nil {
		return nil, run.fail(err)
	}
	run.advance(StateReplyObtained)

	// ReplyObtained -> Persisted
	ex := s.exchange(session, in.ContactID, message, reply, provider, prompt.Profile, receivedAt)
	if err := s.Exchanges.Save(ctx, ex); err != nil {
		return nil, run.fail(utils.E(utils.CodeInternal, op, "failed to save messages", err))
	}
	run.advance(StatePersisted)

	// Persisted -> SpeechAttempted: never fails the request
	res := s.Speech.Attempt(ctx, p, reply)
	audioURL := s.Audio.Publish(ctx, in.ContactID, ex.AIMessage.ID, res)
	s.recordSpeech(run, res, audioURL)
	run.advance(StateSpeechAttempted)

	run.advance(StateDone)
	return &ReplyOutput{
		Reply:         reply,
		AudioURL:      audioURL,
		Provider:      provider,
		UserMessageID: ex.UserMessage.ID,
		AIMessageID:   ex.AIMessage.ID,
	}, nil
}

func (s *replyService) complete(ctx context.Context, adapter llm.Provider, provider models.Provider, system string, history []llm.Turn, message, apiKey string, run *replyRun) (string, error) {
	const op = "ReplyService.Reply"

	cctx, cancel := withOptionalTimeout(ctx, s.Timeout)
	defer cancel()

	start := time.Now()
	reply, err := adapter.Complete(cctx, system, history, message, apiKey)
	elapsed := time.Since(start)
	metrics.ObserveProvider(provider.String(), elapsed)
	run.trace.ProviderTimeMS = elapsed.Milliseconds()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", utils.E(utils.CodeTimeout, op, fmt.Sprintf("%s request timed out", provider), err)
		}
		return "", utils.E(utils.CodeUpstream, op, fmt.Sprintf("%s request failed", provider), err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", utils.E(utils.CodeUpstream, op, fmt.Sprintf("%s returned an empty reply", provider), nil)
	}
	return reply, nil
}

// exchange builds the rows for one turn. Timestamps are strictly ordered:
// user message < ai message, and the session's last_activity only moves
// forward.
func (s *replyService) exchange(session *models.ChatSession, contactID, message, reply string, provider models.Provider, profile *models.AIProfile, receivedAt time.Time) pgrepo.Exchange {
	aiAt := s.now().Truncate(time.Microsecond)
	if !aiAt.After(receivedAt) {
		aiAt = receivedAt.Add(time.Microsecond)
	}
	lastActivity := aiAt
	if !lastActivity.After(session.LastActivity) {
		lastActivity = session.LastActivity.Add(time.Microsecond)
	}

	meta := map[string]string{"provider": provider.String()}
	if m := s.Models[provider]; m != "" {
		meta["model"] = m
	}
	raw, _ := json.Marshal(meta)

	var profileID *string
	if profile != nil {
		id := profile.ID
		profileID = &id
	}

	return pgrepo.Exchange{
		UserMessage: &models.Message{
			ID:        uuid.NewString(),
			ContactID: contactID,
			Role:      models.RoleUserMessage,
			Content:   message,
			Timestamp: receivedAt,
		},
		AIMessage: &models.Message{
			ID:          uuid.NewString(),
			ContactID:   contactID,
			Role:        models.RoleAIMessage,
			Content:     reply,
			Timestamp:   aiAt,
			AIProfileID: profileID,
			Metadata:    datatypes.JSON(raw),
		},
		SessionID:    session.ID,
		LastActivity: lastActivity,
	}
}

func (s *replyService) recordSpeech(run *replyRun, res tts.Result, audioURL *string) {
	switch {
	case audioURL != nil:
		run.trace.SpeechStatus = "done"
	case res.Err != nil && res.Err.Kind == tts.KindDisabled:
		run.trace.SpeechStatus = "skipped"
	default:
		run.trace.SpeechStatus = "failed"
		if res.Err != nil {
			run.trace.SpeechError = res.Err.Summary()
		}
		s.Log.WithFields(logrus.Fields{
			"request_id": run.trace.RequestID,
			"session_id": run.trace.SessionID,
			"error":      run.trace.SpeechError,
		}).Warn("speech synthesis failed; replying without audio")
	}
}

func (s *replyService) finish(ctx context.Context, run *replyRun, err error) {
	total := s.now().Sub(run.started)
	run.trace.State = string(run.state)
	run.trace.FailedAt = string(run.failedAt)
	run.trace.TotalTimeMS = total.Milliseconds()

	fields := logrus.Fields{
		"request_id": run.trace.RequestID,
		"session_id": run.trace.SessionID,
		"contact_id": run.trace.ContactID,
		"provider":   run.trace.Provider,
		"state":      run.trace.State,
		"latency_ms": run.trace.TotalTimeMS,
	}

	outcome := metrics.OutcomeOK
	if err != nil {
		switch utils.CodeOf(err) {
		case utils.CodeNotConfigured:
			outcome = metrics.OutcomeNotConfigured
		case utils.CodeUpstream, utils.CodeTimeout:
			outcome = metrics.OutcomeUpstream
		default:
			outcome = metrics.OutcomeError
		}
		fields["failed_at"] = run.trace.FailedAt
		fields["error"] = DescribeError(err)
		if utils.CodeOf(err) == utils.CodeInternal {
			fields["cause"] = err.Error()
		}
		s.Log.WithFields(fields).Error("reply failed")
	} else {
		fields["speech"] = run.trace.SpeechStatus
		s.Log.WithFields(fields).Info("reply sent")
	}
	metrics.RecordReply(run.trace.Provider, outcome)

	s.Traces.Record(ctx, &run.trace)
}
