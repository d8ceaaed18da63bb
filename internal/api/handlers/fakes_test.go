package handlers_test

import (
	"context"

	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/providers/tts"
	"github.com/yoockh/wacrm/internal/services"
)

type fakeReply struct {
	out *services.ReplyOutput
	err error
	p   models.Principal
	in  services.ReplyInput
}

func (f *fakeReply) Reply(_ context.Context, p models.Principal, in services.ReplyInput) (*services.ReplyOutput, error) {
	f.p, f.in = p, in
	return f.out, f.err
}

type fakeSpeech struct {
	audio []byte
	err   error
	req   services.SpeechRequest
}

func (f *fakeSpeech) Speak(_ context.Context, _ models.Principal, req services.SpeechRequest) ([]byte, error) {
	f.req = req
	return f.audio, f.err
}

func (f *fakeSpeech) Attempt(context.Context, models.Principal, string) tts.Result {
	return tts.Fail(tts.KindDisabled, nil)
}

type fakeTranscription struct {
	out *services.Transcript
	err error
}

func (f *fakeTranscription) Transcribe(context.Context, string, string) (*services.Transcript, error) {
	return f.out, f.err
}

type fakeSessions struct {
	sess      *models.ChatSession
	err       error
	contactID string
	status    string
}

func (f *fakeSessions) Start(_ context.Context, contactID string, _ *string) (*models.ChatSession, error) {
	f.contactID = contactID
	return f.sess, f.err
}

func (f *fakeSessions) Get(context.Context, string) (*models.ChatSession, error) { return f.sess, f.err }

func (f *fakeSessions) SetStatus(_ context.Context, _ string, status string) (*models.ChatSession, error) {
	f.status = status
	return f.sess, f.err
}

type fakeContext struct {
	prompt string
	err    error
	lang   string
}

func (f *fakeContext) BuildSystemPrompt(_ context.Context, _ string, lang string) (string, error) {
	f.lang = lang
	return f.prompt, f.err
}

func (f *fakeContext) BuildForSession(context.Context, *models.ChatSession, string) (*services.SystemPrompt, error) {
	return &services.SystemPrompt{Text: f.prompt}, f.err
}

type fakeTraces struct {
	rows  []models.ReplyTrace
	err   error
	limit int64
}

func (f *fakeTraces) Record(context.Context, *models.ReplyTrace) {}

func (f *fakeTraces) List(_ context.Context, _ string, limit int64) ([]models.ReplyTrace, error) {
	f.limit = limit
	return f.rows, f.err
}

type fakeConversations struct {
	rows  []models.Message
	err   error
	limit int
}

func (f *fakeConversations) ListByContact(_ context.Context, _ string, limit int) ([]models.Message, error) {
	f.limit = limit
	return f.rows, f.err
}

type fakePreferences struct {
	pref *models.UserPreference
	err  error
	p    models.Principal
	in   services.PreferenceUpdate
}

func (f *fakePreferences) Sync(_ context.Context, p models.Principal) (*models.UserPreference, error) {
	f.p = p
	return f.pref, f.err
}

func (f *fakePreferences) Update(_ context.Context, p models.Principal, in services.PreferenceUpdate) (*models.UserPreference, error) {
	f.p, f.in = p, in
	return f.pref, f.err
}

type fakeCredentials struct {
	status map[string]services.CredentialState
	cred   *models.ApiCredential
	err    error
	p      models.Principal
}

func (f *fakeCredentials) Resolve(context.Context, string) (string, bool, error) { return "", false, nil }

func (f *fakeCredentials) Upsert(_ context.Context, p models.Principal, _, _, _ string) (*models.ApiCredential, error) {
	f.p = p
	return f.cred, f.err
}

func (f *fakeCredentials) Status(context.Context) (map[string]services.CredentialState, error) {
	return f.status, f.err
}
