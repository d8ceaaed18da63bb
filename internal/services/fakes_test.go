package services

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/providers/llm"
	"github.com/yoockh/wacrm/internal/providers/tts"
	pgrepo "github.com/yoockh/wacrm/internal/repositories/postgres"
	"github.com/yoockh/wacrm/internal/utils"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// memStore is an in-memory stand-in for the Postgres tables.
type memStore struct {
	mu       sync.Mutex
	contacts map[string]models.Contact
	sessions map[string]models.ChatSession
	profiles map[string]models.AIProfile
	training []models.TrainingRecord
	messages []models.Message
	creds    map[string]models.ApiCredential
	prefs    map[string]models.UserPreference
	fail     map[string]error
	calls    map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		contacts: map[string]models.Contact{},
		sessions: map[string]models.ChatSession{},
		profiles: map[string]models.AIProfile{},
		creds:    map[string]models.ApiCredential{},
		prefs:    map[string]models.UserPreference{},
		fail:     map[string]error{},
		calls:    map[string]int{},
	}
}

func (m *memStore) failOn(method string, err error) { m.fail[method] = err }

// hit counts the call and returns the injected failure, if any.
func (m *memStore) hit(method string) error {
	m.calls[method]++
	return m.fail[method]
}

func (m *memStore) messagesFor(contactID string) []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Message
	for _, msg := range m.messages {
		if msg.ContactID == contactID {
			out = append(out, msg)
		}
	}
	return out
}

func (m *memStore) session(id string) models.ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

type fakeSessions struct{ *memStore }

func (f fakeSessions) Create(_ context.Context, s *models.ChatSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Sessions.Create"); err != nil {
		return err
	}
	f.sessions[s.ID] = *s
	return nil
}

func (f fakeSessions) GetByID(_ context.Context, id string) (*models.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Sessions.GetByID"); err != nil {
		return nil, err
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &s, nil
}

func (f fakeSessions) SetStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Sessions.SetStatus"); err != nil {
		return err
	}
	s, ok := f.sessions[id]
	if !ok {
		return utils.ErrNotFound
	}
	s.Status = status
	f.sessions[id] = s
	return nil
}

func (f fakeSessions) Touch(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return utils.ErrNotFound
	}
	s.LastActivity = at
	f.sessions[id] = s
	return nil
}

type fakeContacts struct{ *memStore }

func (f fakeContacts) Exists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Contacts.Exists"); err != nil {
		return false, err
	}
	_, ok := f.contacts[id]
	return ok, nil
}

func (f fakeContacts) GetByID(_ context.Context, id string) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &c, nil
}

type fakeProfiles struct{ *memStore }

func (f fakeProfiles) GetByID(_ context.Context, id string) (*models.AIProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Profiles.GetByID"); err != nil {
		return nil, err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &p, nil
}

type fakeTraining struct{ *memStore }

func (f fakeTraining) ListAll(_ context.Context) ([]models.TrainingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Training.ListAll"); err != nil {
		return nil, err
	}
	out := append([]models.TrainingRecord(nil), f.training...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type fakeMessages struct{ *memStore }

func (f fakeMessages) Insert(_ context.Context, m *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *m)
	return nil
}

func (f fakeMessages) LatestByContact(_ context.Context, contactID string, n int) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Messages.LatestByContact"); err != nil {
		return nil, err
	}
	var out []models.Message
	for _, m := range f.messages {
		if m.ContactID == contactID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

type fakeExchanges struct{ *memStore }

// Save is all-or-nothing, like the transaction it stands in for.
func (f fakeExchanges) Save(_ context.Context, ex pgrepo.Exchange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Exchanges.Save"); err != nil {
		return err
	}
	s, ok := f.sessions[ex.SessionID]
	if !ok {
		return utils.ErrNotFound
	}
	f.messages = append(f.messages, *ex.UserMessage, *ex.AIMessage)
	s.LastActivity = ex.LastActivity
	f.sessions[ex.SessionID] = s
	return nil
}

type fakeCredentials struct{ *memStore }

func (f fakeCredentials) GetByKeyName(_ context.Context, keyName string) (*models.ApiCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Credentials.GetByKeyName"); err != nil {
		return nil, err
	}
	c, ok := f.creds[keyName]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &c, nil
}

func (f fakeCredentials) Upsert(_ context.Context, c *models.ApiCredential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Credentials.Upsert"); err != nil {
		return err
	}
	if old, ok := f.creds[c.KeyName]; ok {
		c.ID = old.ID
		c.CreatedAt = old.CreatedAt
	}
	f.creds[c.KeyName] = *c
	return nil
}

type fakePreferences struct{ *memStore }

func (f fakePreferences) GetByUserID(_ context.Context, userID string) (*models.UserPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Preferences.GetByUserID"); err != nil {
		return nil, err
	}
	p, ok := f.prefs[userID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &p, nil
}

func (f fakePreferences) CreateIfMissing(_ context.Context, p *models.UserPreference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Preferences.CreateIfMissing"); err != nil {
		return err
	}
	if _, ok := f.prefs[p.UserID]; !ok {
		f.prefs[p.UserID] = *p
	}
	return nil
}

func (f fakePreferences) Upsert(_ context.Context, p *models.UserPreference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("Preferences.Upsert"); err != nil {
		return err
	}
	f.prefs[p.UserID] = *p
	return nil
}

type fakeCache struct {
	data map[string][]byte
	gets int
	dels int
	err  error
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.gets++
	if c.err != nil {
		return false, c.err
	}
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	if c.err != nil {
		return c.err
	}
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.dels++
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type fakeLLM struct {
	name  string
	reply string
	err   error
	wait  time.Duration

	calls       int
	lastSystem  string
	lastHistory []llm.Turn
	lastMessage string
	lastKey     string
}

func (f *fakeLLM) Name() string { return f.name }

func (f *fakeLLM) Complete(ctx context.Context, systemPrompt string, history []llm.Turn, message, apiKey string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastHistory = append([]llm.Turn(nil), history...)
	f.lastMessage = message
	f.lastKey = apiKey
	if f.wait > 0 {
		select {
		case <-time.After(f.wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeSynth struct {
	res       tts.Result
	calls     int
	lastText  string
	lastVoice tts.Voice
	lastKey   string
}

func (f *fakeSynth) Synthesize(_ context.Context, text string, voice tts.Voice, apiKey string) tts.Result {
	f.calls++
	f.lastText = text
	f.lastVoice = voice
	f.lastKey = apiKey
	return f.res
}

type fakeUploader struct {
	err      error
	calls    int
	lastName string
	lastType string
	lastBody []byte
}

func (f *fakeUploader) Upload(_ context.Context, objectName, contentType string, r io.Reader) (string, error) {
	f.calls++
	f.lastName = objectName
	f.lastType = contentType
	f.lastBody, _ = io.ReadAll(r)
	if f.err != nil {
		return "", f.err
	}
	return "https://storage.googleapis.com/test-bucket/" + objectName, nil
}

type fakeTraceRepo struct {
	mu     sync.Mutex
	traces []models.ReplyTrace
	err    error
}

func (f *fakeTraceRepo) Insert(_ context.Context, t *models.ReplyTrace) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.traces = append(f.traces, *t)
	return nil
}

func (f *fakeTraceRepo) ListBySession(_ context.Context, sessionID string, _ int64) ([]models.ReplyTrace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ReplyTrace
	for _, t := range f.traces {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeSTT struct {
	text      string
	conf      float64
	err       error
	lastAudio []byte
	lastLang  string
}

func (f *fakeSTT) Transcribe(_ context.Context, audio []byte, language string) (string, float64, error) {
	f.lastAudio = audio
	f.lastLang = language
	return f.text, f.conf, f.err
}

func (f *fakeSTT) Close() error { return nil }

// stepClock returns t0, t0+step, t0+2*step, ... on successive calls.
func stepClock(t0 time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := t0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur := next
		next = next.Add(step)
		return cur
	}
}

func strPtr(s string) *string { return &s }
