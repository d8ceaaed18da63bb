package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/wacrm/internal/cache"
	"github.com/yoockh/wacrm/internal/models"
	pgrepo "github.com/yoockh/wacrm/internal/repositories/postgres"
	"github.com/yoockh/wacrm/internal/utils"

	"github.com/google/uuid"
)

const (
	SourceStore   = "store"
	SourceDefault = "default"
)

type CredentialState struct {
	Configured bool   `json:"configured"`
	Source     string `json:"source,omitempty"` // store|default
}

type CredentialService interface {
	// Resolve returns ok=false when neither a stored nor a deployment default
	// secret exists. Only Store failures are errors.
	Resolve(ctx context.Context, keyName string) (secret string, ok bool, err error)
	Upsert(ctx context.Context, p models.Principal, keyName, value, keyType string) (*models.ApiCredential, error)
	Status(ctx context.Context) (map[string]CredentialState, error)
}

type credentialService struct {
	creds    pgrepo.CredentialRepository
	cache    cache.Cache
	defaults map[string]string
	ttl      time.Duration
	log      *logrus.Logger
	now      func() time.Time
}

type cachedCredential struct {
	Value string `json:"value"`
}

// NewCredentialService takes deployment defaults keyed by credential name.
// c may be nil when Redis is not configured.
func NewCredentialService(creds pgrepo.CredentialRepository, c cache.Cache, defaults map[string]string, ttl time.Duration, log *logrus.Logger) CredentialService {
	if defaults == nil {
		defaults = map[string]string{}
	}
	return &credentialService{
		creds:    creds,
		cache:    c,
		defaults: defaults,
		ttl:      ttl,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func credentialCacheKey(keyName string) string { return "credential:" + keyName }

func (s *credentialService) Resolve(ctx context.Context, keyName string) (string, bool, error) {
	secret, source, err := s.lookup(ctx, keyName)
	if err != nil {
		return "", false, err
	}
	return secret, source != "", nil
}

func (s *credentialService) lookup(ctx context.Context, keyName string) (string, string, error) {
	const op = "CredentialService.Resolve"

	if keyName == "" {
		return "", "", utils.E(utils.CodeInvalidArgument, op, "key_name is required", nil)
	}

	if s.cache != nil && s.ttl > 0 {
		var hit cachedCredential
		ok, err := s.cache.GetJSON(ctx, credentialCacheKey(keyName), &hit)
		if err != nil {
			s.log.WithError(err).WithField("key_name", keyName).Warn("credential cache read failed")
		} else if ok && hit.Value != "" {
			return hit.Value, SourceStore, nil
		}
	}

	row, err := s.creds.GetByKeyName(ctx, keyName)
	switch {
	case err == nil && strings.TrimSpace(row.KeyValue) != "":
		if s.cache != nil && s.ttl > 0 {
			if err := s.cache.SetJSON(ctx, credentialCacheKey(keyName), cachedCredential{Value: row.KeyValue}, s.ttl); err != nil {
				s.log.WithError(err).WithField("key_name", keyName).Warn("credential cache write failed")
			}
		}
		return row.KeyValue, SourceStore, nil
	case err != nil && !errors.Is(err, utils.ErrNotFound):
		return "", "", utils.E(utils.CodeInternal, op, "failed to read credential", err)
	}

	if v := strings.TrimSpace(s.defaults[keyName]); v != "" {
		return v, SourceDefault, nil
	}
	return "", "", nil
}

func (s *credentialService) Upsert(ctx context.Context, p models.Principal, keyName, value, keyType string) (*models.ApiCredential, error) {
	const op = "CredentialService.Upsert"

	if p.Role != models.RoleAdmin && p.Role != models.RoleService {
		return nil, utils.E(utils.CodeForbidden, op, "only admin or service principals may change credentials", nil)
	}
	keyName = strings.TrimSpace(keyName)
	value = strings.TrimSpace(value)
	if keyName == "" || value == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "key_name and key_value are required", nil)
	}
	if keyType == "" {
		keyType = defaultKeyType(keyName)
	}

	now := s.now()
	row := &models.ApiCredential{
		ID:        uuid.NewString(),
		KeyName:   keyName,
		KeyValue:  value,
		KeyType:   keyType,
		UpdatedBy: p.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.creds.Upsert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save credential", err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, credentialCacheKey(keyName)); err != nil {
			s.log.WithError(err).WithField("key_name", keyName).Warn("credential cache invalidation failed")
		}
	}
	return row, nil
}

func (s *credentialService) Status(ctx context.Context) (map[string]CredentialState, error) {
	out := make(map[string]CredentialState, 3)
	for _, name := range []string{models.CredentialOpenAI, models.CredentialGemini, models.CredentialElevenLabs} {
		_, source, err := s.lookup(ctx, name)
		if err != nil {
			return nil, err
		}
		out[name] = CredentialState{Configured: source != "", Source: source}
	}
	return out, nil
}

func defaultKeyType(keyName string) string {
	switch keyName {
	case models.CredentialOpenAI:
		return string(models.ProviderOpenAI)
	case models.CredentialGemini:
		return string(models.ProviderGemini)
	case models.CredentialElevenLabs:
		return "elevenlabs"
	}
	return "custom"
}
