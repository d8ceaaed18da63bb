package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/utils"
)

func TestPreferenceSync_CreatesDefaultsOnce(t *testing.T) {
	st := newMemStore()
	svc := NewPreferenceService(fakePreferences{st})
	p := models.Principal{UserID: "u1", Role: models.RoleUser}

	first, err := svc.Sync(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultVoiceID, first.VoiceID)
	assert.Equal(t, models.DefaultLanguage, first.Language)
	assert.Equal(t, "openai", first.AIProvider)

	_, err = svc.Sync(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1, st.calls["Preferences.CreateIfMissing"])
}

func TestPreferenceSync_Errors(t *testing.T) {
	st := newMemStore()
	svc := NewPreferenceService(fakePreferences{st})

	_, err := svc.Sync(context.Background(), models.Principal{})
	assert.True(t, utils.IsCode(err, utils.CodeUnauthorized))

	st.failOn("Preferences.CreateIfMissing", errors.New("db down"))
	_, err = svc.Sync(context.Background(), models.Principal{UserID: "u1"})
	assert.True(t, utils.IsCode(err, utils.CodeInternal))
}

func TestPreferenceUpdate(t *testing.T) {
	st := newMemStore()
	svc := NewPreferenceService(fakePreferences{st})
	p := models.Principal{UserID: "u1", Role: models.RoleUser}

	dark := true
	lang := "EN"
	stab := 0.2
	prov := "gemini"
	got, err := svc.Update(context.Background(), p, PreferenceUpdate{DarkMode: &dark, Language: &lang, Stability: &stab, AIProvider: &prov})
	require.NoError(t, err)
	assert.True(t, got.DarkMode)
	assert.Equal(t, "en", got.Language)
	assert.InDelta(t, 0.2, got.Stability, 1e-9)
	assert.Equal(t, "gemini", got.AIProvider)
	assert.InDelta(t, models.DefaultSimilarityBoost, got.SimilarityBoost, 1e-9, "untouched fields keep their value")
	assert.Equal(t, "en", st.prefs["u1"].Language)
}

func TestPreferenceUpdate_Validation(t *testing.T) {
	svc := NewPreferenceService(fakePreferences{newMemStore()})
	p := models.Principal{UserID: "u1"}

	bad := 1.5
	_, err := svc.Update(context.Background(), p, PreferenceUpdate{SimilarityBoost: &bad})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	lang := "fr"
	_, err = svc.Update(context.Background(), p, PreferenceUpdate{Language: &lang})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	prov := "claude"
	_, err = svc.Update(context.Background(), p, PreferenceUpdate{AIProvider: &prov})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	empty := " "
	_, err = svc.Update(context.Background(), p, PreferenceUpdate{VoiceID: &empty})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}
