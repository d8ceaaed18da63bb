package models

import "strings"

// Provider selects one of the interchangeable language-model backends.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Credential key names as stored in api_keys.key_name.
const (
	CredentialOpenAI     = "openai_api_key"
	CredentialGemini     = "gemini_api_key"
	CredentialElevenLabs = "elevenlabs_api_key"
)

// ProviderFromModel maps an ai_profiles.ai_model value to a provider.
// Only gemini model families select Gemini; everything else is OpenAI.
func ProviderFromModel(aiModel string) Provider {
	m := strings.ToLower(strings.TrimSpace(aiModel))
	if m == "gemini" || strings.HasPrefix(m, "gemini-") {
		return ProviderGemini
	}
	return ProviderOpenAI
}

func (p Provider) CredentialKey() string {
	if p == ProviderGemini {
		return CredentialGemini
	}
	return CredentialOpenAI
}

func (p Provider) String() string { return string(p) }
