package common

// UserIDHeaderName carries the caller's user id on outbound requests as a
// fallback identifier, so the backend can still authorize the request when
// the bearer token value is malformed.
const UserIDHeaderName = "X-User-ID"

// LegacyTokenPrefix is the deterministic token form token_<userID> issued by
// early deployments. The server still accepts it, and the client rebuilds a
// cached token in this form when the stored value is structurally invalid.
const LegacyTokenPrefix = "token_"

// Answer languages accepted by the chat endpoint.
const (
	LanguageEnglish = "english"
	LanguageHindi   = "hindi"
)

// ValidLanguage reports whether lang is one of the supported answer
// languages. Empty input is treated as english by callers, not here.
func ValidLanguage(lang string) bool {
	return lang == LanguageEnglish || lang == LanguageHindi
}
