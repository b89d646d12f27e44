// Package auth covers the server's two identity concerns: API keys gating
// the websocket endpoint and login tokens tying connections to persisted
// accounts.
package auth

// APIKeyAuth provides a simple API key authentication
type APIKeyAuth struct {
	validKeys map[string]struct{}
}

// NewAPIKeyAuth creates a new API key authenticator. An empty key list
// leaves the endpoint open.
func NewAPIKeyAuth(keys []string) *APIKeyAuth {
	validKeys := make(map[string]struct{})
	for _, key := range keys {
		if key != "" {
			validKeys[key] = struct{}{}
		}
	}

	return &APIKeyAuth{
		validKeys: validKeys,
	}
}

// Open reports whether no keys are configured at all.
func (a *APIKeyAuth) Open() bool {
	return len(a.validKeys) == 0
}

// IsValidKey checks if a key is valid
func (a *APIKeyAuth) IsValidKey(key string) bool {
	if a.Open() {
		return true
	}
	_, valid := a.validKeys[key]
	return valid
}
