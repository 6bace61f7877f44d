package models

// AuthMode selects how requests to the collection endpoint are authorized.
type AuthMode string

const (
	// AuthModeToken uses a bearer access token with refresh-token rotation.
	AuthModeToken AuthMode = "token"
	// AuthModeAPIKey uses a static API key header. There is nothing to
	// refresh: a 401 in this mode is terminal.
	AuthModeAPIKey AuthMode = "api_key"
)

// Credential is the capability the engine attaches to outgoing requests.
// The engine reads and rotates it but does not own its lifecycle; storage
// lives behind the credentials.Store collaborator.
type Credential struct {
	// UserKey identifies the owning user. For token auth it is the "sub"
	// claim of the access token.
	UserKey string `json:"user_key"`

	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	APIKey       string `json:"api_key,omitempty"`

	// Host is the collection endpoint base URL this credential belongs to.
	Host string `json:"host,omitempty"`
}

// Mode infers the auth mode from which fields are populated.
func (c Credential) Mode() AuthMode {
	if c.APIKey != "" {
		return AuthModeAPIKey
	}
	return AuthModeToken
}

// TokenPair is the result of a successful token refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}
