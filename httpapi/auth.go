package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Auth is the thin, trusted-collaborator auth layer: a static
// cookie-to-user credentials file for submitters, and a single bearer
// token for admin endpoints. Neither the kernel nor the registry ever
// sees a credential; this package is the only one that does.
type Auth struct {
	credentials map[string]string // session cookie value -> user
	adminToken  string
}

// NewAuth loads the user credentials file (a flat JSON object mapping
// session token to username) and records the admin bearer token.
func NewAuth(credentialsPath, adminToken string) (*Auth, error) {
	creds := map[string]string{}
	if credentialsPath != "" {
		raw, err := os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("httpapi: reading user credentials: %w", err)
		}
		if err := json.Unmarshal(raw, &creds); err != nil {
			return nil, fmt.Errorf("httpapi: decoding user credentials: %w", err)
		}
	}
	return &Auth{credentials: creds, adminToken: adminToken}, nil
}

const sessionCookieName = "pacjudge_session"

// Identify resolves the submitter's username from the session cookie, or
// reports false if the cookie is missing or unrecognized.
func (a *Auth) Identify(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	user, ok := a.credentials[cookie.Value]
	return user, ok
}

// IsAdmin reports whether r carries the configured admin bearer token.
func (a *Auth) IsAdmin(r *http.Request) bool {
	if a.adminToken == "" {
		return false
	}
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	return strings.TrimPrefix(header, prefix) == a.adminToken
}
