// Package amadeus talks to the Amadeus self-service flight APIs.
package amadeus

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/Domenick1991/skybooker/internal/apperror"
)

const tokenPath = "/v1/security/oauth2/token"

// Session owns one client-credentials token. It is safe for concurrent use.
type Session struct {
	cfg        clientcredentials.Config
	httpClient *http.Client

	mu    sync.Mutex
	token *oauth2.Token
}

func NewSession(baseURL, clientID, clientSecret string, httpClient *http.Client) *Session {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Session{
		cfg: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     strings.TrimRight(baseURL, "/") + tokenPath,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
	}
}

// Token returns the cached access token, fetching a new one when it has expired.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token.Valid() {
		return s.token.AccessToken, nil
	}
	return s.refreshLocked(ctx)
}

// Refresh discards the cached token and fetches a new one.
func (s *Session) Refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	tok, err := s.cfg.Token(ctx)
	if err != nil {
		s.token = nil
		return "", apperror.New(apperror.ErrUpstream, "provider authentication failed", err)
	}
	s.token = tok
	return tok.AccessToken, nil
}
