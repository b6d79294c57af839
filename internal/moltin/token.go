package moltin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// Fallback lifetime when the token endpoint does not declare one.
	defaultTokenTTL = 3000 * time.Second
	// A token this close to expiry is treated as already expired, so a
	// request never leaves with a token that dies in flight.
	expiryMargin = 60 * time.Second
)

// TokenSource owns the access-token lifecycle: it exchanges the client
// credentials for a bearer token, caches it, and refreshes it on expiry.
// There is a single TokenSource per process; all clients share it.
type TokenSource struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpc        *http.Client

	sf singleflight.Group

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewTokenSource(baseURL, clientID, clientSecret string, httpc *http.Client) *TokenSource {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &TokenSource{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpc:        httpc,
	}
}

// Token returns a bearer token valid at the time of the call. Concurrent
// callers during a refresh share one exchange; the token endpoint is
// rate-limited and must never be hit once per caller.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if tok, ok := s.cached(); ok {
		return tok, nil
	}
	v, err, _ := s.sf.Do("token", func() (interface{}, error) {
		// A caller queued behind a finished refresh reuses its result.
		if tok, ok := s.cached(); ok {
			return tok, nil
		}
		tok, expiresAt, err := s.exchange(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.token, s.expiresAt = tok, expiresAt
		s.mu.Unlock()
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *TokenSource) cached() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" || !time.Now().Add(expiryMargin).Before(s.expiresAt) {
		return "", false
	}
	return s.token, true
}

func (s *TokenSource) exchange(ctx context.Context) (string, time.Time, error) {
	form := url.Values{
		"client_id":     {s.clientID},
		"client_secret": {s.clientSecret},
		"grant_type":    {"client_credentials"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, &AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return "", time.Time{}, &AuthError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, &AuthError{Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", time.Time{}, &AuthError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if tr.AccessToken == "" {
		return "", time.Time{}, &AuthError{Err: fmt.Errorf("empty access_token in response")}
	}
	return tr.AccessToken, expiryTime(tr, time.Now()), nil
}

// expiryTime prefers the upstream-declared lifetime: expires_in in seconds,
// then the absolute expires timestamp, then the fallback TTL.
func expiryTime(tr tokenResponse, now time.Time) time.Time {
	if tr.ExpiresIn > 0 {
		return now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	if tr.Expires > now.Unix() {
		return time.Unix(tr.Expires, 0)
	}
	return now.Add(defaultTokenTTL)
}
