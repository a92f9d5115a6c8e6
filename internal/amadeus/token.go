package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

var tokenRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "amadeus_token_refreshes_total",
	Help: "Total token endpoint calls by outcome",
}, []string{"outcome"})

// expiryMargin treats a credential expiring this soon as already expired, so
// an in-flight request never carries a token that dies mid-call.
const expiryMargin = 30 * time.Second

// defaultTokenLifetime is assumed when the token response omits expires_in.
const defaultTokenLifetime = 30 * time.Minute

// tokenSource lazily acquires and caches the upstream bearer credential.
// It is the only mutable state shared across concurrent operations: reads
// take the mutex, and a refresh is collapsed to a single in-flight token
// request shared by all waiting callers.
type tokenSource struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	now          func() time.Time

	mu      sync.Mutex
	current *Credential
	group   singleflight.Group
}

func newTokenSource(baseURL, clientID, clientSecret string, httpClient *http.Client) *tokenSource {
	return &tokenSource{
		tokenURL:     baseURL + "/v1/security/oauth2/token",
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

// Credential returns a valid credential, refreshing when none is cached or
// the cached one is within the expiry margin. Concurrent callers during a
// refresh all receive the same credential or the same *CredentialError.
func (t *tokenSource) Credential(ctx context.Context) (Credential, error) {
	if cred, ok := t.cached(); ok {
		return cred, nil
	}

	v, err, _ := t.group.Do("token", func() (any, error) {
		// A caller queued behind a finished refresh can use its result.
		if cred, ok := t.cached(); ok {
			return cred, nil
		}
		return t.refresh(ctx)
	})
	if err != nil {
		return Credential{}, err
	}
	return v.(Credential), nil
}

// Invalidate drops the cached credential so the next Credential call
// refreshes. Called after any upstream request is rejected as unauthorized.
func (t *tokenSource) Invalidate() {
	t.mu.Lock()
	t.current = nil
	t.mu.Unlock()
}

func (t *tokenSource) cached() (Credential, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil || !t.now().Add(expiryMargin).Before(t.current.ExpiresAt) {
		return Credential{}, false
	}
	return *t.current, true
}

func (t *tokenSource) refresh(ctx context.Context) (Credential, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {t.clientID},
		"client_secret": {t.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Credential{}, &CredentialError{Err: fmt.Errorf("creating token request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		tokenRefreshesTotal.WithLabelValues("error").Inc()
		return Credential{}, &CredentialError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tokenRefreshesTotal.WithLabelValues("error").Inc()
		return Credential{}, &CredentialError{Err: fmt.Errorf("reading token response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		tokenRefreshesTotal.WithLabelValues("rejected").Inc()
		return Credential{}, &CredentialError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		tokenRefreshesTotal.WithLabelValues("error").Inc()
		return Credential{}, &CredentialError{Err: fmt.Errorf("decoding token response: %w", err)}
	}

	lifetime := defaultTokenLifetime
	if payload.ExpiresIn > 0 {
		lifetime = time.Duration(payload.ExpiresIn) * time.Second
	}

	cred := Credential{
		Token:     payload.AccessToken,
		TokenType: payload.TokenType,
		ExpiresAt: t.now().Add(lifetime),
	}

	t.mu.Lock()
	t.current = &cred
	t.mu.Unlock()

	tokenRefreshesTotal.WithLabelValues("ok").Inc()
	return cred, nil
}
