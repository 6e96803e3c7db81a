package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Token is a bearer credential scoped to one (tenant, site) pair.
type Token struct {
	Value   string
	Expires time.Time
}

// Authenticator produces a resource-scoped token. The backend treats admin
// tokens as site-scoped, so the executor asks for a fresh one per site; an
// implementation may block on interactive user action.
type Authenticator interface {
	Authenticate(ctx context.Context, tenant, site string) (Token, error)
}

// ClientCredentials authenticates against the tenant's token endpoint with
// a client ID and secret, requesting a token scoped to one site.
type ClientCredentials struct {
	TokenURL     string
	ClientID     string
	ClientSecret string

	httpClient *http.Client
}

func NewClientCredentials(tokenURL, clientID, clientSecret string) *ClientCredentials {
	return &ClientCredentials{
		TokenURL:     tokenURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *ClientCredentials) Authenticate(ctx context.Context, tenant, site string) (Token, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
		"tenant":        {tenant},
		"scope":         {site},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("token endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Token{}, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Token{}, fmt.Errorf("decoding token response: %w", err)
	}
	if payload.AccessToken == "" {
		return Token{}, fmt.Errorf("token endpoint returned an empty token")
	}

	return Token{
		Value:   payload.AccessToken,
		Expires: time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}, nil
}

// Static returns the same token for every site. Test use only.
type Static struct {
	Token string
	Err   error
}

func (s Static) Authenticate(ctx context.Context, tenant, site string) (Token, error) {
	if s.Err != nil {
		return Token{}, s.Err
	}
	return Token{Value: s.Token}, nil
}
