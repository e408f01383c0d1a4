package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/groovi/internal/core/ports"
)

const DefaultTokenURL = "https://accounts.spotify.com/api/token"

// ErrNoCredentials means neither an access token nor a refresh token is set.
var ErrNoCredentials = errors.New("spotify adapter: no credentials configured")

// Credentials holds what is needed to mint playback access tokens.
type Credentials struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	TokenURL     string
}

// Configured reports whether any usable credential is present.
func (c Credentials) Configured() bool {
	return strings.TrimSpace(c.AccessToken) != "" || c.canRefresh()
}

func (c Credentials) canRefresh() bool {
	return c.RefreshToken != "" && c.ClientID != "" && c.ClientSecret != ""
}

// NewTokenSource returns a refreshing source when a refresh token and client
// credentials are present, otherwise a static source around the access token.
func NewTokenSource(ctx context.Context, creds Credentials) (oauth2.TokenSource, error) {
	if !creds.Configured() {
		return nil, ErrNoCredentials
	}
	seed := &oauth2.Token{
		AccessToken:  strings.TrimSpace(creds.AccessToken),
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
	}
	if !creds.canRefresh() {
		return oauth2.StaticTokenSource(seed), nil
	}

	tokenURL := creds.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
	// An empty seed access token is invalid, so the first Token call refreshes.
	return oauth2.ReuseTokenSource(seed, conf.TokenSource(ctx, seed)), nil
}

// TokenFunc adapts a TokenSource to the playback credential callback.
func TokenFunc(ts oauth2.TokenSource) ports.TokenFunc {
	return func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		tok, err := ts.Token()
		if err != nil {
			return "", fmt.Errorf("spotify adapter: obtain token: %w", err)
		}
		return tok.AccessToken, nil
	}
}
