package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const scopeReadonly = "https://www.googleapis.com/auth/youtube.readonly"

const (
	credentialsFile = "credentials.json"
	tokenFile       = "token.json"
)

// ErrNoCredentials indicates the OAuth client secret file is missing.
var ErrNoCredentials = errors.New("youtube: oauth credentials not found")

// Authenticator manages the OAuth files for the Data API: credentials.json
// (the client secret downloaded from Google Cloud Console) and token.json
// (the granted token, written with 0600).
type Authenticator struct {
	// Dir holds credentials.json and token.json.
	Dir string

	// Prompt and Input drive the interactive authorization flow. They
	// default to stdout and stdin.
	Prompt io.Writer
	Input  io.Reader
}

// NewAuthenticator returns an authenticator over the given directory.
func NewAuthenticator(dir string) *Authenticator {
	return &Authenticator{Dir: dir, Prompt: os.Stdout, Input: os.Stdin}
}

// TokenSource returns a token source backed by the stored token, refreshing
// it as needed and persisting refreshed tokens back to token.json. When no
// token exists it runs the interactive authorization flow first.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	config, err := a.config()
	if err != nil {
		return nil, err
	}

	token, err := a.loadToken()
	if errors.Is(err, os.ErrNotExist) {
		token, err = a.authorize(ctx, config)
	}
	if err != nil {
		return nil, err
	}

	return &persistingTokenSource{
		src:  config.TokenSource(ctx, token),
		auth: a,
		last: token.AccessToken,
	}, nil
}

// Authorize runs the interactive flow unconditionally and stores the
// resulting token, replacing any existing one.
func (a *Authenticator) Authorize(ctx context.Context) error {
	config, err := a.config()
	if err != nil {
		return err
	}
	_, err = a.authorize(ctx, config)
	return err
}

func (a *Authenticator) config() (*oauth2.Config, error) {
	data, err := os.ReadFile(filepath.Join(a.Dir, credentialsFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: download the OAuth client JSON from Google Cloud Console to %s",
			ErrNoCredentials, filepath.Join(a.Dir, credentialsFile))
	}
	if err != nil {
		return nil, fmt.Errorf("read oauth credentials: %w", err)
	}

	config, err := google.ConfigFromJSON(data, scopeReadonly)
	if err != nil {
		return nil, fmt.Errorf("parse oauth credentials: %w", err)
	}
	return config, nil
}

func (a *Authenticator) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(filepath.Join(a.Dir, tokenFile))
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse stored token: %w", err)
	}
	return &token, nil
}

func (a *Authenticator) saveToken(token *oauth2.Token) error {
	if err := os.MkdirAll(a.Dir, 0o700); err != nil {
		return fmt.Errorf("create oauth dir: %w", err)
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	// The token grants account access, keep it owner-only.
	if err := os.WriteFile(filepath.Join(a.Dir, tokenFile), data, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// authorize walks the user through the out-of-band code flow and stores the
// granted token.
func (a *Authenticator) authorize(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	url := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(a.Prompt, "Open this URL in your browser and authorize access:\n\n%s\n\nPaste the authorization code: ", url)

	var code string
	if _, err := fmt.Fscan(a.Input, &code); err != nil {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if err := a.saveToken(token); err != nil {
		return nil, err
	}
	return token, nil
}

// persistingTokenSource writes refreshed tokens back to disk so the next
// run does not need to refresh again.
type persistingTokenSource struct {
	src  oauth2.TokenSource
	auth *Authenticator
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != p.last {
		p.last = token.AccessToken
		if err := p.auth.saveToken(token); err != nil {
			return nil, err
		}
	}
	return token, nil
}
