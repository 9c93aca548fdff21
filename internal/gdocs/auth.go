// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gdocs

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/docs/v1"

	"github.com/pdiddy/docextract/pkg/types"
)

// NewHTTPClient returns an HTTP client authorized for read-only Docs
// access. A cached token is reused; otherwise the user is sent through the
// installed-app consent flow on in/out and the token is cached.
func NewHTTPClient(ctx context.Context, cfg types.GoogleConfig, in io.Reader, out io.Writer) (*http.Client, error) {
	secret, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading client secrets: %w", err)
	}
	conf, err := google.ConfigFromJSON(secret, docs.DocumentsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parsing client secrets: %w", err)
	}

	tok, err := loadToken(cfg.TokenFile)
	if err != nil {
		tok, err = authorize(ctx, conf, in, out)
		if err != nil {
			return nil, err
		}
		if err := saveToken(cfg.TokenFile, tok); err != nil {
			return nil, err
		}
	}
	return conf.Client(ctx, tok), nil
}

// authorize prints the consent URL and exchanges the pasted code.
func authorize(ctx context.Context, conf *oauth2.Config, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	url := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open this link in your browser, then paste the authorization code:\n%s\n", url)

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("no authorization code entered")
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return tok, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decoding token %s: %w", path, err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("caching token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}
