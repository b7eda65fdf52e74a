package google

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OOBRedirectURL is used when the credentials file does not name a redirect URL.
// The user pastes the code shown by Google back into the terminal.
const OOBRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// LoadOAuthConfig reads OAuth client credentials from a credentials.json file.
func LoadOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", credentialsFile, err)
	}
	return ParseOAuthConfig(data)
}

// ParseOAuthConfig parses OAuth client credentials JSON.
func ParseOAuthConfig(data []byte) (*oauth2.Config, error) {
	conf, err := google.ConfigFromJSON(data, DefaultOAuthScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if conf.RedirectURL == "" {
		conf.RedirectURL = OOBRedirectURL
	}
	return conf, nil
}

// GetAuthURL returns the OAuth URL for user authorization.
func GetAuthURL(conf *oauth2.Config) string {
	return conf.AuthCodeURL("state", oauth2.AccessTypeOffline)
}

// AuthorizeInteractive prints the consent URL to out, reads the authorization
// code from in, exchanges it and stores the token with the provider.
func AuthorizeInteractive(ctx context.Context, conf *oauth2.Config, store *FileTokenProvider, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	fmt.Fprintf(out, "Go to the following link in your browser to authorize calendar access:\n\n%s\n\n", GetAuthURL(conf))
	fmt.Fprint(out, "Enter the authorization code: ")

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && code == "" {
		return nil, fmt.Errorf("failed to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("authorization code is empty")
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}

	if err := store.Save(token); err != nil {
		return nil, err
	}
	return token, nil
}

// GetHTTPClient returns an HTTP client configured with OAuth2 authentication.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func GetHTTPClient(ctx context.Context, conf *oauth2.Config, provider TokenProvider) (*http.Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := provider.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token: %w", err)
	}

	ts := conf.TokenSource(ctx, token)
	if saver, ok := provider.(*FileTokenProvider); ok {
		ts = &persistingTokenSource{base: ts, store: saver, last: token.AccessToken}
	}

	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		ForceAttemptHTTP2: false,
	}

	return client, nil
}

// persistingTokenSource writes refreshed tokens back to the token file.
type persistingTokenSource struct {
	base  oauth2.TokenSource
	store *FileTokenProvider
	last  string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != p.last {
		p.last = token.AccessToken
		if err := p.store.Save(token); err != nil {
			return nil, err
		}
	}
	return token, nil
}
