package gmail

import (
	"context"
	"fmt"
	"os"

	"triage_server/pkg/logger"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

// loadToken returns the cached OAuth token, running the console
// authorization flow and caching the result when no token exists yet.
// Refresh of an expired-but-refreshable token is handled transparently by
// the oauth2 client.
func loadToken(ctx context.Context, config *oauth2.Config, tokenFile string) (*oauth2.Token, error) {
	token, err := tokenFromFile(tokenFile)
	if err == nil {
		return token, nil
	}

	token, err = tokenFromConsole(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := saveToken(tokenFile, token); err != nil {
		logger.WithError(err).Warn("failed to cache oauth token to %s", tokenFile)
	}
	return token, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	return token, nil
}

func tokenFromConsole(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the authorization code:\n%v\n", authURL)

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("failed to read authorization code: %w", err)
	}

	token, err := config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
