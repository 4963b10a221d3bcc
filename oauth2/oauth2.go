// Package oauth2 holds the federated provider clients for the three
// supported identity sources. Each provider is explicit configuration
// (client credentials plus a callback URL) handed to the Gateway at
// construction; nothing registers itself globally.
package oauth2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	soulauth "github.com/rishav-raunak/SearchImage-unplace"
)

type userInfoFunc func(ctx context.Context, c *Client, hc *http.Client) (*soulauth.Profile, error)

// Client implements soulauth.FederatedProvider for one provider.
// Construct via Google, Github, or Facebook.
type Client struct {
	// Config carries the provider endpoint, credentials, scopes and
	// callback URL. Exposed so tests can point it at a fake provider.
	Config *oauth2.Config

	// UserInfoURL is where the profile is fetched from after the code
	// exchange. Defaults per provider; overridable for tests.
	UserInfoURL string

	kind     soulauth.Provider
	userInfo userInfoFunc
}

var _ soulauth.FederatedProvider = (*Client)(nil)

func (c *Client) Kind() soulauth.Provider { return c.kind }

// AuthCodeURL returns the provider consent screen URL carrying state.
func (c *Client) AuthCodeURL(state string) string {
	return c.Config.AuthCodeURL(state)
}

// FetchProfile exchanges the callback code for an access token and
// fetches the normalized account profile with it.
func (c *Client) FetchProfile(ctx context.Context, code string) (*soulauth.Profile, error) {
	token, err := c.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s code exchange: %w", c.kind, err)
	}
	return c.userInfo(ctx, c, c.Config.Client(ctx, token))
}

// getJSON fetches url with the token-bearing client and decodes the
// body into out.
func getJSON(ctx context.Context, hc *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("fetch user info: %s: %s", resp.Status, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
