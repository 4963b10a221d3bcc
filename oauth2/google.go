package oauth2

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	soulauth "github.com/rishav-raunak/SearchImage-unplace"
)

// Google builds the Google provider client, requesting the profile and
// email scopes.
func Google(clientID, clientSecret, callbackURL string) *Client {
	return &Client{
		kind: soulauth.ProviderGoogle,
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		userInfo:    googleUserInfo,
	}
}

func googleUserInfo(ctx context.Context, c *Client, hc *http.Client) (*soulauth.Profile, error) {
	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := getJSON(ctx, hc, c.UserInfoURL, &info); err != nil {
		return nil, err
	}
	profile := &soulauth.Profile{
		ID:          info.ID,
		DisplayName: info.Name,
	}
	if info.Email != "" {
		profile.Emails = []string{info.Email}
	}
	return profile, nil
}
