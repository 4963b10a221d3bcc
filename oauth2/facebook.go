package oauth2

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	soulauth "github.com/rishav-raunak/SearchImage-unplace"
)

// Facebook builds the Facebook provider client. The Graph API only
// returns fields asked for explicitly, so the user-info URL names them.
func Facebook(clientID, clientSecret, callbackURL string) *Client {
	return &Client{
		kind: soulauth.ProviderFacebook,
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     facebook.Endpoint,
		},
		UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email",
		userInfo:    facebookUserInfo,
	}
}

func facebookUserInfo(ctx context.Context, c *Client, hc *http.Client) (*soulauth.Profile, error) {
	var info struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
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
