package oauth2

import (
	"context"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	soulauth "github.com/rishav-raunak/SearchImage-unplace"
)

// Github builds the GitHub provider client with the user:email scope.
// GitHub does not return the email on the profile endpoint when it is
// private, so the client falls back to the emails endpoint.
func Github(clientID, clientSecret, callbackURL string) *Client {
	return &Client{
		kind: soulauth.ProviderGithub,
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		UserInfoURL: "https://api.github.com/user",
		userInfo:    githubUserInfo,
	}
}

func githubUserInfo(ctx context.Context, c *Client, hc *http.Client) (*soulauth.Profile, error) {
	var info struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := getJSON(ctx, hc, c.UserInfoURL, &info); err != nil {
		return nil, err
	}
	profile := &soulauth.Profile{
		ID:          strconv.FormatInt(info.ID, 10),
		DisplayName: info.Name,
		Username:    info.Login,
	}
	if info.Email != "" {
		profile.Emails = []string{info.Email}
		return profile, nil
	}

	// Private email: ask the emails endpoint, preferring the primary
	// verified address.
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(ctx, hc, c.UserInfoURL+"/emails", &emails); err != nil {
		// The profile itself was fine; resolution will fail with a
		// missing-email error if nothing else turns up.
		return profile, nil
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			profile.Emails = append([]string{e.Email}, profile.Emails...)
		} else if e.Email != "" {
			profile.Emails = append(profile.Emails, e.Email)
		}
	}
	return profile, nil
}
