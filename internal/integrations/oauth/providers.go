package oauth

import (
	"github.com/shotlist/analytics-backend/internal/config"
)

// Providers builds the closed provider map from configuration. Apple
// returns identity claims in the id_token rather than a userinfo
// endpoint, so its UserinfoURL stays empty.
func Providers(cfg *config.Config) map[string]Provider {
	redirect := func(name string) string {
		return cfg.OAuthRedirectBase + "/oauth/callback/" + name
	}

	return map[string]Provider{
		"google": {
			Name:             "google",
			AuthorizationURL: "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:         "https://oauth2.googleapis.com/token",
			UserinfoURL:      "https://www.googleapis.com/oauth2/v2/userinfo",
			Scope:            "openid email profile",
			ClientID:         cfg.GoogleClientID,
			ClientSecret:     cfg.GoogleClientSecret,
			RedirectURI:      redirect("google"),
		},
		"apple": {
			Name:             "apple",
			AuthorizationURL: "https://appleid.apple.com/auth/authorize",
			TokenURL:         "https://appleid.apple.com/auth/token",
			Scope:            "name email",
			ClientID:         cfg.AppleClientID,
			ClientSecret:     cfg.AppleClientSecret,
			RedirectURI:      redirect("apple"),
		},
		"facebook": {
			Name:             "facebook",
			AuthorizationURL: "https://www.facebook.com/v18.0/dialog/oauth",
			TokenURL:         "https://graph.facebook.com/v18.0/oauth/access_token",
			UserinfoURL:      "https://graph.facebook.com/me?fields=id,name,email",
			Scope:            "email public_profile",
			ClientID:         cfg.FacebookClientID,
			ClientSecret:     cfg.FacebookClientSecret,
			RedirectURI:      redirect("facebook"),
		},
		"twitter": {
			Name:             "twitter",
			AuthorizationURL: "https://twitter.com/i/oauth2/authorize",
			TokenURL:         "https://api.twitter.com/2/oauth2/token",
			UserinfoURL:      "https://api.twitter.com/2/users/me",
			Scope:            "users.read tweet.read",
			ClientID:         cfg.TwitterClientID,
			ClientSecret:     cfg.TwitterClientSecret,
			RedirectURI:      redirect("twitter"),
		},
		"linkedin": {
			Name:             "linkedin",
			AuthorizationURL: "https://www.linkedin.com/oauth/v2/authorization",
			TokenURL:         "https://www.linkedin.com/oauth/v2/accessToken",
			UserinfoURL:      "https://api.linkedin.com/v2/userinfo",
			Scope:            "openid profile email",
			ClientID:         cfg.LinkedInClientID,
			ClientSecret:     cfg.LinkedInClientSecret,
			RedirectURI:      redirect("linkedin"),
		},
		"github": {
			Name:             "github",
			AuthorizationURL: "https://github.com/login/oauth/authorize",
			TokenURL:         "https://github.com/login/oauth/access_token",
			UserinfoURL:      "https://api.github.com/user",
			Scope:            "read:user user:email",
			ClientID:         cfg.GitHubClientID,
			ClientSecret:     cfg.GitHubClientSecret,
			RedirectURI:      redirect("github"),
		},
	}
}
