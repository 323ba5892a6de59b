package oauth

import (
	"net/http"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

var githubEndpoints = Endpoints{
	AuthURL:  "https://github.com/login/oauth/authorize",
	TokenURL: "https://github.com/login/oauth/access_token",
	UserURL:  "https://api.github.com/user",
}

// NewGitHub returns a GitHub provider requesting the user:email scope.
func NewGitHub(cfg Config) *Provider {
	return newProvider(domain.ProviderGitHub, cfg, githubEndpoints, []string{"user:email"},
		func(req *http.Request, accessToken string) {
			req.Header.Set("Authorization", "Bearer "+accessToken)
			req.Header.Set("Accept", "application/vnd.github+json")
		})
}
