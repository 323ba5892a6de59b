package oauth

import (
	"net/http"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

var giteeEndpoints = Endpoints{
	AuthURL:  "https://gitee.com/oauth/authorize",
	TokenURL: "https://gitee.com/oauth/token",
	UserURL:  "https://gitee.com/api/v5/user",
}

// NewGitee returns a Gitee provider requesting the user_info scope. Gitee
// expects the access token as a query parameter on API calls.
func NewGitee(cfg Config) *Provider {
	return newProvider(domain.ProviderGitee, cfg, giteeEndpoints, []string{"user_info"},
		func(req *http.Request, accessToken string) {
			q := req.URL.Query()
			q.Set("access_token", accessToken)
			req.URL.RawQuery = q.Encode()
		})
}
