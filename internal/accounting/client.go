package accounting

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cabinfolio-backend/internal/domain"
	"cabinfolio-backend/internal/logger"
)

// AuthClient talks to the accounting provider's authorization server.
// The only operation this core needs is the refresh-token grant.
type AuthClient interface {
	RefreshToken(ctx context.Context, refreshToken string) (domain.TokenPair, error)
}

type authClient struct {
	tokenURL     string
	clientID     string
	clientSecret string
	http         *http.Client
}

func NewAuthClient(tokenURL, clientID, clientSecret string, timeout time.Duration) AuthClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &authClient{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         &http.Client{Timeout: timeout},
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

// RefreshToken exchanges a refresh token for a new token pair. A 4xx
// response means the refresh token was revoked or expired and maps to
// domain.ErrReauthorizationRequired; network failures and 5xx responses
// are transient.
func (c *authClient) RefreshToken(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.TokenPair{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	logger.ExternalServiceCall("authorization-server", "refresh_token")
	resp, err := c.http.Do(req)
	if err != nil {
		logger.ExternalServiceResult("authorization-server", "refresh_token", err)
		return domain.TokenPair{}, &domain.TransientError{Op: "token refresh", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fall through to decode
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		logger.ExternalServiceResult("authorization-server", "refresh_token", domain.ErrReauthorizationRequired, "status", resp.StatusCode)
		return domain.TokenPair{}, domain.ErrReauthorizationRequired
	default:
		err := fmt.Errorf("authorization server returned %d", resp.StatusCode)
		logger.ExternalServiceResult("authorization-server", "refresh_token", err)
		return domain.TokenPair{}, &domain.TransientError{Op: "token refresh", Err: err}
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.TokenPair{}, &domain.TransientError{Op: "token refresh", Err: err}
	}
	if body.AccessToken == "" || body.RefreshToken == "" {
		return domain.TokenPair{}, &domain.TransientError{Op: "token refresh", Err: fmt.Errorf("token response missing fields")}
	}

	logger.ExternalServiceResult("authorization-server", "refresh_token", nil)
	return domain.TokenPair{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		TokenType:    body.TokenType,
		Scope:        body.Scope,
		ExpiresAt:    time.Now().Add(time.Duration(body.ExpiresIn) * time.Second),
	}, nil
}
