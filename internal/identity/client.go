package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mwynn/toolgrid/internal/common"
)

var (
	ErrInvalidToken = errors.New("invalid or expired access token")
)

const tokenCacheTTL = 5 * time.Minute

func NewClient(baseURL, apiKey string, c *common.Cache) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		c:       c,
	}
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	AppMetadata struct {
		Role string `json:"role"`
	} `json:"app_metadata"`
}

// GetUserForToken resolves a bearer access token to its user by calling
// the provider's user endpoint. Resolved users are cached briefly so hot
// tokens do not hit the provider on every request.
func (cl *Client) GetUserForToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	key := common.CacheKeyUserByAccessToken(token)
	if cl.c != nil {
		if cached, ok := cl.c.Get(key); ok {
			return cached.(*User), nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cl.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", cl.apiKey)

	res, err := cl.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider request: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
		// fall through to decode
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidToken
	default:
		return nil, fmt.Errorf("identity provider returned status %d", res.StatusCode)
	}

	var body userResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}

	if body.ID == "" {
		return nil, ErrInvalidToken
	}

	user := &User{
		ID:    body.ID,
		Email: body.Email,
		Admin: body.AppMetadata.Role == "admin",
	}

	if cl.c != nil {
		cl.c.Set(key, user, tokenCacheTTL)
	}

	return user, nil
}
