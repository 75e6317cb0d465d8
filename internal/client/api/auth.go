package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/todoclient/internal/client/models"
)

// Credentials is the login body. Either Email or Username identifies the
// account, depending on the backend.
type Credentials struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// Registration is the register body.
type Registration struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// AuthResponse is the reply to login, register and refresh. AccessToken is
// empty when the server did not send one. User is never nil after a
// successful decode: when the reply has no "user" object, the reply itself
// minus the token fields is taken as the user.
type AuthResponse struct {
	AccessToken string
	TokenType   string
	User        *models.User
}

var authMetaFields = []string{"access_token", "token", "token_type", "refresh_token", "expires_in", "message"}

func (a *AuthResponse) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	var out AuthResponse
	out.AccessToken = firstString(m, "access_token")
	out.TokenType = firstString(m, "token_type")

	u := &models.User{}
	if raw, ok := m["user"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, u); err != nil {
			return fmt.Errorf("decode auth user: %w", err)
		}
	} else {
		for _, k := range authMetaFields {
			delete(m, k)
		}
		if _, hasID := m["id"]; !hasID {
			if raw, ok := m["userId"]; ok {
				m["id"] = raw
				delete(m, "userId")
			}
		}
		raw, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, u); err != nil {
			return fmt.Errorf("decode auth user: %w", err)
		}
	}
	out.User = u
	*a = out
	return nil
}

func firstString(m map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

func (c *Client) Register(ctx context.Context, r Registration) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.Post(ctx, PathRegister, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, cr Credentials) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.Post(ctx, PathLogin, cr, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// emptyObject is the body of POSTs that carry no data; it encodes as {}.
var emptyObject = struct{}{}

func (c *Client) RefreshToken(ctx context.Context) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.Post(ctx, PathRefresh, emptyObject, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the backend to drop the current token.
func (c *Client) Logout(ctx context.Context) error {
	return c.Post(ctx, PathLogout, emptyObject, nil)
}

func (c *Client) GetProfile(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.Get(ctx, PathProfile, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile sends patch (any JSON object) and returns the stored profile.
func (c *Client) UpdateProfile(ctx context.Context, patch any) (*models.User, error) {
	var u models.User
	if err := c.Put(ctx, PathProfile, patch, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// HealthStatus is the reply of the health endpoint.
type HealthStatus struct {
	Status string `json:"status"`
}

func (c *Client) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	var h HealthStatus
	if err := c.Get(ctx, PathHealth, nil, &h); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return &h, nil
}
