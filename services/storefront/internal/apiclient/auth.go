package apiclient

import (
	"context"
	"net/http"

	"onlinemall/pkg/domain"
)

// LoginResult is the session material returned by POST /auth/login.
type LoginResult struct {
	Token    string           `json:"token"`
	UserInfo *domain.UserInfo `json:"userInfo"`
}

type loginResponse struct {
	Token    string           `json:"token"`
	UserInfo *domain.UserInfo `json:"userInfo"`
	// User is the older field name still sent by mock backends.
	User *domain.UserInfo `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil, payload, &resp); err != nil {
		return LoginResult{}, err
	}
	user := resp.UserInfo
	if user == nil {
		user = resp.User
	}
	return LoginResult{Token: resp.Token, UserInfo: user}, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) error {
	payload := map[string]string{"name": name, "email": email, "password": password}
	return c.doJSON(ctx, http.MethodPost, "/users/register", nil, payload, nil)
}
