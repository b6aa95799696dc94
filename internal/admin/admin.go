// Package admin issues delegated user-management calls. The core only sends
// these requests and reconciles the resulting profile changes; authorization
// is enforced by the hub.
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type CreateUserRequest struct {
	Email    string  `json:"email"`
	Password *string `json:"password,omitempty"`
	Name     *string `json:"name,omitempty"`
}

// UserUpdate carries optional account changes; nil fields are untouched.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

// API is the administrative user-management boundary.
type API interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (string, error)
	UpdateUser(ctx context.Context, id string, upd UserUpdate) error
	DeleteUser(ctx context.Context, id string) error
}

// Client calls the hub's /api/admin/users endpoints.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/admin/users", req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, upd UserUpdate) error {
	return c.do(ctx, http.MethodPatch, "/api/admin/users/"+url.PathEscape(id), upd, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/users/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if jsonErr := json.Unmarshal(b, &payload); jsonErr == nil && payload.Error != "" {
			return &Error{Status: resp.StatusCode, Message: payload.Error}
		}
		return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Error mirrors remote.Error for the admin boundary.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
