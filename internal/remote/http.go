package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"boardsync/internal/model"
)

// Client talks to a boardsync hub over its JSON REST API.
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

func (c *Client) FetchSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := c.do(ctx, http.MethodGet, "/api/snapshot", nil, &snap)
	return snap, err
}

func (c *Client) InsertProject(ctx context.Context, p model.Project) error {
	return c.do(ctx, http.MethodPost, "/api/projects", p, nil)
}

func (c *Client) UpdateProject(ctx context.Context, p model.Project) error {
	return c.do(ctx, http.MethodPatch, "/api/projects/"+url.PathEscape(p.ID), p, nil)
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil, nil)
}

func (c *Client) UpsertProjectPositions(ctx context.Context, positions []ProjectPosition) error {
	return c.do(ctx, http.MethodPost, "/api/projects/positions", positions, nil)
}

func (c *Client) InsertTask(ctx context.Context, t model.Task) error {
	return c.do(ctx, http.MethodPost, "/api/tasks", t, nil)
}

func (c *Client) InsertTasks(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/api/tasks/batch", tasks, nil)
}

func (c *Client) UpdateTask(ctx context.Context, t model.Task) error {
	return c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(t.ID), t, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) UpsertTaskPositions(ctx context.Context, positions []TaskPosition) error {
	return c.do(ctx, http.MethodPost, "/api/tasks/positions", positions, nil)
}

func (c *Client) MarkProjectTasksDone(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodPost, "/api/projects/"+url.PathEscape(projectID)+"/tasks/done", nil, nil)
}

func (c *Client) UpsertUserSettings(ctx context.Context, settings model.UserSettings) error {
	return c.do(ctx, http.MethodPut, "/api/user-settings", settings, nil)
}

func (c *Client) UpdateAppSettings(ctx context.Context, config model.AppSettings) error {
	return c.do(ctx, http.MethodPut, "/api/app-settings", config, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
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
		return decodeError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Status: resp.StatusCode, Message: "decode response: " + err.Error()}
		}
	}
	return nil
}

func decodeError(resp *http.Response) *Error {
	var payload struct {
		Error string `json:"error"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := json.Unmarshal(b, &payload); err == nil && payload.Error != "" {
		return &Error{Status: resp.StatusCode, Message: payload.Error}
	}
	return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
}
