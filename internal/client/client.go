// Package client is the programmatic counterpart of the browser session
// controller: it keeps the access token only in memory, carries the refresh
// cookie in a jar, and silently re-acquires an access token from the cookie
// when none is held.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
)

type Client struct {
	base string
	http *http.Client

	mu          sync.Mutex
	accessToken string
}

// New creates a client for the service at base (e.g. "https://host:8000").
// The underlying http.Client owns a cookie jar so the refresh cookie set on
// login survives across calls, like a browser's cookie store.
func New(base string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{base: base, http: &http.Client{Jar: jar}}, nil
}

// NewWithHTTPClient wraps an existing http.Client, attaching a cookie jar
// when the client has none. The refresh cookie is marked Secure, so hc must
// speak TLS to the service for the jar to replay it.
func NewWithHTTPClient(base string, hc *http.Client) (*Client, error) {
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		hc.Jar = jar
	}
	return &Client{base: base, http: hc}, nil
}

// AccessToken returns the currently held access token, or "" when logged out
func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// Register creates a new account. It does not log in.
func (c *Client) Register(ctx context.Context, email, password string) error {
	resp, err := c.postJSON(ctx, "/api/register", map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return statusError(resp)
	}
	return nil
}

// Login authenticates and stores the returned access token in memory. The
// refresh cookie lands in the jar as a side effect of the Set-Cookie header.
func (c *Client) Login(ctx context.Context, email, password string) error {
	resp, err := c.postJSON(ctx, "/api/login", map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return statusError(resp)
	}
	var body struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	c.mu.Lock()
	c.accessToken = body.AccessToken
	c.mu.Unlock()
	return nil
}

// Refresh trades the refresh cookie for a fresh access token
func (c *Client) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/refresh", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	var body struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	c.mu.Lock()
	c.accessToken = body.AccessToken
	c.mu.Unlock()
	return nil
}

// Logout ends the session server-side and drops the in-memory token
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/logout", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return statusError(resp)
	}
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
	return nil
}

// Users calls the protected listing endpoint. When no access token is held it
// first attempts a silent refresh from the cookie; a refresh failure is
// swallowed, the request simply goes out unauthenticated and fails like the
// browser app's logged-out state. There is no retry after a 403.
func (c *Client) Users(ctx context.Context) ([]string, error) {
	if c.AccessToken() == "" {
		_ = c.Refresh(ctx)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/users", nil)
	if err != nil {
		return nil, err
	}
	if tok := c.AccessToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	var body []struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(body))
	for _, u := range body {
		emails = append(emails, u.Email)
	}
	return emails, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(b) > 0 {
		return fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(b))
	}
	return fmt.Errorf("%s", resp.Status)
}
