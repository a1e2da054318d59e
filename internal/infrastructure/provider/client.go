package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const requestTimeout = 10 * time.Second

// Client talks to the identity provider's REST API. It implements
// ports.IdentityProvider; callers treat its errors as warnings.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
		log:     log,
	}
}

// FindUserByEmail returns the provider user id for an email, or "" when the
// provider has no such user.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (string, error) {
	endpoint := fmt.Sprintf("%s/users?email_address=%s", c.baseURL, url.QueryEscape(email))
	var users []struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &users); err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", nil
	}
	return users[0].ID, nil
}

func (c *Client) CreateUser(ctx context.Context, email, firstName, lastName string) (string, error) {
	payload := map[string]any{
		"email_addresses":  []map[string]string{{"email": email}},
		"first_name":       firstName,
		"last_name":        lastName,
		"password_enabled": true,
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/users", payload, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (c *Client) SendPasswordReset(ctx context.Context, userID, email string) error {
	payload := map[string]string{
		"email_address_id": email,
		"user_id":          userID,
	}
	endpoint := fmt.Sprintf("%s/users/%s/password_reset", c.baseURL, url.PathEscape(userID))
	return c.do(ctx, http.MethodPost, endpoint, payload, nil)
}

func (c *Client) CreateMagicLink(ctx context.Context, email, redirectURL string) (string, error) {
	payload := map[string]string{
		"email_address": email,
		"redirect_url":  redirectURL,
	}
	var link struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/sign_in_tokens/email", payload, &link); err != nil {
		return "", err
	}
	return link.ID, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload, out any) error {
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("provider: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("provider: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("provider: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("provider: %s %s: unexpected status %d", method, endpoint, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("provider: decode response: %w", err)
	}
	return nil
}
