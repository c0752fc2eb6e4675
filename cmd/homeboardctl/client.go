package main

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// client wraps the REST calls. Mutations need a session token, fetched
// lazily on the first mutating call.
type client struct {
	http  *resty.Client
	token string
}

func newClient() *client {
	return &client{
		http: resty.New().
			SetBaseURL(apiFlag).
			SetTimeout(15 * time.Second).
			SetAuthToken(keyFlag),
	}
}

func (c *client) ensureSession() error {
	if c.token != "" {
		return nil
	}
	var out struct {
		Token string `json:"token"`
	}
	resp, err := c.http.R().SetResult(&out).Post("/api/session")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("session: %s: %s", resp.Status(), resp.String())
	}
	c.token = out.Token
	return nil
}

func (c *client) get(path string) (string, error) {
	resp, err := c.http.R().Get(path)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("%s: %s", resp.Status(), resp.String())
	}
	return resp.String(), nil
}

func (c *client) mutate(method, path string, body interface{}) (string, error) {
	if err := c.ensureSession(); err != nil {
		return "", err
	}
	req := c.http.R().SetHeader("X-Homeboard-Token", c.token)
	if body != nil {
		req = req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("%s: %s", resp.Status(), resp.String())
	}
	return resp.String(), nil
}
