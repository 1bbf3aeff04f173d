// Package api is the JSON-over-HTTP client for the wallet backend and the
// rates feed. Session auth rides on a cookie jar; every call carries a
// timeout. Callers treat failures as degraded, never fatal.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"blinkwallet/pkg/models"
)

var RequestTimeout = 10 * time.Second

type Client struct {
	baseURL  string
	ratesURL string
	http     *http.Client
}

// NewClient builds a client for the wallet backend. ratesURL may be empty,
// in which case rates come from {baseURL}/rates.
func NewClient(baseURL, ratesURL string) *Client {
	jar, _ := cookiejar.New(nil)
	if ratesURL == "" {
		ratesURL = baseURL + "/rates"
	}
	return &Client{
		baseURL:  baseURL,
		ratesURL: ratesURL,
		http:     &http.Client{Timeout: RequestTimeout, Jar: jar},
	}
}

func (c *Client) postJSON(path string, payload interface{}, out interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		// Tolerate empty or malformed bodies; status decides success.
		_ = json.NewDecoder(resp.Body).Decode(out)
	}
	return resp, nil
}

// FetchRates loads the current rate table. Both wire shapes are accepted:
// the worker's {"current": {...}, "roi": {...}} envelope and a flat
// {code: usdRate} map.
func (c *Client) FetchRates() (models.RatesData, error) {
	resp, err := c.http.Get(c.ratesURL)
	if err != nil {
		return models.RatesData{Err: err}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("rates fetch: unexpected status %d", resp.StatusCode)
		return models.RatesData{Err: err}, err
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return models.RatesData{Err: err}, err
	}

	var envelope struct {
		Current map[string]float64 `json:"current"`
		ROI     map[string]float64 `json:"roi"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Current) > 0 {
		return models.RatesData{Current: envelope.Current, ROI: envelope.ROI}, nil
	}

	var flat map[string]float64
	if err := json.Unmarshal(raw, &flat); err != nil || len(flat) == 0 {
		err := fmt.Errorf("rates fetch: unrecognized payload")
		return models.RatesData{Err: err}, err
	}
	return models.RatesData{Current: flat}, nil
}

// LoadBalances fetches the backend balance snapshot for a user.
func (c *Client) LoadBalances(userID int64) (map[string]float64, error) {
	resp, err := c.http.Get(fmt.Sprintf("%s/balances?id=%d", c.baseURL, userID))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("load balances: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Balances map[string]float64 `json:"balances"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Balances, nil
}

// SaveBalances pushes the local balance snapshot to the backend.
func (c *Client) SaveBalances(userID int64, balances map[string]float64) error {
	payload := struct {
		UserID   int64              `json:"user_id"`
		Balances map[string]float64 `json:"balances"`
	}{UserID: userID, Balances: balances}

	resp, err := c.postJSON("/balances", payload, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("save balances: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Transfer asks the backend to settle a transfer to another user's tag.
func (c *Client) Transfer(req models.TransferRequest) error {
	var out struct {
		Error string `json:"error"`
	}
	resp, err := c.postJSON("/transfer", req, &out)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != "" {
			return fmt.Errorf("transfer rejected: %s", out.Error)
		}
		return fmt.Errorf("transfer: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Login authenticates and stores the session cookie in the jar.
func (c *Client) Login(creds models.Credentials) (models.SessionUser, error) {
	var user models.SessionUser
	resp, err := c.postJSON("/auth/login", creds, &user)
	if err != nil {
		return models.SessionUser{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.SessionUser{}, fmt.Errorf("login: unexpected status %d", resp.StatusCode)
	}
	return user, nil
}

// Register creates an account and logs it in.
func (c *Client) Register(creds models.Credentials) (models.SessionUser, error) {
	var user models.SessionUser
	resp, err := c.postJSON("/auth/register", creds, &user)
	if err != nil {
		return models.SessionUser{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.SessionUser{}, fmt.Errorf("register: unexpected status %d", resp.StatusCode)
	}
	return user, nil
}

// SessionUser returns the user bound to the current session cookie, if any.
func (c *Client) SessionUser() (models.SessionUser, error) {
	resp, err := c.http.Get(c.baseURL + "/auth/me")
	if err != nil {
		return models.SessionUser{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return models.SessionUser{}, fmt.Errorf("session: unexpected status %d", resp.StatusCode)
	}
	var user models.SessionUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return models.SessionUser{}, err
	}
	return user, nil
}
