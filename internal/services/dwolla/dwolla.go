// Package dwolla is a minimal client for the money-movement provider. It
// covers the two calls this service needs: creating a funding source for a
// newly linked bank and moving funds between two funding sources.
package dwolla

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const contentTypeHAL = "application/vnd.dwolla.v1.hal+json"

type Client struct {
	BaseURL    string
	Key        string
	Secret     string
	HTTPClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// Service is the money-movement boundary consumed by the transfer workflow.
type Service interface {
	CreateTransfer(ctx context.Context, params TransferParams) (*Transfer, error)
	CreateFundingSource(ctx context.Context, customerURL, processorToken, name string) (string, error)
}

func NewClient(baseURL, key, secret string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Key:     key,
		Secret:  secret,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// TransferParams identifies the two endpoints of a funds transfer. Amount is
// the decimal string entered by the user, passed through unchanged.
type TransferParams struct {
	SourceFundingSourceURL      string
	DestinationFundingSourceURL string
	Amount                      string
}

// Transfer is the provider handle for a created transfer.
type Transfer struct {
	URL string `json:"url"`
}

type transferRequest struct {
	Links  map[string]link `json:"_links"`
	Amount amount          `json:"amount"`
}

type link struct {
	Href string `json:"href"`
}

type amount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

type fundingSourceRequest struct {
	PlaidToken string `json:"plaidToken"`
	Name       string `json:"name"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// apiError carries the provider's embedded error body.
type apiError struct {
	Status int
	Code   string `json:"code"`
	Detail string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("dwolla api error (%d %s): %s", e.Status, e.Code, e.Detail)
	}
	return fmt.Sprintf("dwolla api error: status %d", e.Status)
}

// CreateTransfer moves funds between two funding sources. No retry is
// attempted; any failure is returned to the caller as-is.
func (c *Client) CreateTransfer(ctx context.Context, params TransferParams) (*Transfer, error) {
	payload := transferRequest{
		Links: map[string]link{
			"source":      {Href: params.SourceFundingSourceURL},
			"destination": {Href: params.DestinationFundingSourceURL},
		},
		Amount: amount{Currency: "USD", Value: params.Amount},
	}

	location, err := c.post(ctx, c.BaseURL+"/transfers", payload)
	if err != nil {
		return nil, err
	}

	return &Transfer{URL: location}, nil
}

// CreateFundingSource attaches a bank account to a provider customer using
// an aggregator processor token. It returns the funding source URL.
func (c *Client) CreateFundingSource(ctx context.Context, customerURL, processorToken, name string) (string, error) {
	payload := fundingSourceRequest{
		PlaidToken: processorToken,
		Name:       name,
	}

	return c.post(ctx, customerURL+"/funding-sources", payload)
}

// post sends an authenticated HAL request and returns the Location header of
// the created resource.
func (c *Client) post(ctx context.Context, endpoint string, payload interface{}) (string, error) {
	token, err := c.token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to authenticate with dwolla: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", contentTypeHAL)
	req.Header.Set("Accept", contentTypeHAL)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.Unmarshal(respBody, apiErr)
		return "", apiErr
	}

	return resp.Header.Get("Location"), nil
}

// token returns a cached client-credentials token, refreshing it shortly
// before expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.Key, c.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.accessToken = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - time.Minute)

	return c.accessToken, nil
}
