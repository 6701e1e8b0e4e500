/**
 * @description
 * This package provides a client for the bank-link aggregation provider's
 * API (Plaid-shaped). It encapsulates the token lifecycle the linking flow
 * depends on: link token creation, the public-token exchange, account
 * metadata fetches, and processor token minting.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net/http, time: Standard Go libraries.
 *
 * @notes
 * - The provider authenticates requests by client_id/secret fields inside the
 *   JSON body rather than a header, so every request struct embeds them via
 *   the client's do helper.
 */
package plaidclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client is a client for the aggregation provider's API.
type Client struct {
	baseURL    string
	clientID   string
	secret     string
	httpClient *http.Client
}

// NewClient creates a new aggregation provider client.
func NewClient(baseURL, clientID, secret string) *Client {
	return &Client{
		baseURL:  baseURL,
		clientID: clientID,
		secret:   secret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Balances holds the provider's view of an account's balances. Pointers
// distinguish "zero" from "not reported".
type Balances struct {
	Available *float64 `json:"available"`
	Current   *float64 `json:"current"`
}

// Account is one account attached to a linked item.
type Account struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	Mask         string   `json:"mask"`
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
	Balances     Balances `json:"balances"`
}

// ExchangeResult is the durable credential pair returned by the public-token
// exchange.
type ExchangeResult struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

type linkTokenRequest struct {
	ClientID     string   `json:"client_id"`
	Secret       string   `json:"secret"`
	ClientName   string   `json:"client_name"`
	Language     string   `json:"language"`
	CountryCodes []string `json:"country_codes"`
	Products     []string `json:"products"`
	User         struct {
		ClientUserID string `json:"client_user_id"`
	} `json:"user"`
}

type linkTokenResponse struct {
	LinkToken string `json:"link_token"`
}

// CreateLinkToken requests a short-lived link token that the frontend uses to
// open the provider's link flow for the given user.
func (c *Client) CreateLinkToken(ctx context.Context, clientUserID, clientName string) (string, error) {
	req := linkTokenRequest{
		ClientID:     c.clientID,
		Secret:       c.secret,
		ClientName:   clientName,
		Language:     "en",
		CountryCodes: []string{"US"},
		Products:     []string{"auth"},
	}
	req.User.ClientUserID = clientUserID

	var resp linkTokenResponse
	if err := c.do(ctx, "/link/token/create", req, &resp); err != nil {
		return "", err
	}
	return resp.LinkToken, nil
}

type exchangeRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	PublicToken string `json:"public_token"`
}

// ExchangePublicToken swaps a single-use public token for a durable access
// token and the item id it belongs to.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error) {
	req := exchangeRequest{ClientID: c.clientID, Secret: c.secret, PublicToken: publicToken}
	var resp ExchangeResult
	if err := c.do(ctx, "/item/public_token/exchange", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type accountsRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
}

type accountsResponse struct {
	Accounts []Account `json:"accounts"`
}

// GetAccounts fetches the account metadata attached to an access token.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	req := accountsRequest{ClientID: c.clientID, Secret: c.secret, AccessToken: accessToken}
	var resp accountsResponse
	if err := c.do(ctx, "/accounts/get", req, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

type processorTokenRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
	AccountID   string `json:"account_id"`
	Processor   string `json:"processor"`
}

type processorTokenResponse struct {
	ProcessorToken string `json:"processor_token"`
}

// CreateProcessorToken mints a token scoped to the payments-processor
// integration for one account on a linked item.
func (c *Client) CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error) {
	req := processorTokenRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: accessToken,
		AccountID:   accountID,
		Processor:   processor,
	}
	var resp processorTokenResponse
	if err := c.do(ctx, "/processor/token/create", req, &resp); err != nil {
		return "", err
	}
	return resp.ProcessorToken, nil
}

// do posts a JSON body to the given path and decodes the response.
func (c *Client) do(ctx context.Context, path string, body, target interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("aggregation provider request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Aggregation provider returned non-success status code %d for %s: %s", resp.StatusCode, path, string(respBody))
		return fmt.Errorf("aggregation provider error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	if target != nil {
		if err := json.Unmarshal(respBody, target); err != nil {
			return fmt.Errorf("failed to unmarshal response body: %w", err)
		}
	}
	return nil
}
