/**
 * @description
 * This package provides a client for the payments processor's API
 * (Dwolla-shaped). It covers the three operations the core needs: customer
 * creation at sign-up, funding-source creation during account linking, and
 * funds transfers between funding sources.
 *
 * Key features:
 * - Created resources are identified by the Location header of a 201
 *   response rather than a response body.
 * - Every write carries an Idempotency-Key header so client-side retries do
 *   not duplicate processor resources.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net/http, strings, time: Standard Go libraries.
 * - github.com/google/uuid: Idempotency keys.
 * - github.com/shopspring/decimal: transfer amounts.
 */
package dwollaclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client is a client for the payments processor's API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new payments processor client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CustomerRequest carries the fields required to register a personal
// customer with the processor.
type CustomerRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Type        string `json:"type"`
	Address1    string `json:"address1"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	DateOfBirth string `json:"dateOfBirth"`
	SSN         string `json:"ssn"`
}

// CreateCustomer registers a customer and returns the processor's resource
// URL for it.
func (c *Client) CreateCustomer(ctx context.Context, req CustomerRequest) (string, error) {
	if req.Type == "" {
		req.Type = "personal"
	}
	return c.create(ctx, "/customers", req)
}

type fundingSourceRequest struct {
	PlaidToken string `json:"plaidToken"`
	Name       string `json:"name"`
}

// CreateFundingSource attaches a bank account to a customer using a
// processor token and returns the funding source URL.
func (c *Client) CreateFundingSource(ctx context.Context, customerID, processorToken, bankName string) (string, error) {
	path := fmt.Sprintf("/customers/%s/funding-sources", customerID)
	return c.create(ctx, path, fundingSourceRequest{PlaidToken: processorToken, Name: bankName})
}

type transferRequest struct {
	Links struct {
		Source struct {
			Href string `json:"href"`
		} `json:"source"`
		Destination struct {
			Href string `json:"href"`
		} `json:"destination"`
	} `json:"_links"`
	Amount struct {
		Currency string `json:"currency"`
		Value    string `json:"value"`
	} `json:"amount"`
}

// CreateTransfer moves funds between two funding sources and returns the
// transfer resource URL.
func (c *Client) CreateTransfer(ctx context.Context, sourceFundingURL, destinationFundingURL string, amount decimal.Decimal) (string, error) {
	var req transferRequest
	req.Links.Source.Href = sourceFundingURL
	req.Links.Destination.Href = destinationFundingURL
	req.Amount.Currency = "USD"
	req.Amount.Value = amount.StringFixed(2)
	return c.create(ctx, "/transfers", req)
}

// ExtractCustomerID returns the trailing path segment of a processor
// customer URL, which is the customer id.
func ExtractCustomerID(customerURL string) string {
	trimmed := strings.TrimRight(customerURL, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// create posts a JSON body and returns the Location header of the created
// resource.
func (c *Client) create(ctx context.Context, path string, body interface{}) (string, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/vnd.dwolla.v1.hal+json")
	req.Header.Set("Accept", "application/vnd.dwolla.v1.hal+json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("payments processor request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Payments processor returned non-success status code %d for %s: %s", resp.StatusCode, path, string(respBody))
		return "", fmt.Errorf("payments processor error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("payments processor response for %s is missing the Location header", path)
	}
	return location, nil
}
