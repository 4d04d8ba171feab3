// Package razorpay creates payment orders against the Razorpay Orders API.
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const defaultBaseURL = "https://api.razorpay.com"

type Provider struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewProvider(keyID, keySecret, baseURL string, client *http.Client) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Provider{keyID: keyID, keySecret: keySecret, baseURL: baseURL, client: client}
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID string `json:"id"`
}

func (p *Provider) CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (string, error) {
	payload, err := json.Marshal(orderRequest{Amount: amountMinorUnits, Currency: currency, Receipt: receipt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.keyID, p.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("razorpay: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("razorpay: status %d", resp.StatusCode)
	}

	var body orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("razorpay: decode: %w", err)
	}
	if body.ID == "" {
		return "", fmt.Errorf("razorpay: response missing order id")
	}
	return body.ID, nil
}
