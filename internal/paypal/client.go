package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

var ErrSignatureInvalid = errors.New("webhook signature verification failed")

// Client talks to the PayPal REST API. Only the calls needed to check a
// webhook delivery are implemented.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	webhookID    string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(environment, clientID, clientSecret, webhookID string) *Client {
	baseURL := APIBaseSandbox
	if environment == EnvironmentLive {
		baseURL = APIBaseLive
	}

	return &Client{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		webhookID:    webhookID,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// WithBaseURL points the client at another API host.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tr tokenResponse
	if err := c.do(req, &tr); err != nil {
		return "", fmt.Errorf("oauth token: %w", err)
	}

	c.accessToken = tr.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenSkew)
	return c.accessToken, nil
}

type verifyRequest struct {
	AuthAlgo         string          `json:"auth_algo"`
	CertURL          string          `json:"cert_url"`
	TransmissionID   string          `json:"transmission_id"`
	TransmissionSig  string          `json:"transmission_sig"`
	TransmissionTime string          `json:"transmission_time"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

type verifyResponse struct {
	VerificationStatus string `json:"verification_status"`
}

// Verify asks PayPal whether body was delivered by it for the configured
// webhook. Any answer other than SUCCESS yields ErrSignatureInvalid.
func (c *Client) Verify(ctx context.Context, headers http.Header, body []byte) error {
	if headers.Get(HeaderTransmissionSig) == "" {
		return fmt.Errorf("%w: missing transmission headers", ErrSignatureInvalid)
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(verifyRequest{
		AuthAlgo:         headers.Get(HeaderAuthAlgo),
		CertURL:          headers.Get(HeaderCertURL),
		TransmissionID:   headers.Get(HeaderTransmissionID),
		TransmissionSig:  headers.Get(HeaderTransmissionSig),
		TransmissionTime: headers.Get(HeaderTransmissionTime),
		WebhookID:        c.webhookID,
		WebhookEvent:     json.RawMessage(body),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/notifications/verify-webhook-signature", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var vr verifyResponse
	if err := c.do(req, &vr); err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}
	if vr.VerificationStatus != "SUCCESS" {
		return fmt.Errorf("%w: status %s", ErrSignatureInvalid, vr.VerificationStatus)
	}
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
