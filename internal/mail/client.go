package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultAPIURL = "https://api.resend.com/emails"

// Client sends transactional email through an HTTP email API that takes a
// bearer key and a {from,to,subject,text} JSON body.
type Client struct {
	apiURL     string
	apiKey     string
	from       string
	httpClient *http.Client
}

func NewClient(apiURL, apiKey, from string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (c *Client) Send(ctx context.Context, to, subject, text string) error {
	body, err := json.Marshal(message{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("email API error: %s - %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}

func (c *Client) SendUsernameReminder(ctx context.Context, to, username string) error {
	text := "Hi,\n\nYou asked us to remind you of your username.\n\n" +
		"Your username is: " + username + "\n\n" +
		"If you did not request this, you can ignore this email.\n"
	return c.Send(ctx, to, "Your username", text)
}
