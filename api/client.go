package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/finsight/finsight"
)

// Interface compliance check.
var _ finsight.Backend = (*Client)(nil)

// Client talks to the FinSIGHT backend. It owns a cookie jar so Django's
// session and csrftoken cookies survive across requests.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client. A cookie jar is attached
// when the client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a FinSIGHT API [Client] with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
	}
	for _, o := range opts {
		o(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.httpClient.Jar == nil {
		// cookiejar.New never fails with nil options.
		jar, _ := cookiejar.New(nil)
		c.httpClient.Jar = jar
	}
	return c
}

// StartChat creates a new chat session.
func (c *Client) StartChat(ctx context.Context) (finsight.ChatStart, error) {
	var out chatStartResponse
	if err := c.post(ctx, chatStartPath, nil, &out); err != nil {
		return finsight.ChatStart{}, err
	}
	return finsight.ChatStart{SessionID: out.SessionID, Initial: out.Initial}, nil
}

// SendChat sends message to an existing session and returns the
// assistant's reply.
func (c *Client) SendChat(ctx context.Context, sessionID, message string) (string, error) {
	var out chatMessageResponse
	path := fmt.Sprintf(chatMessagePath, url.PathEscape(sessionID))
	if err := c.post(ctx, path, chatMessageRequest{Message: message}, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// SyncTransactions asks the backend to pull fresh transactions from the
// bank aggregator. force requests a full resync regardless of the last
// sync date.
func (c *Client) SyncTransactions(ctx context.Context, force bool) (finsight.SyncResult, error) {
	var out syncResponse
	if err := c.post(ctx, syncPath, syncRequest{ForceSync: force}, &out); err != nil {
		return finsight.SyncResult{}, err
	}
	if !out.Success {
		return finsight.SyncResult{}, &finsight.BackendError{StatusCode: http.StatusBadRequest, Message: out.Error}
	}
	return finsight.SyncResult{
		TransactionsAdded:   out.TransactionsAdded,
		TransactionsUpdated: out.TransactionsUpdated,
		SyncDate:            out.SyncDate,
	}, nil
}

// Dashboard fetches the full dashboard snapshot.
func (c *Client) Dashboard(ctx context.Context) (finsight.Snapshot, error) {
	var out finsight.Snapshot
	if err := c.get(ctx, dashboardPath, &out); err != nil {
		return finsight.Snapshot{}, err
	}
	return out, nil
}

// ConfirmRecurring resolves a pending recurring-payment confirmation.
// action is [finsight.ActionConfirm] or [finsight.ActionReject]; the returned text
// describes the outcome.
func (c *Client) ConfirmRecurring(ctx context.Context, id int, action string) (string, error) {
	var out confirmResponse
	path := fmt.Sprintf(confirmPath, id)
	if err := c.post(ctx, path, confirmRequest{Action: action}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// GenerateInsight asks the backend for a fresh AI monthly summary.
func (c *Client) GenerateInsight(ctx context.Context) (string, error) {
	var out insightResponse
	if err := c.post(ctx, insightsPath, nil, &out); err != nil {
		return "", err
	}
	if !out.Success {
		return "", &finsight.BackendError{StatusCode: http.StatusInternalServerError, Message: out.Error}
	}
	return out.Insight, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.csrfToken(); token != "" {
		req.Header.Set(csrfHeaderName, token)
	}
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 {
		return parseHTTPError(resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("api: HTTP %d: %w", resp.StatusCode, err)
	}
	return nil
}

// csrfToken returns the csrftoken cookie value for the backend origin,
// or empty when the backend has not set one yet.
func (c *Client) csrfToken() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	for _, ck := range c.httpClient.Jar.Cookies(u) {
		if ck.Name == csrfCookieName {
			return ck.Value
		}
	}
	return ""
}

// parseHTTPError maps a failure response onto [*finsight.BackendError]
// when the body carries the backend's {"error": ...} envelope.
func parseHTTPError(status int, body []byte) error {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return &finsight.BackendError{StatusCode: status, Message: envelope.Error}
	}
	return fmt.Errorf("api: HTTP %d: %s", status, string(body))
}
