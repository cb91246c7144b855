// Package client is the HTTP client for the assistant backend, used by
// the terminal frontend. Streaming responses are returned as raw readers;
// the caller feeds them through a frame decoder.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"ai-assistant-be/internal/dto"
)

type Client struct {
	BaseURL    string
	Token      string
	httpClient *http.Client
}

// NewClient builds a client for the given API base URL (e.g.
// "http://localhost:3000/api"). The HTTP client has no timeout: ask
// streams are open-ended and cancelled via context instead.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		httpClient: &http.Client{},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// StreamAsk opens the NDJSON stream for one question. The caller owns the
// returned body and must close it.
func (c *Client) StreamAsk(ctx context.Context, req *dto.AskStreamRequest) (io.ReadCloser, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/ask/v1/stream", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ask stream rejected: HTTP %d: %s", resp.StatusCode, string(body))
	}

	return resp.Body, nil
}

func (c *Client) CreateThread(ctx context.Context, firstMessage string) (*dto.CreateThreadResponse, error) {
	var res dto.CreateThreadResponse
	err := c.postJSON(ctx, "/thread/v1", &dto.CreateThreadRequest{FirstMessage: firstMessage}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetThreads(ctx context.Context) ([]dto.GetThreadsResponse, error) {
	var res []dto.GetThreadsResponse
	if err := c.getJSON(ctx, "/thread/v1", &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) GetTurns(ctx context.Context, threadId uuid.UUID) ([]dto.GetTurnsResponse, error) {
	var res []dto.GetTurnsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/thread/v1/%s/turns", threadId), &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) PersistTurn(ctx context.Context, threadId uuid.UUID, req *dto.PersistTurnRequest) (*dto.PersistTurnResponse, error) {
	var res dto.PersistTurnResponse
	err := c.postJSON(ctx, fmt.Sprintf("/thread/v1/%s/turns", threadId), req, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	c.setHeaders(req)
	return c.doJSON(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unexpected response (HTTP %d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		return fmt.Errorf("api error (HTTP %d): %s", resp.StatusCode, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
