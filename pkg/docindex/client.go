// Package docindex is the HTTP client for the external document/email
// index service. The index is a black box: it accepts a query and a
// source-type filter and returns scored results. Which score fields it
// fills (textRank, hybridScore) is its own business; absent scores stay
// null all the way through.
package docindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	BaseURL    string
	ApiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		ApiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type searchRequest struct {
	UserId string   `json:"user_id"`
	Query  string   `json:"query"`
	Types  []string `json:"types,omitempty"`
	Limit  int      `json:"limit,omitempty"`
}

// IndexResult mirrors one row from the index service.
type IndexResult struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Type        string   `json:"type"`
	Snippet     string   `json:"snippet"`
	From        string   `json:"from,omitempty"`
	TextRank    *float64 `json:"text_rank"`
	HybridScore *float64 `json:"hybrid_score"`
}

type searchResponse struct {
	Results []IndexResult `json:"results"`
}

// Search queries the index with the enabled source-type filter.
func (c *Client) Search(ctx context.Context, userId, query string, types []string, limit int) ([]IndexResult, error) {
	reqBody := searchRequest{
		UserId: userId,
		Query:  query,
		Types:  types,
		Limit:  limit,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/search", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.ApiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.ApiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	resByte, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error from index response, code %d, body %s", resp.StatusCode, string(resByte))
	}

	var res searchResponse
	if err := json.Unmarshal(resByte, &res); err != nil {
		return nil, err
	}
	return res.Results, nil
}
