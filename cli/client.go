package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"taskmind/models"
	"taskmind/version"
	"time"
)

// Client is the HTTP client for talking to the taskmind server
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new HTTP client. Task execution can take as long as
// the model does, so the timeout is generous.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// doRequest executes an HTTP request
func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("User-Agent", version.UserAgent("cli"))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}

	return resp, nil
}

// handleResponse decodes a 2xx body into result. Error bodies carry a
// "detail" field, which is surfaced when present.
func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Detail != "" {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiErr.Detail)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %v", err)
		}
	}

	return nil
}

func (c *Client) call(method, path string, body, result interface{}) error {
	resp, err := c.doRequest(method, path, body)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, result)
}

// Health is the subset of /api/health the CLI shows
type Health struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	DBHealthy   bool   `json:"db_healthy"`
	Provider    string `json:"provider"`
	ActiveModel string `json:"active_model"`
	Vector      string `json:"vector"`
	FineTuning  bool   `json:"fine_tuning"`
}

// HealthCheck fetches the health endpoint
func (c *Client) HealthCheck() (*Health, error) {
	var h Health
	if err := c.call(http.MethodGet, "/api/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Execute runs a task and returns the model response
func (c *Client) Execute(task string) (string, error) {
	var out struct {
		Result string `json:"result"`
	}
	if err := c.call(http.MethodPost, "/api/execute", models.TaskRequest{Task: task}, &out); err != nil {
		return "", err
	}
	return out.Result, nil
}

// SendFeedback stores feedback for a task/response pair
func (c *Client) SendFeedback(req models.FeedbackCreate) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.call(http.MethodPost, "/api/feedback", req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// History lists served tasks. pageSize 0 returns everything.
func (c *Client) History(page, pageSize int) ([]models.HistoryRead, error) {
	path := "/api/history"
	if pageSize > 0 {
		q := url.Values{}
		q.Set("page", fmt.Sprint(page))
		q.Set("page_size", fmt.Sprint(pageSize))
		path += "?" + q.Encode()
	}

	var out struct {
		History []models.HistoryRead `json:"history"`
	}
	if err := c.call(http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

// ListFeedback returns the latest feedback rows and the total count
func (c *Client) ListFeedback(limit int) ([]models.Feedback, int64, error) {
	var out struct {
		Feedback []models.Feedback `json:"feedback"`
		Total    int64             `json:"total"`
	}
	if err := c.call(http.MethodGet, fmt.Sprintf("/api/feedback?limit=%d", limit), nil, &out); err != nil {
		return nil, 0, err
	}
	return out.Feedback, out.Total, nil
}

// StartFineTune asks the server to start a fine-tune run
func (c *Client) StartFineTune() (*models.FineTuneRun, error) {
	var run models.FineTuneRun
	if err := c.call(http.MethodPost, "/api/finetune", nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// FineTuneRuns lists recent runs
func (c *Client) FineTuneRuns() ([]models.FineTuneRun, bool, error) {
	var out struct {
		Runs    []models.FineTuneRun `json:"runs"`
		Running bool                 `json:"running"`
	}
	if err := c.call(http.MethodGet, "/api/finetune/runs", nil, &out); err != nil {
		return nil, false, err
	}
	return out.Runs, out.Running, nil
}

// Crawl triggers a news crawl and returns how many items were ingested
func (c *Client) Crawl() (int, error) {
	var out struct {
		Ingested int `json:"ingested"`
	}
	if err := c.call(http.MethodPost, "/api/knowledge/crawl", nil, &out); err != nil {
		return 0, err
	}
	return out.Ingested, nil
}
