package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sant0-9/policygen/internal/catalog"
	"github.com/sant0-9/policygen/internal/contract"
	"github.com/sant0-9/policygen/internal/i18n"
)

// Client calls a policygen server. Like the in-process action service it
// never fails: transport errors become the same substitute values.
type Client struct {
	baseURL    string
	httpClient *http.Client
	msgs       i18n.Messages
	logger     *zap.Logger
}

func NewClient(baseURL string, msgs i18n.Messages, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		msgs:   msgs,
		logger: logger,
	}
}

func (c *Client) GeneratePolicy(ctx context.Context, req contract.GenerationRequest) contract.GenerationResult {
	var res contract.GenerationResult
	if err := c.post(ctx, "/api/v1/actions/generate-policy", req, &res); err != nil {
		c.logger.Error("remote generate failed", zap.Error(err))
		return contract.GenerationResult{PrivacyPolicy: ""}
	}
	return res
}

func (c *Client) SummarizePolicy(ctx context.Context, req contract.SummaryRequest) contract.SummaryResult {
	var res contract.SummaryResult
	if err := c.post(ctx, "/api/v1/actions/summarize-policy", req, &res); err != nil || strings.TrimSpace(res.Summary) == "" {
		c.logger.Error("remote summarize failed", zap.Error(err))
		return contract.SummaryResult{Summary: c.msgs.SummaryFailed}
	}
	return res
}

func (c *Client) SuggestTemplate(ctx context.Context, req contract.SuggestionRequest) contract.SuggestionResult {
	var res contract.SuggestionResult
	if err := c.post(ctx, "/api/v1/actions/suggest-template", req, &res); err != nil {
		c.logger.Error("remote suggest failed", zap.Error(err))
		return contract.SuggestionResult{Reason: c.msgs.SuggestionFailed}
	}
	return res
}

// Templates fetches the server's catalog.
func (c *Client) Templates(ctx context.Context) ([]*catalog.Template, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/templates", nil)
	if err != nil {
		return nil, err
	}
	var out []*catalog.Template
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping checks the server's readiness endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/readyz", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
