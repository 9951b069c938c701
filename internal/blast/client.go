// internal/blast/client.go
package blast

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a web BLAST endpoint over HTTP. The endpoint is injected so
// tests can point it at a fake server.
type Client struct {
	endpoint string
	hc       *http.Client
	logger   *slog.Logger
}

// NewClient returns a Client for the given endpoint URL.
func NewClient(endpoint string, logger *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		hc:       &http.Client{Timeout: 2 * time.Minute},
		logger:   logger,
	}
}

// Submit posts one search request (CMD=Put) and returns the parsed RID/RTOE.
func (c *Client) Submit(ctx context.Context, program, database string, query []byte) (Submission, error) {
	form := url.Values{
		"CMD":      {"Put"},
		"PROGRAM":  {program},
		"DATABASE": {database},
		"QUERY":    {string(query)},
	}
	body, err := c.post(ctx, form)
	if err != nil {
		return Submission{}, fmt.Errorf("submit search: %w", err)
	}
	sub, err := ParseSubmission(body)
	if err != nil {
		return sub, err
	}
	c.logger.Info("search submitted", "rid", sub.RID, "rtoe", sub.RTOE)
	return sub, nil
}

// CheckStatus issues one SearchInfo request for the given RID.
func (c *Client) CheckStatus(ctx context.Context, rid string) (Status, error) {
	form := url.Values{
		"CMD":           {"Get"},
		"FORMAT_OBJECT": {"SearchInfo"},
		"RID":           {rid},
	}
	body, err := c.post(ctx, form)
	if err != nil {
		return StatusUnknown, fmt.Errorf("check status: %w", err)
	}
	st, err := ParseStatus(body)
	if err != nil {
		return st, fmt.Errorf("check status: %w", err)
	}
	c.logger.Debug("status checked", "rid", rid, "status", string(st))
	return st, nil
}

// FetchReport retrieves the full XML alignment report for a READY search.
func (c *Client) FetchReport(ctx context.Context, rid string) ([]byte, error) {
	form := url.Values{
		"CMD":           {"Get"},
		"FORMAT_OBJECT": {"Alignment"},
		"FORMAT_TYPE":   {"XML"},
		"RID":           {rid},
	}
	body, err := c.post(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("fetch report: %w", err)
	}
	c.logger.Debug("report fetched", "rid", rid, "bytes", len(body))
	return []byte(body), nil
}

func (c *Client) post(ctx context.Context, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected HTTP status %s", c.endpoint, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
