// Package github consumes the Copilot usage and billing endpoints of the
// GitHub API. All payloads are decoded into explicit tagged schemas at this
// boundary; untyped data never crosses into the services.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/santobu/copilot-metrics-dashboard/internal/config"
	"github.com/santobu/copilot-metrics-dashboard/internal/models"
)

const (
	headerAccept     = "application/vnd.github+json"
	defaultBaseURL   = "https://api.github.com"
	defaultTimeout   = 30 * time.Second
	headerAPIVersion = "X-GitHub-Api-Version"
)

// Client issues authenticated requests against the GitHub API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	apiVersion string
}

// NewClient constructs a client from the github configuration block.
func NewClient(cfg config.GitHubConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      cfg.Token,
		apiVersion: cfg.APIVersion,
	}
}

// Usage fetches the daily usage payload for a scope. The endpoint is a single
// page; no pagination applies.
func (c *Client) Usage(ctx context.Context, scope models.Scope) ([]models.UsageRecord, error) {
	url := fmt.Sprintf("%s/orgs/%s/copilot/usage", c.baseURL, scope.Name)
	if scope.IsEnterprise() {
		url = fmt.Sprintf("%s/enterprises/%s/copilot/usage", c.baseURL, scope.Name)
	}

	body, _, err := c.get(ctx, scope, url)
	if err != nil {
		return nil, err
	}

	var days []usageDay
	if err := json.Unmarshal(body, &days); err != nil {
		return nil, &TransportError{Scope: scope.String(), Err: fmt.Errorf("decode usage payload: %w", err)}
	}

	records := make([]models.UsageRecord, 0, len(days))
	for _, day := range days {
		rec, err := day.toRecord(scope)
		if err != nil {
			return nil, &TransportError{Scope: scope.String(), Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}

// EnterpriseSeats walks the paginated enterprise billing seats endpoint and
// returns the upstream-reported seat total with every assigned seat. On any
// page failure the accumulated pages are discarded so the total never
// disagrees with a truncated list.
func (c *Client) EnterpriseSeats(ctx context.Context, scope models.Scope) (int64, []models.Seat, error) {
	var (
		total int64
		seats []models.Seat
	)
	url := fmt.Sprintf("%s/enterprises/%s/copilot/billing/seats", c.baseURL, scope.Name)
	err := c.paginate(ctx, scope, url, func(body []byte) error {
		var page seatsPage
		if err := json.Unmarshal(body, &page); err != nil {
			return &TransportError{Scope: scope.String(), Err: fmt.Errorf("decode seats page: %w", err)}
		}
		total = page.TotalSeats
		for _, seat := range page.Seats {
			seats = append(seats, seat.toSeat())
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return total, seats, nil
}

// OrganizationBilling fetches the single-page organization billing payload.
func (c *Client) OrganizationBilling(ctx context.Context, scope models.Scope) (OrgBilling, error) {
	url := fmt.Sprintf("%s/orgs/%s/copilot/billing", c.baseURL, scope.Name)
	body, _, err := c.get(ctx, scope, url)
	if err != nil {
		return OrgBilling{}, err
	}
	var billing OrgBilling
	if err := json.Unmarshal(body, &billing); err != nil {
		return OrgBilling{}, &TransportError{Scope: scope.String(), Err: fmt.Errorf("decode billing payload: %w", err)}
	}
	return billing, nil
}

// paginate GETs url and every Link rel="next" successor, handing each response
// body to onPage. Pages are fetched sequentially; a missing or malformed Link
// header ends the walk without error.
func (c *Client) paginate(ctx context.Context, scope models.Scope, url string, onPage func([]byte) error) error {
	for url != "" {
		body, header, err := c.get(ctx, scope, url)
		if err != nil {
			return err
		}
		if err := onPage(body); err != nil {
			return err
		}
		url = nextLink(header.Get("Link"))
	}
	return nil
}

func (c *Client) get(ctx context.Context, scope models.Scope, url string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, &TransportError{Scope: scope.String(), Err: err}
	}
	req.Header.Set("Accept", headerAccept)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set(headerAPIVersion, c.apiVersion)
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &TransportError{Scope: scope.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &TransportError{Scope: scope.String(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &UpstreamError{Scope: scope.String(), StatusCode: resp.StatusCode}
	}
	return body, resp.Header, nil
}
