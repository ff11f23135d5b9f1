package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// HTTPConfig configures the registry HTTP client.
type HTTPConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// httpClient implements Client against the registry's company profile API.
type httpClient struct {
	cfg  HTTPConfig
	http *http.Client
}

// NewHTTPClient creates a Client that queries the company registry over HTTP.
func NewHTTPClient(cfg HTTPConfig) Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
	}
}

// companyProfile is the subset of the registry's company response the
// engine reads.
type companyProfile struct {
	Accounts struct {
		NextAccounts struct {
			PeriodEndOn string `json:"period_end_on"`
		} `json:"next_accounts"`
	} `json:"accounts"`
}

func (c *httpClient) FetchAuthoritativePeriodEnd(ctx context.Context, companyRef string) (PeriodInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	url := c.cfg.Endpoint + "/company/" + companyRef
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return PeriodInfo{}, fmt.Errorf("creating registry request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.SetBasicAuth(c.cfg.APIKey, "")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil || isConnectionError(err) {
			return PeriodInfo{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return PeriodInfo{}, fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return PeriodInfo{}, fmt.Errorf("reading registry response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return PeriodInfo{}, fmt.Errorf("company %s: %w", companyRef, ErrNotFound)
	case resp.StatusCode >= 500:
		return PeriodInfo{}, fmt.Errorf("%w: registry returned status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return PeriodInfo{}, fmt.Errorf("registry returned status %d: %s", resp.StatusCode, string(body))
	}

	var profile companyProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return PeriodInfo{}, fmt.Errorf("decoding registry response: %w", err)
	}
	endStr := profile.Accounts.NextAccounts.PeriodEndOn
	if endStr == "" {
		return PeriodInfo{}, fmt.Errorf("company %s has no next accounting period: %w", companyRef, ErrNotFound)
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return PeriodInfo{}, fmt.Errorf("parsing registry period end %q: %w", endStr, err)
	}
	return PeriodInfo{PeriodEnd: end}, nil
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
