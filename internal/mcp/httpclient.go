package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/veloform/veloform/internal/coach"
	"github.com/veloform/veloform/internal/models"
	"github.com/veloform/veloform/internal/storage"
)

// HTTPClient implements DataSource by calling the Veloform REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func athletePath(athleteID int, suffix string) string {
	return "/api/v1/athletes/" + strconv.Itoa(athleteID) + suffix
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) MetabolicProfile(ctx context.Context, athleteID int) (*coach.MetabolicResult, error) {
	body, err := c.get(ctx, athletePath(athleteID, "/metabolic"), nil)
	if err != nil {
		return nil, err
	}

	var result coach.MetabolicResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("httpclient: decode metabolic profile: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) ZoneTable(ctx context.Context, athleteID int) (*coach.ZonesResult, error) {
	body, err := c.get(ctx, athletePath(athleteID, "/zones"), nil)
	if err != nil {
		return nil, err
	}

	var result coach.ZonesResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("httpclient: decode zones: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) TrainingLoad(ctx context.Context, athleteID, days int) (*coach.LoadResult, error) {
	params := url.Values{}
	params.Set("days", strconv.Itoa(days))

	body, err := c.get(ctx, athletePath(athleteID, "/load"), params)
	if err != nil {
		return nil, err
	}

	var result coach.LoadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("httpclient: decode training load: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) DailyReadiness(ctx context.Context, athleteID int, day time.Time) (*coach.ReadinessResult, error) {
	params := url.Values{}
	params.Set("date", day.Format("2006-01-02"))

	body, err := c.get(ctx, athletePath(athleteID, "/readiness"), params)
	if err != nil {
		return nil, err
	}

	var result coach.ReadinessResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("httpclient: decode readiness: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) QuerySessions(ctx context.Context, athleteID int, start, end time.Time) ([]models.SessionRow, error) {
	body, err := c.get(ctx, athletePath(athleteID, "/sessions"), timeParams(start, end))
	if err != nil {
		return nil, err
	}

	var sessions []models.SessionRow
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, fmt.Errorf("httpclient: decode sessions: %w", err)
	}
	return sessions, nil
}

func (c *HTTPClient) BiometricSeries(ctx context.Context, athleteID int, metricName string, start, end time.Time) ([]storage.BiometricSeries, error) {
	params := timeParams(start, end)
	params.Set("metric", metricName)
	params.Set("agg", "daily")

	body, err := c.get(ctx, athletePath(athleteID, "/biometrics"), params)
	if err != nil {
		return nil, err
	}

	var points []storage.BiometricSeries
	if err := json.Unmarshal(body, &points); err != nil {
		return nil, fmt.Errorf("httpclient: decode biometric series: %w", err)
	}
	return points, nil
}

func (c *HTTPClient) LatestBiometrics(ctx context.Context, athleteID int) ([]models.BiometricRow, error) {
	body, err := c.get(ctx, athletePath(athleteID, "/biometrics/latest"), nil)
	if err != nil {
		return nil, err
	}

	var rows []models.BiometricRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode latest biometrics: %w", err)
	}
	return rows, nil
}

func (c *HTTPClient) PowerCurve(ctx context.Context, athleteID int) ([]models.PowerTestRow, error) {
	body, err := c.get(ctx, athletePath(athleteID, "/power-curve"), nil)
	if err != nil {
		return nil, err
	}

	var curve []models.PowerTestRow
	if err := json.Unmarshal(body, &curve); err != nil {
		return nil, fmt.Errorf("httpclient: decode power curve: %w", err)
	}
	return curve, nil
}

func (c *HTTPClient) DataStats(ctx context.Context, athleteID int) (*storage.DataStats, error) {
	body, err := c.get(ctx, athletePath(athleteID, "/stats"), nil)
	if err != nil {
		return nil, err
	}

	var stats storage.DataStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode data stats: %w", err)
	}
	return &stats, nil
}

func (c *HTTPClient) AllowedMetrics(ctx context.Context) ([]storage.AllowedMetric, error) {
	body, err := c.get(ctx, "/api/v1/allowlist", nil)
	if err != nil {
		return nil, err
	}

	var metrics []storage.AllowedMetric
	if err := json.Unmarshal(body, &metrics); err != nil {
		return nil, fmt.Errorf("httpclient: decode allowlist: %w", err)
	}
	return metrics, nil
}
