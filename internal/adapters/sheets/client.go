package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/repstats/repstats/pkg/metrics"
)

const (
	defaultTimeout = 15 * time.Second
	maxRedirects   = 3

	// Responses larger than this are malformed for our row windows.
	maxResponseBytes = 8 << 20
)

// Client reads ranges over a Google-Sheets-style values API:
//
//	GET {base}/v4/spreadsheets/{id}/values/{range}?key=...
//	GET {base}/v4/spreadsheets/{id}/values:batchGet?ranges=...&key=...
//
// The API key is injected as a query parameter on every request.
type Client struct {
	baseURL       string
	spreadsheetID string
	apiKey        string
	httpClient    *http.Client
}

// NewClient creates a range reader for one spreadsheet.
func NewClient(spreadsheetID string, opts ...Option) *Client {
	c := &Client{
		baseURL:       "https://sheets.googleapis.com",
		spreadsheetID: spreadsheetID,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// valueRange mirrors the response envelope for a single range.
type valueRange struct {
	Range  string  `json:"range"`
	Values [][]any `json:"values"`
}

// batchEnvelope mirrors the batchGet response envelope.
type batchEnvelope struct {
	ValueRanges []valueRange `json:"valueRanges"`
}

// ReadRange fetches one rectangular region. A region with no written
// cells yields an empty grid, not an error.
func (c *Client) ReadRange(ctx context.Context, spec RangeSpec) (Grid, error) {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(spec.String()))

	var envelope valueRange
	if err := c.get(ctx, endpoint, nil, &envelope); err != nil {
		metrics.RecordRemoteReadError("range")
		return nil, fmt.Errorf("%w: range %s: %v", ErrRemoteRead, spec, err)
	}
	metrics.RecordRemoteRead("range")
	return toGrid(envelope.Values), nil
}

// ReadRangesBatch fetches several regions in one round-trip. Grids come
// back in request order; regions absent from the response are empty.
func (c *Client) ReadRangesBatch(ctx context.Context, specs []RangeSpec) ([]Grid, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values:batchGet",
		c.baseURL, url.PathEscape(c.spreadsheetID))

	params := url.Values{}
	for _, spec := range specs {
		params.Add("ranges", spec.String())
	}

	var envelope batchEnvelope
	if err := c.get(ctx, endpoint, params, &envelope); err != nil {
		metrics.RecordRemoteReadError("batch")
		return nil, fmt.Errorf("%w: batch of %d ranges: %v", ErrRemoteRead, len(specs), err)
	}
	metrics.RecordRemoteRead("batch")

	grids := make([]Grid, len(specs))
	for i := range specs {
		if i < len(envelope.ValueRanges) {
			grids[i] = toGrid(envelope.ValueRanges[i].Values)
		} else {
			grids[i] = Grid{}
		}
	}
	return grids, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	target := endpoint
	if encoded := params.Encode(); encoded != "" {
		target += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed response: %v", err)
	}
	return nil
}

// toGrid stringifies the raw envelope cells. The values API renders
// numbers as JSON numbers and everything else as strings.
func toGrid(values [][]any) Grid {
	grid := make(Grid, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = cellString(cell)
		}
		grid[i] = cells
	}
	return grid
}

func cellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
