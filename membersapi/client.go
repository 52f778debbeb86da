// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package membersapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultBaseURL       = "https://members-api.parliament.uk"
	DefaultRetryMax      = 5
	DefaultBackoffFactor = 500 * time.Millisecond
	DefaultTimeout       = 30 * time.Second
	DefaultUserAgent     = "parlmembers"

	// PageSize is the largest page the search endpoint will return
	PageSize = 20

	HouseCommons = 1
	HouseLords   = 2

	// maxResponseBytes limits JSON API responses to 10 MiB
	maxResponseBytes = 10 << 20
)

// ErrNoData is returned when the API answers with a non-200 status after all
// retries. Callers treat it as "no data for this request" and skip it.
var ErrNoData = errors.New("no data returned")

// ErrInvalidHouse is returned for a house other than 1 (Commons) or 2 (Lords)
var ErrInvalidHouse = errors.New("house must be 1 (Commons) or 2 (Lords)")

// Client is an HTTP client for the UK Parliament Members API
type Client struct {
	httpClient    *retryablehttp.Client
	logger        *slog.Logger
	promRegistry  prometheus.Registerer
	metrics       *clientMetrics
	headers       map[string]string
	baseURL       string
	userAgent     string
	retryMax      int
	backoffFactor time.Duration
	timeout       time.Duration
}

// ClientOption is a functional option for configuring a Client
type ClientOption func(*Client)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) ClientOption {
	return func(c *Client) {
		c.promRegistry = registry
	}
}

// WithHeaders adds extra headers to every request
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		maps.Copy(c.headers, headers)
	}
}

func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryMax sets how many times a failed request is retried
func WithRetryMax(retryMax int) ClientOption {
	return func(c *Client) {
		c.retryMax = retryMax
	}
}

// WithBackoffFactor sets the base of the exponential backoff between retries.
// The nth retry waits factor * 2^(n-1).
func WithBackoffFactor(factor time.Duration) ClientOption {
	return func(c *Client) {
		c.backoffFactor = factor
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// NewClient creates a new Members API client. The baseURL is the scheme and
// host of the API, e.g. "https://members-api.parliament.uk".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		headers:       make(map[string]string),
		userAgent:     DefaultUserAgent,
		retryMax:      DefaultRetryMax,
		backoffFactor: DefaultBackoffFactor,
		timeout:       DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	rc := retryablehttp.NewClient()
	rc.Logger = c.logger
	rc.RetryMax = c.retryMax
	rc.RetryWaitMin = c.backoffFactor
	rc.RetryWaitMax = c.backoffFactor << 6
	rc.Backoff = c.backoff
	// Hand the last response back to us instead of turning it into an error
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.HTTPClient.Timeout = c.timeout
	c.httpClient = rc
	if c.promRegistry != nil {
		c.metrics = newClientMetrics(c.promRegistry)
	}
	return c
}

// backoff waits factor * 2^attempt, honouring Retry-After on 429 and 503
func (c *Client) backoff(
	minWait, maxWait time.Duration,
	attempt int,
	resp *http.Response,
) time.Duration {
	if resp != nil &&
		(resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusServiceUnavailable) {
		if resp.Header.Get("Retry-After") != "" {
			return retryablehttp.DefaultBackoff(minWait, maxWait, attempt, resp)
		}
	}
	wait := time.Duration(float64(c.backoffFactor) * math.Pow(2, float64(attempt)))
	if wait > maxWait {
		wait = maxWait
	}
	return wait
}

// Close releases idle connections held by the underlying transport
func (c *Client) Close() {
	c.httpClient.HTTPClient.CloseIdleConnections()
}

func validateHouse(house int) error {
	if house != HouseCommons && house != HouseLords {
		return fmt.Errorf("%w: got %d", ErrInvalidHouse, house)
	}
	return nil
}

// SearchMembers fetches one page of members of a house starting at the given
// offset. A nil currentOnly returns both current and former members.
func (c *Client) SearchMembers(
	ctx context.Context,
	house int,
	currentOnly *bool,
	skip int,
) (*SearchResult, error) {
	if err := validateHouse(house); err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("House", strconv.Itoa(house))
	if currentOnly != nil {
		query.Set("IsCurrentMember", strconv.FormatBool(*currentOnly))
	}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("take", strconv.Itoa(PageSize))
	var ret SearchResult
	if err := c.getJSON(ctx, "search", "/api/Members/Search?"+query.Encode(), &ret); err != nil {
		return nil, fmt.Errorf("searching members of house %d at offset %d: %w", house, skip, err)
	}
	return &ret, nil
}

// SearchAllMembers pages through every member of a house. The first page
// gives the total result count which drives the remaining requests. Pages
// for which the API returns no data are logged and skipped.
func (c *Client) SearchAllMembers(
	ctx context.Context,
	house int,
	currentOnly *bool,
) ([]*SearchResult, error) {
	first, err := c.SearchMembers(ctx, house, currentOnly, 0)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			c.logger.Warn(
				"no data for first search page, skipping house",
				"component", "membersapi",
				"house", house,
				"error", err,
			)
			return nil, nil
		}
		return nil, err
	}
	pages := []*SearchResult{first}
	pageCount := (first.TotalResults + PageSize - 1) / PageSize
	for i := 1; i < pageCount; i++ {
		page, err := c.SearchMembers(ctx, house, currentOnly, i*PageSize)
		if err != nil {
			if errors.Is(err, ErrNoData) {
				c.logger.Warn(
					"no data for search page, skipping",
					"component", "membersapi",
					"house", house,
					"skip", i*PageSize,
					"error", err,
				)
				continue
			}
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// MemberHistory fetches the name, party and house membership history of a
// single member
func (c *Client) MemberHistory(
	ctx context.Context,
	id int,
) (*MemberHistory, error) {
	var items []HistoryItem
	reqPath := "/api/Members/History?ids=" + strconv.Itoa(id)
	if err := c.getJSON(ctx, "history", reqPath, &items); err != nil {
		return nil, fmt.Errorf("getting history of member %d: %w", id, err)
	}
	for _, item := range items {
		if item.Value != nil && item.Value.ID == id {
			return item.Value, nil
		}
	}
	return nil, fmt.Errorf("getting history of member %d: %w", id, ErrNoData)
}

// StateOfTheParties fetches the party composition of a house on a date
func (c *Client) StateOfTheParties(
	ctx context.Context,
	house int,
	date time.Time,
) (*StateOfThePartiesResult, error) {
	if err := validateHouse(house); err != nil {
		return nil, err
	}
	reqPath := fmt.Sprintf(
		"/api/parties/stateOfTheParties/%d/%s",
		house,
		date.Format("2006-01-02"),
	)
	var ret StateOfThePartiesResult
	if err := c.getJSON(ctx, "stateOfTheParties", reqPath, &ret); err != nil {
		return nil, fmt.Errorf(
			"getting state of the parties for house %d on %s: %w",
			house,
			date.Format("2006-01-02"),
			err,
		)
	}
	return &ret, nil
}

func (c *Client) getJSON(
	ctx context.Context,
	endpoint string,
	reqPath string,
	dest any,
) error {
	body, err := c.doGet(ctx, endpoint, c.baseURL+reqPath)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(dest); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// doGet performs an HTTP GET request and returns the response body.
// The caller is responsible for closing the returned ReadCloser.
func (c *Client) doGet(
	ctx context.Context,
	endpoint string,
	reqURL string,
) (io.ReadCloser, error) {
	req, err := retryablehttp.NewRequestWithContext(
		ctx,
		http.MethodGet,
		reqURL,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	if resp == nil || resp.Body == nil {
		return nil, errors.New("nil response from server")
	}
	c.logger.Debug(
		fmt.Sprintf("status code %d for url %s", resp.StatusCode, reqURL),
		"component", "membersapi",
	)
	if c.metrics != nil {
		c.metrics.requests.WithLabelValues(
			endpoint,
			strconv.Itoa(resp.StatusCode),
		).Inc()
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(
			io.LimitReader(resp.Body, 1024),
		)
		return nil, fmt.Errorf(
			"%w: unexpected status %d: %s",
			ErrNoData,
			resp.StatusCode,
			string(bodyBytes),
		)
	}

	return &limitedReadCloser{
		Reader: io.LimitReader(resp.Body, maxResponseBytes),
		Closer: resp.Body,
	}, nil
}

// limitedReadCloser wraps a size-limited Reader with the
// underlying connection's Closer.
type limitedReadCloser struct {
	io.Reader
	io.Closer
}
