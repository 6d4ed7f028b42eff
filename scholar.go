// Package scholar fetches a Google Scholar profile page, extracts the citation
// metrics and publication list from it and persists them as a JSON snapshot.
package scholar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const BaseURL = "https://scholar.google.com"
const AGENT = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36"
const AcceptLanguage = "en-US,en;q=0.9"
const DefaultUser = "3aPgewgAAAAJ"

// Publication is a single row of the profile's work list.
type Publication struct {
	Title   string `json:"title"`
	CitedBy int    `json:"cited_by"`
}

// Metrics holds the summary statistics of a profile. The three scalar fields
// are always extracted together.
type Metrics struct {
	TotalCitations   int            `json:"total_citations"`
	HIndex           int            `json:"h_index"`
	I10Index         int            `json:"i10_index"`
	CitationsPerYear map[string]int `json:"citations_per_year"`
}

// Snapshot is the persisted result of one run. A nil Metrics is written as
// an empty object.
type Snapshot struct {
	Metrics      *Metrics
	Publications []Publication
}

// HTTPClient is the subset of *http.Client the fetcher needs; tests replace it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher retrieves the raw markup of a profile page.
type Fetcher struct {
	client         HTTPClient
	baseURL        string
	userAgent      string
	acceptLanguage string
	logger         *zap.Logger
}

// NewFetcher returns a Fetcher using http.DefaultClient with the given timeout
// (zero means no timeout).
func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:         &http.Client{Timeout: timeout},
		baseURL:        BaseURL,
		userAgent:      AGENT,
		acceptLanguage: AcceptLanguage,
		logger:         logger,
	}
}

func (f *Fetcher) SetHTTPClient(client HTTPClient) {
	f.client = client
}

func (f *Fetcher) SetBaseURL(base string) {
	f.baseURL = strings.TrimRight(base, "/")
}

// SetHeaders overrides the browser headers; empty values keep the defaults.
func (f *Fetcher) SetHeaders(userAgent, acceptLanguage string) {
	if userAgent != "" {
		f.userAgent = userAgent
	}
	if acceptLanguage != "" {
		f.acceptLanguage = acceptLanguage
	}
}

// ProfileURL builds the work-list URL for user, sorted by publication date.
func ProfileURL(base, user string) string {
	return base + "/citations?user=" + url.QueryEscape(user) + "&hl=en&view_op=list_works&sortby=pubdate"
}

// Fetch performs a single GET for the user's profile and returns the body as
// text whatever the status code. Only transport failures are returned as
// errors.
func (f *Fetcher) Fetch(ctx context.Context, user string) (string, error) {
	target := ProfileURL(f.baseURL, user)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", target, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", f.acceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch profile %s: %w", user, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			f.logger.Debug("close response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		// the body still goes downstream, challenge pages often come back as 429
		f.logger.Warn("Unexpected status from profile page",
			zap.Int("status", resp.StatusCode),
			zap.String("url", target))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read profile body %s: %w", user, err)
	}
	return string(body), nil
}
