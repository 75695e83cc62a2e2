// Package arxiv provides a rate-limited client for the arXiv export API.
//
// It covers the three external interfaces the extraction pipeline needs:
// metadata search (Atom query API), source-archive fetch, and rendered PDF
// fetch. arXiv asks automated clients to space requests out, so every call
// passes through a shared limiter before touching the network.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/scholex/relworks/internal/paper"
	"golang.org/x/time/rate"
)

const (
	// QueryURL is the arXiv Atom query API endpoint.
	QueryURL = "http://export.arxiv.org/api/query"

	// FileURL is the base URL for source and PDF downloads.
	FileURL = "https://arxiv.org"

	// DefaultDelay is the politeness interval between requests,
	// per the arXiv API terms of use.
	DefaultDelay = 3 * time.Second

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultSearchLimit is the number of results requested per search.
	DefaultSearchLimit = 5
)

// Client is a rate-limited HTTP client for the arXiv export API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	queryURL   string
	fileURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithQueryURL sets a custom query endpoint (for testing).
func WithQueryURL(u string) ClientOption {
	return func(c *Client) {
		c.queryURL = u
	}
}

// WithFileURL sets a custom download base URL (for testing).
func WithFileURL(u string) ClientOption {
	return func(c *Client) {
		c.fileURL = u
	}
}

// WithDelay sets the politeness interval between requests.
func WithDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// NewClient creates a new arXiv client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(DefaultDelay), 1),
		queryURL:   QueryURL,
		fileURL:    FileURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a rate-limited GET and returns the response body.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}
	return body, nil
}

// atomFeed mirrors the subset of the arXiv Atom response we consume.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Links []struct {
		Rel  string `xml:"rel,attr"`
		Href string `xml:"href,attr"`
	} `xml:"link"`
}

// absURL returns the abstract page URL for an entry, preferring the
// rel=alternate link and falling back to the entry ID.
func (e *atomEntry) absURL() string {
	for _, l := range e.Links {
		if l.Rel == "alternate" {
			return l.Href
		}
	}
	return strings.TrimSpace(e.ID)
}

// collapseAtomText normalizes the whitespace arXiv inserts into Atom
// title and summary fields.
func collapseAtomText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (c *Client) query(ctx context.Context, params url.Values) (*atomFeed, error) {
	body, err := c.get(ctx, c.queryURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("%w: parsing Atom feed: %v", ErrInvalidResponse, err)
	}
	return &feed, nil
}

// Search runs a raw arXiv search query and returns candidates in API order.
// An empty slice means no match; the API offers no relevance guarantee.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]paper.Candidate, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(limit))

	feed, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	candidates := make([]paper.Candidate, 0, len(feed.Entries))
	for i := range feed.Entries {
		e := &feed.Entries[i]
		candidates = append(candidates, paper.Candidate{
			Title:      collapseAtomText(e.Title),
			Abstract:   collapseAtomText(e.Summary),
			Identifier: e.absURL(),
		})
	}
	return candidates, nil
}

// FetchByID fetches paper metadata for a bare arXiv identifier.
func (c *Client) FetchByID(ctx context.Context, arxivID string) (*paper.Meta, error) {
	id := CleanID(arxivID)

	params := url.Values{}
	params.Set("id_list", id)
	params.Set("max_results", "1")

	feed, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(feed.Entries) == 0 {
		return nil, ErrNotFound
	}

	e := &feed.Entries[0]
	meta := &paper.Meta{
		ArXivID:  id,
		AbsURL:   e.absURL(),
		Title:    collapseAtomText(e.Title),
		Abstract: collapseAtomText(e.Summary),
	}
	if meta.Title == "" {
		return nil, ErrNotFound
	}
	for _, a := range e.Authors {
		meta.Authors = append(meta.Authors, a.Name)
	}
	if t, err := time.Parse(time.RFC3339, e.Published); err == nil {
		meta.Published = t
	}
	return meta, nil
}

// FetchSource downloads the raw source bundle bytes for a paper.
// The payload is usually a gzipped tar archive but may be a bare file.
func (c *Client) FetchSource(ctx context.Context, arxivID string) ([]byte, error) {
	return c.get(ctx, c.fileURL+"/src/"+CleanID(arxivID))
}

// FetchPDF downloads the rendered PDF for a paper. Documents larger than
// maxBytes are rejected with ErrTooLarge (maxBytes <= 0 disables the check).
func (c *Client) FetchPDF(ctx context.Context, arxivID string, maxBytes int64) ([]byte, error) {
	body, err := c.get(ctx, c.fileURL+"/pdf/"+CleanID(arxivID)+".pdf")
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && int64(len(body)) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(body))
	}
	return body, nil
}

// CleanID strips an optional "arxiv:" prefix and surrounding whitespace.
func CleanID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "arxiv:")
	id = strings.TrimPrefix(id, "arXiv:")
	return strings.TrimSpace(id)
}
