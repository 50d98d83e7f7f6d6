package registry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/odpc-checker/internal/apperr"
	"github.com/pfrederiksen/odpc-checker/internal/dataset"
	"github.com/pfrederiksen/odpc-checker/internal/logger"
)

const (
	RegisteredHandlersURL = "https://www.odpc.go.ke/registered-data-handlers/"
	UserAgent             = "odpc-checker/1.0 (github.com/pfrederiksen/odpc-checker)"
	Timeout               = 10 * time.Second
	// MaxBodySize caps how much of the page is read (10MB)
	MaxBodySize = 10 * 1024 * 1024
)

// Dataset is one scrape of the register
type Dataset struct {
	Table     *dataset.Table `json:"table"`
	SourceURL string         `json:"source_url"`
	FetchedAt time.Time      `json:"fetched_at"`
	Skipped   int            `json:"skipped"` // rows dropped for a cell-count mismatch
}

// Source produces a reference dataset
type Source interface {
	Fetch(ctx context.Context) (*Dataset, error)
}

// Fetcher downloads and parses the register page
type Fetcher struct {
	client    *http.Client
	url       string
	userAgent string
	log       *logger.Logger
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithURL overrides the page URL
func WithURL(url string) Option {
	return func(f *Fetcher) { f.url = url }
}

// WithTimeout sets the overall HTTP request timeout
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.client.Timeout = d }
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithLogger sets the logger used for fetch diagnostics
func WithLogger(l *logger.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

// NewFetcher creates a Fetcher for the ODPC register
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: Timeout,
		},
		url:       RegisteredHandlersURL,
		userAgent: UserAgent,
		log:       logger.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL returns the page the Fetcher reads
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch downloads the register page and parses its first table.
//
// Transport failures and non-2xx responses return a network error, a page
// without a usable table returns a data shape error, and a table with no valid
// data rows returns an empty result error.
func (f *Fetcher) Fetch(ctx context.Context) (*Dataset, error) {
	start := time.Now()
	defer func() {
		logger.RecordTiming("registry.fetch", time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	f.log.Debug("Fetching register page", logger.Fields{"url": f.url})

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperr.Network(f.url, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Network(f.url, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, apperr.Network(f.url, 0, fmt.Errorf("reading body: %w", err))
	}
	if len(body) > MaxBodySize {
		return nil, apperr.DataShape("page at %s exceeds %d bytes", f.url, MaxBodySize)
	}

	table, skipped, err := ParseTable(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	if skipped > 0 {
		f.log.Warn("Skipped malformed table rows", logger.Fields{
			"url":     f.url,
			"skipped": skipped,
			"columns": len(table.Headers),
		})
	}

	if table.Len() == 0 {
		return nil, apperr.EmptyResult(f.url)
	}

	f.log.Info("Fetched register", logger.Fields{
		"url":     f.url,
		"rows":    table.Len(),
		"skipped": skipped,
	})

	return &Dataset{
		Table:     table,
		SourceURL: f.url,
		FetchedAt: time.Now().UTC(),
		Skipped:   skipped,
	}, nil
}

// ParseTable extracts the first <table> in an HTML document.
//
// Column names come from the table's <th> cells, trimmed. A table without any
// <th> takes its column names from the <td> cells of its first row. Repeated
// or blank names are made distinct with dataset.UniqueHeaders. Every row
// after the first becomes a dataset.Row when its <td> count equals the column
// count; other rows are dropped and counted in skipped.
func ParseTable(r io.Reader) (table *dataset.Table, skipped int, err error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, 0, apperr.DataShape("parsing HTML: %v", err)
	}

	tbl := doc.Find("table").First()
	if tbl.Length() == 0 {
		return nil, 0, apperr.DataShape("could not find data table on the page")
	}

	rows := tbl.Find("tr")

	headers := cellTexts(tbl.Find("th"))
	if len(headers) == 0 && rows.Length() > 0 {
		headers = cellTexts(rows.First().Find("td"))
	}
	if len(headers) == 0 {
		return nil, 0, apperr.DataShape("data table has no header cells")
	}

	headers = dataset.UniqueHeaders(headers)
	table = dataset.NewTable(headers...)

	rows.Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
		cells := cellTexts(tr.Find("td"))
		if len(cells) != len(headers) {
			skipped++
			return
		}
		table.Append(cells...)
	})

	return table, skipped, nil
}

func cellTexts(sel *goquery.Selection) []string {
	texts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(cell.Text()))
	})
	return texts
}
