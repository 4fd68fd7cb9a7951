// Package sheets fetches CSV exports from published spreadsheets or local
// snapshots and maps them into records.
package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/pable/hoopstats/internal/logging"
	"github.com/pable/hoopstats/internal/metrics"
	"github.com/pable/hoopstats/internal/parser"
)

var (
	// ErrTransient marks a fetch failure that is worth one more attempt.
	ErrTransient = errors.New("sheets: transient fetch failure")
	// ErrTooLarge is returned when a sheet exceeds the configured body limit.
	ErrTooLarge = errors.New("sheets: body exceeds limit")
)

const defaultMaxBody = 8 << 20

// Options configures a Client. Zero values pick the defaults.
type Options struct {
	Timeout      time.Duration
	Retries      int
	Backoff      time.Duration
	MaxBodyBytes int64
	HTTPClient   *http.Client
	Now          func() time.Time
	Logger       *logging.Logger
	Metrics      *metrics.Recorder
}

// Client fetches CSV text with cache-busting and a bounded retry.
type Client struct {
	http    *http.Client
	retries int
	backoff time.Duration
	maxBody int64
	now     func() time.Time
	logger  *logging.Logger
	metrics *metrics.Recorder
}

// NewClient returns a Client. Retries < 0 is treated as 0.
func NewClient(opts Options) *Client {
	c := &Client{
		http:    opts.HTTPClient,
		retries: max(opts.Retries, 0),
		backoff: opts.Backoff,
		maxBody: opts.MaxBodyBytes,
		now:     opts.Now,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.maxBody <= 0 {
		c.maxBody = defaultMaxBody
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = logging.Default()
	}
	return c
}

// CacheBust appends a "_" query parameter carrying ts so intermediate caches
// never serve a stale export.
func CacheBust(rawURL string, ts int64) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_=%d", rawURL, sep, ts)
}

// Records fetches src and maps it into records, honouring the META layout.
func (c *Client) Records(ctx context.Context, src string) ([]parser.Record, error) {
	text, err := c.Text(ctx, src)
	if err != nil {
		return nil, err
	}
	return parser.Parse(text).Records, nil
}

// Table fetches src and returns the parsed sheet.
func (c *Client) Table(ctx context.Context, src string) (parser.Table, error) {
	text, err := c.Text(ctx, src)
	if err != nil {
		return parser.Table{}, err
	}
	return parser.Parse(text), nil
}

// Text returns the raw text behind src: an http(s) URL, a file:// URL or a
// local path. Local files ending in .gz or .zst are decompressed.
func (c *Client) Text(ctx context.Context, src string) (string, error) {
	if isRemote(src) {
		return c.fetchRemote(ctx, src)
	}
	return readLocal(strings.TrimPrefix(src, "file://"), c.maxBody)
}

func isRemote(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func (c *Client) fetchRemote(ctx context.Context, src string) (string, error) {
	ts := c.now().UnixMilli()
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		// Every attempt gets its own cache-bust value.
		target := CacheBust(src, ts+int64(attempt))
		c.logger.DebugContext(ctx, "fetching csv", "url", target, "attempt", attempt+1)

		body, err := c.get(ctx, target)
		if err == nil {
			c.metrics.FetchAttempt(metrics.OutcomeOK)
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil || !errors.Is(err, ErrTransient) {
			c.metrics.FetchAttempt(metrics.OutcomeError)
			return "", err
		}
		if attempt == c.retries {
			c.metrics.FetchAttempt(metrics.OutcomeError)
			break
		}
		c.metrics.FetchAttempt(metrics.OutcomeRetry)
		c.logger.WarnContext(ctx, "csv fetch failed, retrying", "url", src, "error", err)

		if c.backoff > 0 {
			timer := time.NewTimer(c.backoff * time.Duration(attempt+1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
		}
	}
	return "", lastErr
}

func (c *Client) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrapf(ErrTransient, "GET %s: %v", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Wrapf(ErrTransient, "GET %s: HTTP %d", target, resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return "", errors.Wrapf(ErrTransient, "read %s: %v", target, err)
	}
	if int64(len(raw)) > c.maxBody {
		return "", errors.Wrapf(ErrTooLarge, "GET %s: more than %d bytes", target, c.maxBody)
	}
	return string(raw), nil
}

func readLocal(path string, limit int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("zstd %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(raw)) > limit {
		return "", errors.Wrapf(ErrTooLarge, "%s: more than %d bytes", path, limit)
	}
	return string(raw), nil
}
