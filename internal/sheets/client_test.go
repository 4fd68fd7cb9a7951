package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "team,pts,fg,fga\nPretty Good,12,5,10\n"

func fixedNow() time.Time { return time.UnixMilli(1_700_000_000_000) }

func TestCacheBust(t *testing.T) {
	assert.Equal(t, "https://x/csv?_=5", CacheBust("https://x/csv", 5))
	assert.Equal(t, "https://x/pub?output=csv&_=5", CacheBust("https://x/pub?output=csv", 5))
}

func TestRetryOnceWithFreshCacheBust(t *testing.T) {
	var (
		mu    sync.Mutex
		seen  []string
		calls atomic.Int32
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.URL.Query().Get("_"))
		mu.Unlock()
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	c := NewClient(Options{Retries: 1, Now: fixedNow})
	recs, err := c.Records(context.Background(), srv.URL+"/csv?output=csv")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "12", recs[0].Get("pts"))

	require.Len(t, seen, 2)
	assert.NotEqual(t, seen[0], seen[1])
	assert.Equal(t, "1700000000000", seen[0])
}

func TestSecondFailureIsReturned(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Options{Retries: 1})
	_, err := c.Text(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransient))
	assert.Equal(t, int32(2), calls.Load())
}

func TestZeroRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(Options{Retries: 0}).Text(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCancelledContextStopsBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewClient(Options{Retries: 3, Backoff: time.Hour})
	_, err := c.Text(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestLocalSources(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "ann.csv")
	require.NoError(t, os.WriteFile(plain, []byte(sampleCSV), 0644))

	gzPath := filepath.Join(dir, "ann.csv.gz")
	gf, err := os.Create(gzPath)
	require.NoError(t, err)
	gw := gzip.NewWriter(gf)
	_, err = gw.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, gf.Close())

	zstPath := filepath.Join(dir, "ann.csv.zst")
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(zstPath, enc.EncodeAll([]byte(sampleCSV), nil), 0644))
	require.NoError(t, enc.Close())

	c := NewClient(Options{})
	for _, src := range []string{plain, "file://" + plain, gzPath, zstPath} {
		text, err := c.Text(context.Background(), src)
		require.NoError(t, err, src)
		assert.Equal(t, sampleCSV, text, src)
	}

	_, err = c.Text(context.Background(), filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestBodyLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	size := int64(len(sampleCSV))

	recs, err := NewClient(Options{MaxBodyBytes: size / 2, Retries: 1}).Records(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLarge), "%v", err)
	assert.Nil(t, recs)
	// An oversized sheet is not retried.
	assert.Equal(t, int32(1), calls.Load())

	text, err := NewClient(Options{MaxBodyBytes: size}).Text(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, text)
}

func TestLocalBodyLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	_, err := NewClient(Options{MaxBodyBytes: 4}).Text(context.Background(), path)
	assert.True(t, errors.Is(err, ErrTooLarge), "%v", err)
}
