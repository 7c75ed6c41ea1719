// Package seedsource loads the bootstrap document from a local file or an
// http(s) URL.
package seedsource

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_catalog/internal/adapters/observability"
	"hotel_catalog/internal/app"
	"hotel_catalog/internal/domain"
)

const maxAttempts = 4

// maxBody caps a remote seed document.
const maxBody = 16 << 20

var ErrNotFound = fmt.Errorf("seed source: %w", domain.ErrNotFound)

type Loader struct {
	hc          *http.Client
	rl          *rate.Limiter
	backoffBase time.Duration
}

type Option func(*Loader)

// WithHTTPClient replaces the default client (20s timeout).
func WithHTTPClient(hc *http.Client) Option { return func(l *Loader) { l.hc = hc } }

// WithBackoff sets the first retry delay; later delays double.
func WithBackoff(base time.Duration) Option { return func(l *Loader) { l.backoffBase = base } }

// WithRate limits outbound attempts, retries included, to rps per second.
func WithRate(rps int) Option {
	return func(l *Loader) {
		if rps > 0 {
			l.rl = rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}

func New(opts ...Option) *Loader {
	l := &Loader{
		hc:          &http.Client{Timeout: 20 * time.Second},
		rl:          rate.NewLimiter(rate.Limit(5), 5),
		backoffBase: 200 * time.Millisecond,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load reads and parses the seed document at src.
func (l *Loader) Load(ctx context.Context, src string) ([]app.SeedHotel, error) {
	b, err := l.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	return app.ParseSeedDocument(bytes.NewReader(b))
}

// Fetch returns the raw document. Paths without an http:// or https://
// scheme are read from disk.
func (l *Loader) Fetch(ctx context.Context, src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("seed source: empty location")
	}
	if lower := strings.ToLower(src); strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return l.get(ctx, src)
	}
	start := time.Now()
	b, err := os.ReadFile(src)
	if errors.Is(err, os.ErrNotExist) {
		observability.ObserveSeedFetch("file", http.StatusNotFound, time.Since(start))
		return nil, fmt.Errorf("%w: %s", ErrNotFound, src)
	}
	if err != nil {
		observability.ObserveSeedFetch("file", 0, time.Since(start))
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	observability.ObserveSeedFetch("file", http.StatusOK, time.Since(start))
	return b, nil
}

// get performs a GET with client-side rate limiting and retries.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if err := l.rl.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "hotel-catalog/1.0")

		start := time.Now()
		resp, err := l.hc.Do(req)
		if err != nil {
			observability.ObserveSeedFetch("http", 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < maxAttempts-1 && sleepCtx(ctx, l.backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
			resp.Body.Close()
			observability.ObserveSeedFetch("http", resp.StatusCode, time.Since(start))
			if err != nil {
				return nil, fmt.Errorf("read seed body: %w", err)
			}
			return b, nil

		case http.StatusNotFound:
			resp.Body.Close()
			observability.ObserveSeedFetch("http", resp.StatusCode, time.Since(start))
			return nil, fmt.Errorf("%w: %s", ErrNotFound, url)

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			observability.ObserveSeedFetch("http", resp.StatusCode, time.Since(start))
			if wait == 0 {
				wait = l.backoff(i)
			}
			lastErr = fmt.Errorf("seed source: remote %d", resp.StatusCode)
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			observability.ObserveSeedFetch("http", resp.StatusCode, time.Since(start))
			return nil, fmt.Errorf("seed source: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return nil, lastErr
}

// sleepCtx waits for d or returns false early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent or invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from backoffBase per attempt with up to +50% jitter.
func (l *Loader) backoff(i int) time.Duration {
	base := time.Duration(1<<i) * l.backoffBase
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
