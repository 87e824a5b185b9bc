package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"filmverse/internal/domain"

	"github.com/avast/retry-go/v4"
)

// ErrUpstreamUnavailable means the upstream feed could not be reached (or
// returned garbage) and no cached payload exists to fall back on.
var ErrUpstreamUnavailable = errors.New("upstream film feed unavailable")

const (
	DefaultURL      = "https://www.whenisthenextmcufilm.com/api"
	DefaultTimeout  = 15 * time.Second
	DefaultRetries  = 3
	DefaultCacheTTL = time.Hour

	retryDelay = 100 * time.Millisecond
)

// filmVideoURLs maps upstream film ids to hosted trailer videos shown in the
// hero section. Extend as trailers are produced.
var filmVideoURLs = map[int64]string{
	969681: "https://res.cloudinary.com/djef7fggp/video/upload/v1765630197/SPIDER-MAN__BRAND_NEW_DAY_1080p_eiys40.mp4",
}

// Client fetches the upstream film feed and keeps the last-known-good
// payload in a process-wide cache so page loads within the TTL window do
// not hit the upstream at all.
type Client struct {
	url        string
	httpClient *http.Client
	retries    uint
	cacheTTL   time.Duration

	mu        sync.RWMutex
	cached    *domain.Film
	fetchedAt time.Time
}

func NewClient(url string, timeout time.Duration, retries int, cacheTTL time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if retries <= 0 {
		retries = DefaultRetries
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		retries:    uint(retries),
		cacheTTL:   cacheTTL,
	}
}

// GetUpcoming returns the next release (and the one following it, nested).
// Within the cache TTL the cached payload is returned without an upstream
// request. On upstream failure a stale payload is still served if one
// exists; otherwise ErrUpstreamUnavailable.
func (c *Client) GetUpcoming(ctx context.Context) (*domain.Film, error) {
	c.mu.RLock()
	if c.cached != nil && time.Since(c.fetchedAt) < c.cacheTTL {
		film := c.cached
		c.mu.RUnlock()
		return film, nil
	}
	c.mu.RUnlock()

	film, err := c.fetch(ctx)
	if err != nil {
		c.mu.RLock()
		stale := c.cached
		c.mu.RUnlock()
		if stale != nil {
			log.Printf("[feed] upstream failed, serving stale payload: %v", err)
			return stale, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	c.mu.Lock()
	c.cached = film
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	return film, nil
}

// Invalidate drops the cached payload so the next call refetches.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

func (c *Client) fetch(ctx context.Context) (*domain.Film, error) {
	var body []byte

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("http request: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("unexpected status: %d", resp.StatusCode)
			}

			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Attempts(c.retries),
		retry.Delay(retryDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		log.Printf("[feed] fetch failed after %d attempts: %v", c.retries, err)
		return nil, err
	}

	var film domain.Film
	if err := json.Unmarshal(body, &film); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if err := validatePayload(&film); err != nil {
		// Invalid shape is treated the same as an unreachable upstream.
		log.Printf("[feed] invalid payload: %v", err)
		return nil, err
	}

	enrichWithVideoURLs(&film)
	return &film, nil
}

// validatePayload checks the minimal shape the site depends on before the
// payload is trusted and cached.
func validatePayload(film *domain.Film) error {
	if film.ID == 0 {
		return errors.New("missing id")
	}
	if film.Title == "" {
		return errors.New("missing title")
	}
	if _, err := time.Parse("2006-01-02", film.ReleaseDate); err != nil {
		return fmt.Errorf("invalid release_date %q", film.ReleaseDate)
	}
	return nil
}

func enrichWithVideoURLs(film *domain.Film) {
	if url, ok := filmVideoURLs[film.ID]; ok {
		film.VideoURL = url
	}
	if fp := film.FollowingProduction; fp != nil {
		if url, ok := filmVideoURLs[fp.ID]; ok {
			fp.VideoURL = url
		}
	}
}
