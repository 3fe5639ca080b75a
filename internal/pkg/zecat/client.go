package zecat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/time/rate"

	"github.com/promocraft/catalog/app/models"
	"github.com/promocraft/catalog/internal/pkg/env"
	"github.com/promocraft/catalog/internal/pkg/retry"
)

const (
	DefaultPageLimit   = 500
	DefaultTimeout     = 15 * time.Second
	maxErrorBodyLength = 300
)

// Config is the supplier API configuration surface.
type Config struct {
	BaseURL        string
	Token          string
	PageLimit      int
	MaxRetries     int
	RateLimitDelay time.Duration
	Timeout        time.Duration
}

// ConfigFromEnv reads the ZECAT_* environment configuration.
func ConfigFromEnv() Config {
	pageLimit, _ := strconv.Atoi(env.GetEnv("ZECAT_PAGE_LIMIT", "500"))
	maxRetries, _ := strconv.Atoi(env.GetEnv("ZECAT_MAX_RETRIES", "3"))
	delayMS, _ := strconv.Atoi(env.GetEnv("ZECAT_RATE_LIMIT_DELAY", "100"))

	return Config{
		BaseURL:        strings.TrimRight(env.GetEnv("ZECAT_BASE", "https://api.zecat.com/v1"), "/"),
		Token:          env.GetEnv("ZECAT_TOKEN", ""),
		PageLimit:      pageLimit,
		MaxRetries:     maxRetries,
		RateLimitDelay: time.Duration(delayMS) * time.Millisecond,
		Timeout:        DefaultTimeout,
	}
}

// Client talks to the supplier catalog API with request pacing, bounded
// retries with exponential backoff, and Retry-After handling for 429s.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	policy     retry.Policy
}

// NewClient creates a supplier API client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = DefaultPageLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	limit := rate.Inf
	if cfg.RateLimitDelay > 0 {
		limit = rate.Every(cfg.RateLimitDelay)
	}

	policy := retry.DefaultPolicy()
	if cfg.MaxRetries > 0 {
		policy.MaxAttempts = cfg.MaxRetries
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		policy:     policy,
	}
}

// ListProductIDs enumerates the complete set of remote product ids by walking
// the paginated listing until the server-reported page count. Any page failure
// aborts: a truncated id list must never be acted upon.
func (c *Client) ListProductIDs(ctx context.Context) ([]string, error) {
	var ids []string
	page := 1
	totalPages := 1

	for page <= totalPages {
		url := fmt.Sprintf("%s/generic_product?limit=%d&page=%d", c.cfg.BaseURL, c.cfg.PageLimit, page)

		var resp listResponse
		if err := c.getJSON(ctx, url, &resp); err != nil {
			return nil, fmt.Errorf("listing page %d: %w", page, err)
		}
		if resp.TotalPages > 0 {
			totalPages = resp.TotalPages
		}
		for _, item := range resp.GenericProducts {
			ids = append(ids, item.ID.String())
		}
		log.Infof("[Zecat] Page %d/%d (+%d ids)", page, totalPages, len(resp.GenericProducts))
		page++
	}

	return ids, nil
}

// FetchProduct retrieves and normalizes one product detail record. The raw
// payload travels on the returned entry for audit.
func (c *Client) FetchProduct(ctx context.Context, id string) (*models.CatalogEntry, error) {
	url := fmt.Sprintf("%s/generic_product/%s", c.cfg.BaseURL, id)

	raw, err := c.getRaw(ctx, url)
	if err != nil {
		return nil, err
	}
	entry, err := Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", id, err)
	}
	return entry, nil
}

// ListFamilies retrieves the supplier's family listing.
func (c *Client) ListFamilies(ctx context.Context) ([]WireFamily, error) {
	url := c.cfg.BaseURL + "/family"

	raw, err := c.getRaw(ctx, url)
	if err != nil {
		return nil, err
	}

	// The endpoint answers either { families: [...] } or a bare array.
	var resp familiesResponse
	if err := json.Unmarshal(raw, &resp); err == nil && resp.Families != nil {
		return resp.Families, nil
	}
	var list []WireFamily
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decoding families payload: %w", err)
	}
	return list, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	raw, err := c.getRaw(ctx, url)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// getRaw performs one GET under the retry policy and returns the body.
func (c *Client) getRaw(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		b, err := c.doGet(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	return body, err
}

func (c *Client) doGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		delay := DefaultRateLimitWait
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				delay = time.Duration(secs) * time.Second
			}
		}
		log.Warnf("[Zecat] Rate limited on %s, waiting %s", url, delay)
		return nil, &RateLimitError{Delay: delay, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > maxErrorBodyLength {
			snippet = snippet[:maxErrorBodyLength]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url, Body: snippet}
	}

	return body, nil
}
