package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/devconf-schedule/internal/logger"
	"github.com/pfrederiksen/devconf-schedule/internal/sessionize"
)

const (
	DefaultBaseURL    = "https://devconf.co.za"
	SessionizeBaseURL = "https://sessionize.com/api/v2"
	ArchiveBaseURL    = "https://web.archive.org/web"
	UserAgent         = "devconf-schedule/1.0 (github.com/pfrederiksen/devconf-schedule)"
	Timeout           = 30 * time.Second
	MaxRetries        = 3
)

// StatusError is returned when a server answers with anything but 200 OK.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.Code, e.URL)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Renderer returns the HTML of a page after its scripts have run.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Scraper fetches the Sessionize dataset and DevConf agenda pages
type Scraper struct {
	client        *http.Client
	baseURL       string
	sessionizeURL string
	archiveURL    string
	renderer      Renderer
	retries       uint64
	retryWait     time.Duration
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithBaseURL sets the site agenda pages are fetched from.
func WithBaseURL(url string) Option {
	return func(s *Scraper) {
		if url != "" {
			s.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithRenderer fetches agenda pages through r instead of a plain GET.
func WithRenderer(r Renderer) Option {
	return func(s *Scraper) { s.renderer = r }
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n uint64) Option {
	return func(s *Scraper) { s.retries = n }
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		baseURL:       DefaultBaseURL,
		sessionizeURL: SessionizeBaseURL,
		archiveURL:    ArchiveBaseURL,
		retries:       MaxRetries,
		retryWait:     500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ArchiveURL is the Wayback Machine snapshot of url closest to the start of day.
func ArchiveURL(url string, day time.Time) string {
	return archiveURL(ArchiveBaseURL, url, day)
}

func archiveURL(base, url string, day time.Time) string {
	return fmt.Sprintf("%s/%s000000/%s", base, day.Format("20060102"), url)
}

// SessionizeURL is the "view all" endpoint of a Sessionize event.
func (s *Scraper) SessionizeURL(id string) string {
	return fmt.Sprintf("%s/%s/view/all", s.sessionizeURL, id)
}

// AgendaURL is the agenda page of a DevConf location.
func (s *Scraper) AgendaURL(shortName string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, strings.TrimLeft(shortName, "/"))
}

func (s *Scraper) resolve(url string, day time.Time, archive bool) string {
	if archive {
		return archiveURL(s.archiveURL, url, day)
	}
	return url
}

// FetchSessionize downloads and decodes the Sessionize dataset. With archive
// set, the snapshot taken on day is fetched instead of the live endpoint.
func (s *Scraper) FetchSessionize(ctx context.Context, id string, day time.Time, archive bool) (*sessionize.Event, error) {
	url := s.resolve(s.SessionizeURL(id), day, archive)

	body, err := s.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching sessionize data: %w", err)
	}

	ev, err := sessionize.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decoding sessionize data from %s: %w", url, err)
	}

	logger.Info("Fetched sessionize data", logger.Fields{
		"url":      url,
		"sessions": len(ev.Sessions),
		"speakers": len(ev.Speakers),
		"rooms":    len(ev.Rooms),
	})
	return ev, nil
}

// FetchAgenda returns the HTML of a location's agenda page.
func (s *Scraper) FetchAgenda(ctx context.Context, shortName string, day time.Time, archive bool) (string, error) {
	url := s.resolve(s.AgendaURL(shortName), day, archive)

	if s.renderer != nil {
		start := time.Now()
		html, err := s.renderer.Render(ctx, url)
		logger.RecordTiming("scrape.render", time.Since(start))
		if err != nil {
			return "", fmt.Errorf("rendering agenda page: %w", err)
		}
		return html, nil
	}

	body, err := s.get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetching agenda page: %w", err)
	}
	return string(body), nil
}

// get performs a GET with retries. Transport errors, 5xx and 429 responses
// are retried with exponential backoff; other statuses fail at once.
func (s *Scraper) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", UserAgent)

		start := time.Now()
		resp, err := s.client.Do(req)
		logger.RecordTiming("scrape.fetch", time.Since(start))
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("requesting %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := &StatusError{URL: url, Code: resp.StatusCode}
			if statusErr.Temporary() {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.retryWait
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, s.retries), ctx)

	notify := func(err error, wait time.Duration) {
		logger.IncrCounter("scrape.retries")
		logger.Warn("Retrying request", logger.Fields{
			"url":   url,
			"error": err.Error(),
			"wait":  wait.String(),
		})
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}
	return body, nil
}

// IsNotFound reports whether err came from a 404 response.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound
}
