// Package graph talks to the education platform's assignments API: the
// cursor-paginated listing endpoint, the per-class roster endpoint, and the
// per-item detail endpoint.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akn101/assignmentsync/internal/models"
	appErrors "github.com/akn101/assignmentsync/pkg/errors"
)

// Client issues authenticated requests against the platform API. All calls
// are sequential; there is never more than one request in flight.
type Client struct {
	http      *http.Client
	baseURL   string
	token     string
	sessionID string
	logger    *zap.Logger
	now       func() time.Time
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Token     string
	SessionID string
	Timeout   time.Duration
}

// NewClient builds an API client.
func NewClient(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   opts.BaseURL,
		token:     opts.Token,
		sessionID: opts.SessionID,
		logger:    logger,
		now:       time.Now,
	}
}

type listingPage struct {
	Value    []models.RawAssignment `json:"value"`
	NextLink string                 `json:"@odata.nextLink"`
}

type rosterPage struct {
	Value []models.RosterMember `json:"value"`
}

// FetchAll walks the listing endpoint to completion and returns every item
// in page order. The URL's $filter parameter is overwritten with a
// stable "due this month or later" window before the first request, so a
// run's candidate set never depends on whatever filter the token-capture
// side channel happened to observe. Any non-200 response is fatal to the
// run; 401/403 are reported as auth-class errors.
func (c *Client) FetchAll(ctx context.Context, listingURL string) ([]models.RawAssignment, error) {
	next, err := overrideDueFilter(listingURL, c.now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfig.Code, appErrors.ErrConfig.Status, "invalid assignments listing URL")
	}

	var items []models.RawAssignment
	pages := 0
	for next != "" {
		var page listingPage
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		items = append(items, page.Value...)
		pages++
		next = page.NextLink
	}

	c.logger.Info("assignments fetched", zap.Int("pages", pages), zap.Int("items", len(items)))
	return items, nil
}

// Members returns the roster of one class. Failures degrade to an empty
// roster at the cache layer; this method itself reports them.
func (c *Client) Members(ctx context.Context, classID string) (*models.Roster, error) {
	endpoint := fmt.Sprintf("%s/education/classes/%s/members", c.baseURL, url.PathEscape(classID))
	var page rosterPage
	if err := c.getJSON(ctx, endpoint, &page); err != nil {
		return nil, err
	}
	return models.NewRoster(page.Value), nil
}

// AssignmentDetail fetches one expanded assignment. The listing endpoint
// frequently truncates or omits instructions; the detail endpoint is
// authoritative.
func (c *Client) AssignmentDetail(ctx context.Context, classID, assignmentID string) (*models.RawAssignment, error) {
	endpoint := fmt.Sprintf("%s/education/classes/%s/assignments/%s",
		c.baseURL, url.PathEscape(classID), url.PathEscape(assignmentID))
	raw := &models.RawAssignment{}
	if err := c.getJSON(ctx, endpoint, raw); err != nil {
		return nil, err
	}
	if raw.ClassID == "" {
		raw.ClassID = classID
	}
	return raw, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrFetch.Code, appErrors.ErrFetch.Status, "build request")
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	// One correlation id per request, never reused.
	req.Header.Set("client-request-id", uuid.NewString())
	if c.sessionID != "" {
		req.Header.Set("client-session-id", c.sessionID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrFetch.Code, appErrors.ErrFetch.Status, "request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return appErrors.New(appErrors.ErrAuth.Code, resp.StatusCode,
			fmt.Sprintf("authorization rejected (%d); the token has likely expired", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return appErrors.New(appErrors.ErrFetch.Code, resp.StatusCode,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrFetch.Code, appErrors.ErrFetch.Status, "decode response")
	}
	return nil
}

// overrideDueFilter replaces any caller-supplied $filter with a normalized
// "due at or after the first instant of the current month (UTC)" window.
func overrideDueFilter(listingURL string, now time.Time) (string, error) {
	u, err := url.Parse(listingURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("listing URL %q is not absolute", listingURL)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	q := u.Query()
	q.Set("$filter", fmt.Sprintf("dueDateTime ge %s", monthStart.Format(time.RFC3339)))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
