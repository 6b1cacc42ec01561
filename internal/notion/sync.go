// Package notion upserts canonical assignments into a Notion database, one
// page per assignment, deduplicated by the external assignment id.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/akn101/assignmentsync/internal/models"
	"github.com/akn101/assignmentsync/pkg/config"
)

// Tally summarises one upsert pass.
type Tally struct {
	Existing int
	Uploaded int
	Failed   int
	Skipped  bool
}

// Syncer drives the query-then-create upsert flow.
type Syncer struct {
	http   *http.Client
	cfg    config.NotionConfig
	logger *zap.Logger
	pace   *pacer
}

// NewSyncer builds a Syncer from the record-store configuration.
func NewSyncer(cfg config.NotionConfig, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		http:   &http.Client{Timeout: 30 * time.Second},
		cfg:    cfg,
		logger: logger,
		pace:   newPacer(cfg.MinInterval),
	}
}

// Configured reports whether the store is addressable at all.
func (s *Syncer) Configured() bool {
	return s.cfg.Token != "" && s.cfg.DatabaseID != ""
}

// Sync queries the database for already-present assignment ids (read to
// completion before any write, so the query never races its own creates),
// then creates one page per missing item under the minimum inter-request
// spacing. Individual create failures are logged and counted, never fatal.
func (s *Syncer) Sync(ctx context.Context, items []models.Assignment) (Tally, error) {
	if !s.Configured() {
		s.logger.Warn("notion token or database id missing; skipping upload stage")
		return Tally{Skipped: true}, nil
	}

	existing, err := s.existingIDs(ctx)
	if err != nil {
		return Tally{}, err
	}

	tally := Tally{Existing: len(existing)}
	for _, item := range items {
		if existing[item.ID] {
			continue
		}
		s.pace.wait()
		if err := s.createPage(ctx, item); err != nil {
			s.logger.Warn("page create failed", zap.String("assignment_id", item.ID), zap.Error(err))
			tally.Failed++
			continue
		}
		tally.Uploaded++
	}

	s.logger.Info("notion upsert finished",
		zap.Int("existing", tally.Existing),
		zap.Int("uploaded", tally.Uploaded),
		zap.Int("failed", tally.Failed))
	return tally, nil
}

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size"`
}

type queryResponse struct {
	Results []struct {
		Properties map[string]struct {
			RichText []struct {
				PlainText string `json:"plain_text"`
			} `json:"rich_text"`
		} `json:"properties"`
	} `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// existingIDs pages through the database query endpoint and collects every
// stored assignment id.
func (s *Syncer) existingIDs(ctx context.Context) (map[string]bool, error) {
	ids := make(map[string]bool)
	cursor := ""
	for {
		reqBody := queryRequest{StartCursor: cursor, PageSize: 100}
		var page queryResponse
		endpoint := fmt.Sprintf("%s/databases/%s/query", s.cfg.BaseURL, s.cfg.DatabaseID)
		if err := s.postJSON(ctx, endpoint, reqBody, &page); err != nil {
			return nil, fmt.Errorf("query existing pages: %w", err)
		}
		for _, result := range page.Results {
			prop, ok := result.Properties[PropAssignmentID]
			if !ok || len(prop.RichText) == 0 {
				continue
			}
			ids[prop.RichText[0].PlainText] = true
		}
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return ids, nil
}

func (s *Syncer) createPage(ctx context.Context, item models.Assignment) error {
	endpoint := fmt.Sprintf("%s/pages", s.cfg.BaseURL)
	return s.postJSON(ctx, endpoint, PagePayload(s.cfg.DatabaseID, item), nil)
}

func (s *Syncer) postJSON(ctx context.Context, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", s.cfg.Version)

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(detail))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
