package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akn101/assignmentsync/internal/models"
	"github.com/akn101/assignmentsync/pkg/config"
)

func existingIDResult(id string) map[string]any {
	return map[string]any{
		"properties": map[string]any{
			PropAssignmentID: map[string]any{
				"rich_text": []any{map[string]any{"plain_text": id}},
			},
		},
	}
}

func TestSyncSkipsWhenUnconfigured(t *testing.T) {
	s := NewSyncer(config.NotionConfig{}, zap.NewNop())
	tally, err := s.Sync(context.Background(), []models.Assignment{{ID: "a"}})
	require.NoError(t, err)
	require.True(t, tally.Skipped)
	require.Zero(t, tally.Uploaded)
}

func TestSyncCreatesOnlyMissingPages(t *testing.T) {
	var created []string
	var queries int

	mux := http.NewServeMux()
	mux.HandleFunc("/databases/db-1/query", func(w http.ResponseWriter, r *http.Request) {
		queries++
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.Equal(t, "2022-06-28", r.Header.Get("Notion-Version"))

		var body struct {
			StartCursor string `json:"start_cursor"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		if body.StartCursor == "" {
			writeJSON(t, w, map[string]any{
				"results":     []any{existingIDResult("a")},
				"has_more":    true,
				"next_cursor": "cursor-2",
			})
			return
		}
		require.Equal(t, "cursor-2", body.StartCursor)
		writeJSON(t, w, map[string]any{
			"results":  []any{existingIDResult("b")},
			"has_more": false,
		})
	})
	mux.HandleFunc("/pages", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, 2, queries, "creates only start after the query paged to completion")
		var page Page
		require.NoError(t, json.NewDecoder(r.Body).Decode(&page))
		require.Equal(t, "db-1", page.Parent.DatabaseID)

		title := page.Properties[PropTitle].(map[string]any)["title"].([]any)
		idProp := page.Properties[PropAssignmentID].(map[string]any)["rich_text"].([]any)
		content := idProp[0].(map[string]any)["text"].(map[string]any)["content"].(string)
		created = append(created, content)
		require.NotEmpty(t, title)
		w.WriteHeader(http.StatusOK)
		writeJSON(t, w, map[string]any{"id": "page"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s := NewSyncer(config.NotionConfig{
		BaseURL:    server.URL,
		Token:      "secret",
		DatabaseID: "db-1",
		Version:    "2022-06-28",
	}, zap.NewNop())
	s.pace.sleep = func(time.Duration) {}

	tally, err := s.Sync(context.Background(), []models.Assignment{
		{ID: "a", Title: "already there"},
		{ID: "b", Title: "also there"},
		{ID: "c", Title: "new one", DueDate: "2026-03-01T00:00:00Z"},
		{ID: "d", Title: "another new one"},
	})
	require.NoError(t, err)

	require.Equal(t, 2, queries, "existing ids are read to completion before any write")
	require.Equal(t, []string{"c", "d"}, created, "no create call for already-present ids")
	require.Equal(t, 2, tally.Existing)
	require.Equal(t, 2, tally.Uploaded)
	require.Zero(t, tally.Failed)
}

func TestSyncCountsCreateFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/databases/db-1/query", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"results": []any{}, "has_more": false})
	})
	var attempts int
	mux.HandleFunc("/pages", func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "validation_error", http.StatusBadRequest)
			return
		}
		writeJSON(t, w, map[string]any{"id": "page"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s := NewSyncer(config.NotionConfig{BaseURL: server.URL, Token: "secret", DatabaseID: "db-1"}, zap.NewNop())
	s.pace.sleep = func(time.Duration) {}

	tally, err := s.Sync(context.Background(), []models.Assignment{{ID: "x"}, {ID: "y"}})
	require.NoError(t, err, "individual create failures never abort the loop")
	require.Equal(t, 1, tally.Uploaded)
	require.Equal(t, 1, tally.Failed)
}

func TestSyncRateLimitsCreates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/databases/db-1/query", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"results": []any{}, "has_more": false})
	})
	mux.HandleFunc("/pages", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"id": "page"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	clock := time.Unix(0, 0)
	var slept time.Duration
	s := NewSyncer(config.NotionConfig{
		BaseURL:     server.URL,
		Token:       "secret",
		DatabaseID:  "db-1",
		MinInterval: 350 * time.Millisecond,
	}, zap.NewNop())
	s.pace.now = func() time.Time { return clock }
	s.pace.sleep = func(d time.Duration) {
		slept += d
		clock = clock.Add(d)
	}

	_, err := s.Sync(context.Background(), []models.Assignment{{ID: "x"}, {ID: "y"}, {ID: "z"}})
	require.NoError(t, err)
	require.GreaterOrEqual(t, slept, 700*time.Millisecond, "consecutive creates are spaced by the minimum interval")
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}
