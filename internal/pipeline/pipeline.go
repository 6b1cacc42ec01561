// Package pipeline orchestrates one sync run end to end: credential check,
// paginated fetch, normalization, filtering, export, upsert, and the final
// state commit.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/akn101/assignmentsync/internal/credential"
	"github.com/akn101/assignmentsync/internal/exporter"
	"github.com/akn101/assignmentsync/internal/filter"
	"github.com/akn101/assignmentsync/internal/graph"
	"github.com/akn101/assignmentsync/internal/models"
	"github.com/akn101/assignmentsync/internal/normalize"
	"github.com/akn101/assignmentsync/internal/notion"
	"github.com/akn101/assignmentsync/internal/state"
	"github.com/akn101/assignmentsync/pkg/config"
	appErrors "github.com/akn101/assignmentsync/pkg/errors"
	"github.com/akn101/assignmentsync/pkg/storage"
)

// Options is the user-facing run specification, assembled from CLI flags.
// Date bounds accept RFC3339 or YYYY-MM-DD and are validated before any
// network activity.
type Options struct {
	Mode         string   `validate:"oneof=full incremental"`
	Statuses     []string `validate:"dive,required"`
	ClassIDs     []string `validate:"dive,required"`
	DueBefore    string   `validate:"omitempty,syncdate"`
	DueAfter     string   `validate:"omitempty,syncdate"`
	Incomplete   bool
	Overdue      bool
	ForceRefresh bool
}

// Summary reports what one run did.
type Summary struct {
	Fetched  int
	Filtered int
	Uploaded int
	Failed   int
	Mode     string
	Duration time.Duration
}

// Pipeline wires the sync stages together. One Pipeline value serves one
// process invocation; roster memoization never outlives it.
type Pipeline struct {
	cfg      *config.Config
	logger   *zap.Logger
	validate *validator.Validate
	reload   credential.ConfigReloader
}

// New builds a pipeline over the given configuration.
func New(cfg *config.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New()
	_ = v.RegisterValidation("syncdate", func(fl validator.FieldLevel) bool {
		_, err := ParseDateBound(fl.Field().String())
		return err == nil
	})
	return &Pipeline{cfg: cfg, logger: logger, validate: v, reload: config.Reload}
}

// ParseDateBound accepts an RFC3339 timestamp or a bare YYYY-MM-DD day.
func ParseDateBound(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// Run executes one full sync. State is committed only after a successful
// export, so a crash anywhere earlier leaves the previous state intact and
// the next run safe to re-attempt.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Summary, error) {
	start := time.Now()

	criteria, err := p.buildCriteria(opts)
	if err != nil {
		return nil, err
	}

	cred, err := p.ensureCredential(ctx, opts.ForceRefresh)
	if err != nil {
		return nil, err
	}

	if p.cfg.Graph.AssignmentsURL == "" {
		return nil, appErrors.Clone(appErrors.ErrConfig, "GRAPH_ASSIGNMENTS_URL is not configured")
	}

	client := p.newClient(cred)
	raws, err := client.FetchAll(ctx, p.cfg.Graph.AssignmentsURL)
	if err != nil {
		return nil, err
	}

	rosters := graph.NewRosterCache(client, p.logger)
	normalizer := normalize.NewNormalizer(rosters, client, p.logger)

	// Normalize sequentially, skipping duplicate ids so every id is unique
	// within the run.
	seen := make(map[string]bool, len(raws))
	assignments := make([]models.Assignment, 0, len(raws))
	for _, raw := range raws {
		if raw.ID == "" || seen[raw.ID] {
			continue
		}
		seen[raw.ID] = true
		assignments = append(assignments, normalizer.Normalize(ctx, raw))
	}

	store := state.NewStore(p.cfg.State.Path, p.logger)
	prior := store.Load()

	filtered := filter.Apply(assignments, criteria, prior, time.Now().UTC())
	p.logger.Info("filter applied",
		zap.Int("candidates", len(assignments)),
		zap.Int("kept", len(filtered)),
		zap.String("mode", opts.Mode))

	local, err := storage.NewLocalStorage(p.cfg.Export.Dir)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExport.Code, appErrors.ErrExport.Status, "prepare export directory")
	}
	if err := exporter.New(local, p.cfg.Notion.DatabaseID, p.logger).Write(filtered); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExport.Code, appErrors.ErrExport.Status, "write exports")
	}

	tally, err := notion.NewSyncer(p.cfg.Notion, p.logger).Sync(ctx, filtered)
	if err != nil {
		return nil, err
	}

	processedIDs := make([]string, 0, len(filtered))
	for _, item := range filtered {
		processedIDs = append(processedIDs, item.ID)
	}
	if err := store.Commit(prior, processedIDs, opts.Mode); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "commit sync state")
	}

	return &Summary{
		Fetched:  len(raws),
		Filtered: len(filtered),
		Uploaded: tally.Uploaded,
		Failed:   tally.Failed,
		Mode:     opts.Mode,
		Duration: time.Since(start),
	}, nil
}

// DumpDetail fetches one expanded assignment and returns it as indented
// JSON. It performs the credential check but no sync.
func (p *Pipeline) DumpDetail(ctx context.Context, classID, assignmentID string, forceRefresh bool) ([]byte, error) {
	if classID == "" || assignmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "detail requires CLASS_ID:ASSIGNMENT_ID")
	}

	cred, err := p.ensureCredential(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}

	raw, err := p.newClient(cred).AssignmentDetail(ctx, classID, assignmentID)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(raw, "", "  ")
}

func (p *Pipeline) buildCriteria(opts Options) (filter.Criteria, error) {
	if err := p.validate.Struct(opts); err != nil {
		return filter.Criteria{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid run options")
	}

	criteria := filter.Criteria{
		Statuses:    opts.Statuses,
		ClassIDs:    opts.ClassIDs,
		Incomplete:  opts.Incomplete,
		Overdue:     opts.Overdue,
		Incremental: opts.Mode == models.ModeIncremental,
	}
	if opts.DueBefore != "" {
		t, _ := ParseDateBound(opts.DueBefore)
		criteria.DueBefore = &t
	}
	if opts.DueAfter != "" {
		t, _ := ParseDateBound(opts.DueAfter)
		criteria.DueAfter = &t
	}
	return criteria, nil
}

func (p *Pipeline) ensureCredential(ctx context.Context, force bool) (credential.Credential, error) {
	checker := credential.NewValidator(nil, p.logger)
	refresher := credential.SelectRefresher(p.cfg, p.logger)
	orchestrator := credential.NewOrchestrator(checker, refresher, p.reload, p.logger)
	return orchestrator.EnsureValid(ctx, credential.Credential{
		Token:     p.cfg.Graph.Token,
		SessionID: p.cfg.Graph.SessionID,
	}, force)
}

func (p *Pipeline) newClient(cred credential.Credential) *graph.Client {
	return graph.NewClient(graph.Options{
		BaseURL:   p.cfg.Graph.BaseURL,
		Token:     cred.Token,
		SessionID: cred.SessionID,
		Timeout:   p.cfg.Graph.HTTPTimeout,
	}, p.logger)
}
