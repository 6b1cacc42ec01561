package credential

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"github.com/akn101/assignmentsync/pkg/config"
	appErrors "github.com/akn101/assignmentsync/pkg/errors"
)

// Credential is the pair the extractor writes out: the bearer token and the
// session identifier it was issued with. A refresh replaces both together,
// never one without the other.
type Credential struct {
	Token     string
	SessionID string
}

// Refresher renews the bearer credential through some side channel. The
// interactive implementation drives the external browser-based extractor;
// the disabled implementation fails fast in unattended environments.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// ExecRefresher runs the configured extractor command line through the
// shell and waits for it to exit. Stdio is passed through so the operator
// can follow the browser flow. A non-zero exit is a hard failure.
type ExecRefresher struct {
	command string
	logger  *zap.Logger
}

// NewExecRefresher builds an interactive refresher for the given command
// line.
func NewExecRefresher(command string, logger *zap.Logger) *ExecRefresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRefresher{command: command, logger: logger}
}

// Refresh runs the extractor to completion.
func (r *ExecRefresher) Refresh(ctx context.Context) error {
	if r.command == "" {
		return appErrors.Clone(appErrors.ErrRefresh, "no REFRESH_COMMAND configured; set one or renew the token manually")
	}

	// The command runs through the shell so paths and arguments with
	// spaces or quotes work as the operator wrote them.
	cmd := exec.CommandContext(ctx, "sh", "-c", r.command)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	r.logger.Info("launching token extractor", zap.String("command", r.command))
	if err := cmd.Run(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrRefresh.Code, appErrors.ErrRefresh.Status, "token extractor failed")
	}
	return nil
}

// DisabledRefresher is selected when interactive refresh cannot run
// (CI, or explicitly disabled). It never spawns anything.
type DisabledRefresher struct {
	reason string
}

// NewDisabledRefresher records why refresh is unavailable.
func NewDisabledRefresher(reason string) *DisabledRefresher {
	return &DisabledRefresher{reason: reason}
}

// Refresh reports an operator-actionable failure immediately.
func (r *DisabledRefresher) Refresh(context.Context) error {
	return appErrors.Clone(appErrors.ErrRefreshDenied,
		fmt.Sprintf("token is invalid and interactive refresh is unavailable (%s); supply a fresh GRAPH_TOKEN", r.reason))
}

// SelectRefresher picks the refresher implementation from environment
// policy: CI and explicit opt-out both force the fail-fast path.
func SelectRefresher(cfg *config.Config, logger *zap.Logger) Refresher {
	switch {
	case config.IsCI():
		return NewDisabledRefresher("running under CI")
	case cfg.Refresh.AutoDisabled:
		return NewDisabledRefresher("DISABLE_AUTO_REFRESH is set")
	default:
		return NewExecRefresher(cfg.Refresh.Command, logger)
	}
}

// ConfigReloader re-reads persisted configuration after a refresh; it must
// use override semantics so the freshly written token wins.
type ConfigReloader func() (*config.Config, error)

// Orchestrator decides whether a refresh is needed and runs it.
type Orchestrator struct {
	validator *Validator
	refresher Refresher
	reload    ConfigReloader
	logger    *zap.Logger
}

// NewOrchestrator wires the validator, refresher, and config reloader.
func NewOrchestrator(validator *Validator, refresher Refresher, reload ConfigReloader, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{validator: validator, refresher: refresher, reload: reload, logger: logger}
}

// EnsureValid returns a credential whose token passed the freshness check,
// refreshing first when the supplied token is invalid or force is set. A
// valid token with force unset short-circuits without spawning anything.
// After a refresh the whole pair is taken from the reloaded configuration,
// so the session identifier the extractor wrote travels with the new token.
func (o *Orchestrator) EnsureValid(ctx context.Context, cred Credential, force bool) (Credential, error) {
	if status := o.validator.Check(cred.Token); status.Valid && !force {
		o.logger.Info("token valid", zap.Int("minutes_remaining", int(status.Remaining.Minutes())))
		return cred, nil
	}

	if err := o.refresher.Refresh(ctx); err != nil {
		return Credential{}, err
	}

	cfg, err := o.reload()
	if err != nil {
		return Credential{}, appErrors.Wrap(err, appErrors.ErrConfig.Code, appErrors.ErrConfig.Status, "reload configuration after refresh")
	}

	renewed := Credential{Token: cfg.Graph.Token, SessionID: cfg.Graph.SessionID}
	status := o.validator.Check(renewed.Token)
	if !status.Valid {
		return Credential{}, appErrors.Clone(appErrors.ErrRefresh, "token still invalid after refresh")
	}

	o.logger.Info("token refreshed", zap.Int("minutes_remaining", int(status.Remaining.Minutes())))
	return renewed, nil
}
