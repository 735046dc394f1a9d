// Package promote runs the champion/challenger evaluation and applies the
// outcome to the registry.
package promote

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/champlabs/champ/internal/audit"
	"github.com/champlabs/champ/internal/dataset"
	"github.com/champlabs/champ/internal/evaluate"
	"github.com/champlabs/champ/internal/models"
	"github.com/champlabs/champ/internal/policy"
	"github.com/champlabs/champ/internal/registry"
)

// ReloadNotifier pings serving infrastructure after a promotion.
type ReloadNotifier interface {
	NotifyReload(ctx context.Context, model string, version int) error
}

// Config wires an Orchestrator. Registry, Recorder, and Gates are
// required; Notifier is optional.
type Config struct {
	Registry registry.Client
	Recorder audit.Recorder
	Notifier ReloadNotifier
	Gates    models.GateThresholds
	Logger   *slog.Logger
}

// Orchestrator evaluates the newest version of a model against the
// current champion and promotes or rejects it.
type Orchestrator struct {
	registry registry.Client
	recorder audit.Recorder
	notifier ReloadNotifier
	gates    models.GateThresholds
	logger   *slog.Logger
}

// Result describes one promotion run.
type Result struct {
	Candidate        models.ModelVersion
	Champion         *models.ModelVersion
	Decision         models.PromotionDecision
	CandidateMetrics models.Metrics
	ChampionMetrics  *models.Metrics
	Skipped          bool
}

// New builds an Orchestrator from cfg.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		registry: cfg.Registry,
		recorder: cfg.Recorder,
		notifier: cfg.Notifier,
		gates:    cfg.Gates,
		logger:   logger,
	}
}

// Run evaluates the highest-numbered version of name on the holdout and
// applies the promotion policy. Side effects happen in a fixed order:
// audit record first, then registry mutation, then reload notification.
// A failed audit write aborts before anything is mutated; a failed
// notification does not fail the run.
func (o *Orchestrator) Run(ctx context.Context, name string, holdout *dataset.Holdout) (*Result, error) {
	versions, err := o.registry.ListVersions(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("listing versions of %s: %w", name, err)
	}
	candidate := models.MaxVersion(versions)
	if candidate == nil {
		return nil, fmt.Errorf("%w: %s", registry.ErrNoVersions, name)
	}

	champion, err := o.registry.ResolveChampion(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolving champion of %s: %w", name, err)
	}

	o.logger.Info("evaluating candidate",
		slog.String("model", name),
		slog.Int("candidate", candidate.Version),
		slog.Any("champion", championVersion(champion)))

	// The candidate already holding the production pointer is decided
	// before any artifact is loaded: re-promoting it would be a no-op, and
	// rejecting it cannot unseat it.
	if champion != nil && champion.Version == candidate.Version {
		res := &Result{
			Candidate: *candidate,
			Champion:  champion,
			Decision:  models.PromotionDecision{Outcome: models.OutcomeSkip, GatesOK: true, BetterOrEqual: true},
			Skipped:   true,
		}
		if err := o.record(name, res); err != nil {
			return nil, err
		}
		o.logger.Info("candidate is already champion, skipping", slog.Int("version", candidate.Version))
		return res, nil
	}

	candMetrics, champMetrics, err := o.score(ctx, name, candidate, champion, holdout)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Candidate:        *candidate,
		Champion:         champion,
		Decision:         policy.Decide(candMetrics, champMetrics, o.gates),
		CandidateMetrics: candMetrics,
		ChampionMetrics:  champMetrics,
	}

	if err := o.record(name, res); err != nil {
		return nil, err
	}

	switch res.Decision.Outcome {
	case models.OutcomePromote:
		if err := o.applyPromotion(ctx, name, candidate.Version); err != nil {
			return nil, err
		}
	case models.OutcomeReject:
		o.tagRejection(ctx, name, candidate.Version, res.Decision)
	}
	return res, nil
}

// score loads both predictors and evaluates them on the holdout. The two
// evaluations are independent, so they run concurrently.
func (o *Orchestrator) score(ctx context.Context, name string, candidate, champion *models.ModelVersion, holdout *dataset.Holdout) (models.Metrics, *models.Metrics, error) {
	var candMetrics models.Metrics
	var champMetrics *models.Metrics

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := o.registry.LoadPredictor(ctx, name, candidate.Version)
		if err != nil {
			return fmt.Errorf("loading candidate: %w", err)
		}
		candMetrics, err = evaluate.Score(p, holdout.Features, holdout.Labels)
		if err != nil {
			return fmt.Errorf("scoring candidate version %d: %w", candidate.Version, err)
		}
		return nil
	})
	if champion != nil {
		g.Go(func() error {
			p, err := o.registry.LoadPredictor(ctx, name, champion.Version)
			if err != nil {
				return fmt.Errorf("loading champion: %w", err)
			}
			m, err := evaluate.Score(p, holdout.Features, holdout.Labels)
			if err != nil {
				return fmt.Errorf("scoring champion version %d: %w", champion.Version, err)
			}
			champMetrics = &m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.Metrics{}, nil, err
	}
	return candMetrics, champMetrics, nil
}

// record writes the audit record. It must succeed before any registry
// mutation is attempted.
func (o *Orchestrator) record(name string, res *Result) error {
	rec := models.AuditRecord{
		ModelName:        name,
		CandidateVersion: res.Candidate.Version,
		ChampionVersion:  championVersion(res.Champion),
		Decision:         res.Decision,
		CandidateMetrics: res.CandidateMetrics,
		ChampionMetrics:  res.ChampionMetrics,
	}
	if err := o.recorder.Record(rec); err != nil {
		return fmt.Errorf("recording decision for %s: %w", name, err)
	}
	return nil
}

// applyPromotion mutates the registry and then verifies and announces the
// new champion. Tagging and notification failures are logged, not fatal:
// the pointer has already moved.
func (o *Orchestrator) applyPromotion(ctx context.Context, name string, version int) error {
	if err := o.registry.Promote(ctx, name, version); err != nil {
		return fmt.Errorf("promoting %s version %d: %w", name, version, err)
	}

	champ, err := o.registry.ResolveChampion(ctx, name)
	if err != nil {
		return fmt.Errorf("verifying promotion of %s: %w", name, err)
	}
	if champ == nil || champ.Version != version {
		return fmt.Errorf("promotion of %s version %d did not take: champion is %v", name, version, championVersion(champ))
	}

	if err := o.registry.Tag(ctx, name, version, "decision", "promoted"); err != nil {
		o.logger.Warn("failed to tag promoted version", slog.Int("version", version), slog.Any("error", err))
	}

	o.logger.Info("promoted", slog.String("model", name), slog.Int("version", version))

	if o.notifier != nil {
		if err := o.notifier.NotifyReload(ctx, name, version); err != nil {
			o.logger.Warn("reload notification failed", slog.Any("error", err))
		}
	}
	return nil
}

// tagRejection annotates the rejected version. Best effort.
func (o *Orchestrator) tagRejection(ctx context.Context, name string, version int, d models.PromotionDecision) {
	if err := o.registry.Tag(ctx, name, version, "decision", "rejected"); err != nil {
		o.logger.Warn("failed to tag rejected version", slog.Int("version", version), slog.Any("error", err))
	}
	if err := o.registry.Tag(ctx, name, version, "rejected_reason", d.ReasonString()); err != nil {
		o.logger.Warn("failed to tag rejection reason", slog.Int("version", version), slog.Any("error", err))
	}
	o.logger.Info("rejected",
		slog.String("model", name),
		slog.Int("version", version),
		slog.String("reasons", d.ReasonString()))
}

func championVersion(v *models.ModelVersion) *int {
	if v == nil {
		return nil
	}
	n := v.Version
	return &n
}
