// Package practice wires the scoring, planning, scheduling and exam engines
// to persisted learner history.
package practice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/examcoach/internal/catalog"
	"github.com/abhisek/examcoach/internal/coaching"
	"github.com/abhisek/examcoach/internal/examsim"
	"github.com/abhisek/examcoach/internal/history"
	"github.com/abhisek/examcoach/internal/logger"
	"github.com/abhisek/examcoach/internal/mastery"
	"github.com/abhisek/examcoach/internal/misconception"
	"github.com/abhisek/examcoach/internal/spacedrep"
	"github.com/abhisek/examcoach/internal/store"
)

// ErrUnknownItem is returned when an answer names an item not in the catalog.
var ErrUnknownItem = errors.New("unknown item")

// Plan echo kinds.
const (
	KindCoaching = "coaching"
	KindExam     = "exam"
)

// maxPlanWorkers bounds concurrent per-objective planning.
const maxPlanWorkers = 4

// Service answers practice questions against one catalog and one history.
type Service struct {
	cat     *catalog.Catalog
	history store.HistoryRepo
	plans   store.PlanRepo
	planner *coaching.Planner
	log     *logger.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New creates a Service. plans may be nil to skip plan echoes.
func New(cat *catalog.Catalog, hist store.HistoryRepo, plans store.PlanRepo, opts ...Option) *Service {
	s := &Service{
		cat:     cat,
		history: hist,
		plans:   plans,
		planner: coaching.NewPlanner(cat),
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Catalog returns the catalog the service plans against.
func (s *Service) Catalog() *catalog.Catalog {
	return s.cat
}

func (s *Service) snapshot(ctx context.Context) (*history.Snapshot, error) {
	snap, err := s.history.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if snap.Stats == nil {
		snap.Stats = make(history.Stats)
	}
	return snap, nil
}

// Mastery returns objective rows, weakest first.
func (s *Service) Mastery(ctx context.Context) ([]mastery.Row, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return mastery.ScoreObjectives(s.cat, snap.Stats, s.now()), nil
}

// Misconceptions returns ranked misconception priorities.
func (s *Service) Misconceptions(ctx context.Context) ([]misconception.Priority, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	tags := mastery.ScoreMisconceptions(s.cat, snap.Stats, snap.Cards, now)
	objectives := mastery.ScoreObjectives(s.cat, snap.Stats, now)
	return misconception.Prioritize(s.cat, tags, objectives, snap.Cards, now), nil
}

// Next returns the next-best coaching plan and echoes it to the plan store.
func (s *Service) Next(ctx context.Context) (coaching.Plan, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return coaching.Plan{}, err
	}
	now := s.now()
	plan := s.planner.Next(snap.Stats, now)
	s.log.Debug("coaching plan built",
		"plan_id", plan.ID,
		"objective", plan.ObjectiveID,
		"activity", plan.Activity,
		"questions", len(plan.QuestionIDs),
		"loosened", plan.Loosened,
	)
	if err := s.echo(ctx, KindCoaching, plan.ID, plan, now); err != nil {
		return coaching.Plan{}, err
	}
	return plan, nil
}

// PlansByObjective builds plans for the weakest limit objectives
// concurrently, preserving weakest-first order. Objectives without content
// are left out. limit <= 0 plans every objective.
func (s *Service) PlansByObjective(ctx context.Context, limit int) ([]coaching.Plan, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	rows := mastery.SortedWeakest(mastery.ScoreObjectives(s.cat, snap.Stats, now), limit)

	plans := make([]coaching.Plan, len(rows))
	found := make([]bool, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPlanWorkers)
	for i, row := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plans[i], found[i] = s.planner.ForObjective(row, snap.Stats, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("plan objectives: %w", err)
	}

	out := make([]coaching.Plan, 0, len(plans))
	for i, p := range plans {
		if found[i] {
			out = append(out, p)
		}
	}
	return out, nil
}

// QueueRequest controls Queue.
type QueueRequest struct {
	IncludeUpcoming bool
	Limit           int
}

// Queue returns the balanced review queue.
func (s *Service) Queue(ctx context.Context, req QueueRequest) ([]spacedrep.QueueEntry, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	rows := mastery.ScoreObjectives(s.cat, snap.Stats, now)
	return spacedrep.Balance(snap.Cards, spacedrep.QueueOptions{
		Now:             now,
		Weakness:        mastery.WeaknessIndex(rows),
		IncludeUpcoming: req.IncludeUpcoming,
		Limit:           req.Limit,
	}), nil
}

// ExamRequest selects the policy and seed for Exam. Policy wins over
// PolicyVersion; with neither, the latest catalog policy is used.
type ExamRequest struct {
	Seed          string
	Policy        *catalog.Policy
	PolicyVersion string
}

// Exam generates an exam simulation and echoes it to the plan store.
func (s *Service) Exam(ctx context.Context, req ExamRequest) (examsim.Plan, error) {
	policy, err := s.resolvePolicy(req)
	if err != nil {
		return examsim.Plan{}, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return examsim.Plan{}, err
	}
	now := s.now()
	plan := examsim.Generate(examsim.Input{
		Catalog: s.cat,
		Policy:  policy,
		Stats:   snap.Stats,
		Seed:    req.Seed,
		Now:     now,
	})
	for _, w := range plan.Warnings {
		s.log.Warn("exam generation", "plan_id", plan.ID, "warning", w)
	}
	if err := s.echo(ctx, KindExam, plan.ID, plan, now); err != nil {
		return examsim.Plan{}, err
	}
	return plan, nil
}

func (s *Service) resolvePolicy(req ExamRequest) (catalog.Policy, error) {
	if req.Policy != nil {
		p, issues := s.cat.NormalizePolicy(*req.Policy)
		for _, is := range issues {
			s.log.Warn("policy issue", "issue", is.String())
		}
		return p, nil
	}
	if req.PolicyVersion != "" {
		return s.cat.PolicyByVersion(req.PolicyVersion)
	}
	return s.cat.LatestPolicy()
}

func (s *Service) echo(ctx context.Context, kind, planID string, plan any, at time.Time) error {
	if s.plans == nil {
		return nil
	}
	if _, err := s.plans.SavePlan(ctx, kind, planID, plan, at); err != nil {
		return fmt.Errorf("echo %s plan: %w", kind, err)
	}
	return nil
}

// LastPlan returns the most recent stored plan of kind.
func (s *Service) LastPlan(ctx context.Context, kind string) (*store.PlanEcho, error) {
	if s.plans == nil {
		return nil, store.ErrNotFound
	}
	return s.plans.LatestPlan(ctx, kind)
}
