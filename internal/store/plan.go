package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// planRepo implements PlanRepo over the SQL driver.
type planRepo struct {
	drv *entsql.Driver
}

func (r *planRepo) SavePlan(ctx context.Context, kind, planID string, plan any, at time.Time) (*PlanEcho, error) {
	payload, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("marshal %s plan: %w", kind, err)
	}
	echo := &PlanEcho{
		ID:        uuid.NewString(),
		Kind:      kind,
		PlanID:    planID,
		Payload:   payload,
		CreatedAt: at.UTC(),
	}

	query, args := builder().Insert(tablePlanEchoes).
		Columns("id", "kind", "plan_id", "payload", "created_at").
		Values(echo.ID, echo.Kind, echo.PlanID, string(echo.Payload), formatTime(echo.CreatedAt)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return nil, fmt.Errorf("save %s plan: %w", kind, err)
	}
	return echo, nil
}

func (r *planRepo) LatestPlan(ctx context.Context, kind string) (*PlanEcho, error) {
	echoes, err := r.ListPlans(ctx, kind, 1)
	if err != nil {
		return nil, err
	}
	if len(echoes) == 0 {
		return nil, fmt.Errorf("latest %s plan: %w", kind, ErrNotFound)
	}
	return &echoes[0], nil
}

func (r *planRepo) ListPlans(ctx context.Context, kind string, limit int) ([]PlanEcho, error) {
	sel := builder().
		Select("id", "kind", "plan_id", "payload", "created_at").
		From(entsql.Table(tablePlanEchoes)).
		Where(entsql.EQ("kind", kind)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("rowid"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query %s plans: %w", kind, err)
	}
	defer rows.Close()

	var out []PlanEcho
	for rows.Next() {
		var (
			e                  PlanEcho
			payload, createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.PlanID, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan plan echo: %w", err)
		}
		t, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		e.CreatedAt = t
		e.Payload = json.RawMessage(payload)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan echoes: %w", err)
	}
	return out, nil
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
