package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/examcoach/internal/history"
)

// historyRepo implements HistoryRepo over the SQL driver.
type historyRepo struct {
	drv *entsql.Driver
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *historyRepo) Snapshot(ctx context.Context) (*history.Snapshot, error) {
	snap := &history.Snapshot{Stats: make(history.Stats)}

	stats, err := loadStats(ctx, r.drv)
	if err != nil {
		return nil, err
	}
	for _, st := range stats {
		snap.Stats[st.ItemID] = st
	}

	if snap.Cards, err = loadCards(ctx, r.drv); err != nil {
		return nil, err
	}
	if snap.Sessions, err = loadSessions(ctx, r.drv); err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *historyRepo) SaveAttempt(ctx context.Context, stat history.AttemptStat) error {
	return saveAttempt(ctx, r.drv, stat)
}

func (r *historyRepo) SaveCard(ctx context.Context, card history.MistakeCard) error {
	return saveCard(ctx, r.drv, card)
}

func (r *historyRepo) StartSession(ctx context.Context, startedAt time.Time) (string, error) {
	id := uuid.NewString()
	if err := insertSession(ctx, r.drv, id, startedAt); err != nil {
		return "", err
	}
	return id, nil
}

func (r *historyRepo) AppendReview(ctx context.Context, sessionID string, entry history.ReviewEntry) error {
	return insertEntry(ctx, r.drv, sessionID, entry)
}

func (r *historyRepo) RecordAnswer(ctx context.Context, a Answer) (err error) {
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = saveAttempt(ctx, tx, a.Stat); err != nil {
		return err
	}
	if a.Card != nil {
		if err = saveCard(ctx, tx, *a.Card); err != nil {
			return err
		}
	}
	if a.SessionID != "" {
		if err = insertEntry(ctx, tx, a.SessionID, a.Entry); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit answer: %w", err)
	}
	return nil
}

func saveAttempt(ctx context.Context, eq dialect.ExecQuerier, st history.AttemptStat) error {
	query, args := builder().Insert(tableAttemptStats).
		Columns("item_id", "attempts", "correct", "last_answered_at", "interval_days", "ease", "due").
		Values(st.ItemID, st.Attempts, st.Correct, formatTimePtr(st.LastAnsweredAt), st.Interval, st.Ease, formatTimePtr(st.Due)).
		OnConflict(entsql.ConflictColumns("item_id"), entsql.ResolveWithNewValues()).
		Query()
	if err := eq.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save attempt stat %s: %w", st.ItemID, err)
	}
	return nil
}

func saveCard(ctx context.Context, eq dialect.ExecQuerier, c history.MistakeCard) error {
	objectives, err := encodeStrings(c.ObjectiveIDs)
	if err != nil {
		return fmt.Errorf("encode card objectives: %w", err)
	}
	misconceptions, err := encodeStrings(c.MisconceptionTags)
	if err != nil {
		return fmt.Errorf("encode card misconceptions: %w", err)
	}
	tags, err := encodeStrings(c.Tags)
	if err != nil {
		return fmt.Errorf("encode card tags: %w", err)
	}

	query, args := builder().Insert(tableMistakeCards).
		Columns("id", "item_id", "status", "objective_ids", "misconception_tags", "tags",
			"created_at", "due", "interval_days", "ease", "lapses").
		Values(c.ID, c.ItemID, string(c.Status), objectives, misconceptions, tags,
			formatTime(c.CreatedAt), formatTime(c.Due), c.Interval, c.Ease, c.Lapses).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if err := eq.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save mistake card %s: %w", c.ID, err)
	}
	return nil
}

func insertSession(ctx context.Context, eq dialect.ExecQuerier, id string, startedAt time.Time) error {
	query, args := builder().Insert(tableReviewSessions).
		Columns("id", "started_at").
		Values(id, formatTime(startedAt)).
		Query()
	if err := eq.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("create review session: %w", err)
	}
	return nil
}

func insertEntry(ctx context.Context, eq dialect.ExecQuerier, sessionID string, e history.ReviewEntry) error {
	query, args := builder().Insert(tableReviewEntries).
		Columns("session_id", "card_id", "item_id", "outcome", "at").
		Values(sessionID, e.CardID, e.ItemID, e.Outcome, formatTime(e.At)).
		Query()
	if err := eq.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("append review entry: %w", err)
	}
	return nil
}

func loadStats(ctx context.Context, eq dialect.ExecQuerier) ([]history.AttemptStat, error) {
	query, args := builder().
		Select("item_id", "attempts", "correct", "last_answered_at", "interval_days", "ease", "due").
		From(entsql.Table(tableAttemptStats)).
		OrderBy("item_id").
		Query()
	rows := &entsql.Rows{}
	if err := eq.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query attempt stats: %w", err)
	}
	defer rows.Close()

	var out []history.AttemptStat
	for rows.Next() {
		var (
			st        history.AttemptStat
			last, due sql.NullString
		)
		if err := rows.Scan(&st.ItemID, &st.Attempts, &st.Correct, &last, &st.Interval, &st.Ease, &due); err != nil {
			return nil, fmt.Errorf("scan attempt stat: %w", err)
		}
		var err error
		if st.LastAnsweredAt, err = parseTimePtr(last); err != nil {
			return nil, err
		}
		if st.Due, err = parseTimePtr(due); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempt stats: %w", err)
	}
	return out, nil
}

func loadCards(ctx context.Context, eq dialect.ExecQuerier) ([]history.MistakeCard, error) {
	query, args := builder().
		Select("id", "item_id", "status", "objective_ids", "misconception_tags", "tags",
			"created_at", "due", "interval_days", "ease", "lapses").
		From(entsql.Table(tableMistakeCards)).
		OrderBy("id").
		Query()
	rows := &entsql.Rows{}
	if err := eq.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query mistake cards: %w", err)
	}
	defer rows.Close()

	var out []history.MistakeCard
	for rows.Next() {
		var (
			c                              history.MistakeCard
			status, objectives, tags, misc string
			createdAt, due                 string
		)
		if err := rows.Scan(&c.ID, &c.ItemID, &status, &objectives, &misc, &tags,
			&createdAt, &due, &c.Interval, &c.Ease, &c.Lapses); err != nil {
			return nil, fmt.Errorf("scan mistake card: %w", err)
		}
		c.Status = history.CardStatus(status)
		var err error
		if c.ObjectiveIDs, err = decodeStrings(objectives); err != nil {
			return nil, fmt.Errorf("decode card %s objectives: %w", c.ID, err)
		}
		if c.MisconceptionTags, err = decodeStrings(misc); err != nil {
			return nil, fmt.Errorf("decode card %s misconceptions: %w", c.ID, err)
		}
		if c.Tags, err = decodeStrings(tags); err != nil {
			return nil, fmt.Errorf("decode card %s tags: %w", c.ID, err)
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if c.Due, err = parseTime(due); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mistake cards: %w", err)
	}
	return out, nil
}

func loadSessions(ctx context.Context, eq dialect.ExecQuerier) ([]history.ReviewSession, error) {
	query, args := builder().
		Select("id", "started_at").
		From(entsql.Table(tableReviewSessions)).
		OrderBy("started_at", "rowid").
		Query()
	rows := &entsql.Rows{}
	if err := eq.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query review sessions: %w", err)
	}

	var sessions []history.ReviewSession
	index := make(map[string]int)
	for rows.Next() {
		var id, started string
		if err := rows.Scan(&id, &started); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan review session: %w", err)
		}
		at, err := parseTime(started)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[id] = len(sessions)
		sessions = append(sessions, history.ReviewSession{ID: id, StartedAt: at})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate review sessions: %w", err)
	}
	rows.Close()

	query, args = builder().
		Select("session_id", "card_id", "item_id", "outcome", "at").
		From(entsql.Table(tableReviewEntries)).
		OrderBy("id").
		Query()
	entries := &entsql.Rows{}
	if err := eq.Query(ctx, query, args, entries); err != nil {
		return nil, fmt.Errorf("query review entries: %w", err)
	}
	defer entries.Close()

	for entries.Next() {
		var (
			sessionID, at string
			e             history.ReviewEntry
		)
		if err := entries.Scan(&sessionID, &e.CardID, &e.ItemID, &e.Outcome, &at); err != nil {
			return nil, fmt.Errorf("scan review entry: %w", err)
		}
		t, err := parseTime(at)
		if err != nil {
			return nil, err
		}
		e.At = t
		if i, ok := index[sessionID]; ok {
			sessions[i].Entries = append(sessions[i].Entries, e)
		}
	}
	if err := entries.Err(); err != nil {
		return nil, fmt.Errorf("iterate review entries: %w", err)
	}
	return sessions, nil
}
