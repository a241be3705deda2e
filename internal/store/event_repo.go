package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rogers-f/tierforge/internal/domain"
)

// EventRepo handles persistence for the append-only ContributionEvent log.
type EventRepo struct{}

// AppendTx inserts a contribution event within an existing transaction and
// returns its assigned ID.
func (r *EventRepo) AppendTx(ctx context.Context, tx *sql.Tx, event domain.ContributionEvent) (int64, error) {
	const q = `INSERT INTO contribution_events (agent_id, kind, computed_value, description, metadata_json, recorded_at)
VALUES (?, ?, ?, ?, ?, ?)`
	metadata := event.MetadataJSON
	if metadata == "" {
		metadata = "{}"
	}
	res, err := tx.ExecContext(ctx, q,
		event.AgentID,
		string(event.Kind),
		event.ComputedValue,
		event.Description,
		metadata,
		event.RecordedAt.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("append event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("event id: %w", err)
	}
	return id, nil
}

// ListByAgent returns up to limit events for an agent, newest first.
func (r *EventRepo) ListByAgent(ctx context.Context, q DBTX, agentID string, limit int) ([]domain.ContributionEvent, error) {
	const query = `SELECT id, agent_id, kind, computed_value, description, metadata_json, recorded_at
FROM contribution_events
WHERE agent_id = ?
ORDER BY id DESC
LIMIT ?`

	rows, err := q.QueryContext(ctx, query, agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.ContributionEvent
	for rows.Next() {
		var e domain.ContributionEvent
		var kind string
		var recorded int64
		if err := rows.Scan(&e.ID, &e.AgentID, &kind, &e.ComputedValue, &e.Description, &e.MetadataJSON, &recorded); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Kind = domain.ContributionKind(kind)
		e.RecordedAt = fromUnixNano(recorded)
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountByAgent returns the number of events recorded for an agent.
func (r *EventRepo) CountByAgent(ctx context.Context, q DBTX, agentID string) (int64, error) {
	var n int64
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM contribution_events WHERE agent_id = ?`, agentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
