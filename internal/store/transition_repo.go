package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rogers-f/tierforge/internal/domain"
)

// TransitionRepo handles persistence for TierTransition history entries.
type TransitionRepo struct{}

// Record inserts a tier transition. A missing ID is filled with a new UUID.
func (r *TransitionRepo) Record(ctx context.Context, q DBTX, tr domain.TierTransition) (string, error) {
	const stmt = `INSERT INTO tier_transitions (id, agent_id, from_rank, to_rank, total_score, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	if tr.ID == "" {
		tr.ID = uuid.NewString()
	}
	_, err := q.ExecContext(ctx, stmt,
		tr.ID,
		tr.AgentID,
		int(tr.FromRank),
		int(tr.ToRank),
		tr.TotalScore,
		tr.CreatedAt.UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("record tier transition: %w", err)
	}
	return tr.ID, nil
}

// ListByAgent returns all transitions for an agent, oldest first.
func (r *TransitionRepo) ListByAgent(ctx context.Context, q DBTX, agentID string) ([]domain.TierTransition, error) {
	const query = `SELECT id, agent_id, from_rank, to_rank, total_score, created_at
FROM tier_transitions
WHERE agent_id = ?
ORDER BY created_at ASC, to_rank ASC`

	rows, err := q.QueryContext(ctx, query, agentID)
	if err != nil {
		return nil, fmt.Errorf("list tier transitions: %w", err)
	}
	defer rows.Close()

	var out []domain.TierTransition
	for rows.Next() {
		var t domain.TierTransition
		var from, to int
		var created int64
		if err := rows.Scan(&t.ID, &t.AgentID, &from, &to, &t.TotalScore, &created); err != nil {
			return nil, fmt.Errorf("scan tier transition: %w", err)
		}
		t.FromRank = domain.TierRank(from)
		t.ToRank = domain.TierRank(to)
		t.CreatedAt = fromUnixNano(created)
		out = append(out, t)
	}
	return out, rows.Err()
}
