package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rogers-f/tierforge/internal/domain"
)

// AgentRepo handles persistence for Agent records.
type AgentRepo struct{}

const agentColumns = `agent_id, display_name, tier_rank, total_score, commit_count, models_trained_count,
	datasets_created_count, community_help_units, uptime_hours, active_days, last_active_at, created_at`

// InsertIfAbsent creates an agent with zeroed counters at rank 0. It reports
// whether a row was inserted; an existing agent is left untouched.
func (r *AgentRepo) InsertIfAbsent(ctx context.Context, q DBTX, agentID, displayName string, now time.Time) (bool, error) {
	const stmt = `INSERT INTO agents (agent_id, display_name, tier_rank, created_at)
VALUES (?, ?, 0, ?)
ON CONFLICT(agent_id) DO NOTHING`
	res, err := q.ExecContext(ctx, stmt, agentID, displayName, now.UnixNano())
	if err != nil {
		return false, fmt.Errorf("insert agent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return n == 1, nil
}

// UpdateDisplayName changes an existing agent's display name.
func (r *AgentRepo) UpdateDisplayName(ctx context.Context, q DBTX, agentID, displayName string) error {
	const stmt = `UPDATE agents SET display_name = ? WHERE agent_id = ?`
	res, err := q.ExecContext(ctx, stmt, displayName, agentID)
	if err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	return requireRow(res, agentID)
}

// ApplyDeltaTx adds delta to the agent's counters in a single statement, so
// concurrent writers never lose an update. last_active_at only moves forward.
func (r *AgentRepo) ApplyDeltaTx(ctx context.Context, tx *sql.Tx, agentID string, delta domain.CounterDelta) error {
	const stmt = `UPDATE agents SET
		total_score = total_score + ?,
		commit_count = commit_count + ?,
		models_trained_count = models_trained_count + ?,
		datasets_created_count = datasets_created_count + ?,
		community_help_units = community_help_units + ?,
		uptime_hours = uptime_hours + ?,
		active_days = active_days + ?,
		last_active_at = MAX(last_active_at, ?)
	WHERE agent_id = ?`

	res, err := tx.ExecContext(ctx, stmt,
		delta.TotalScore,
		delta.CommitCount,
		delta.ModelsTrained,
		delta.DatasetsCreated,
		delta.CommunityHelpUnits,
		delta.UptimeHours,
		delta.ActiveDays,
		delta.LastActiveAt.UnixNano(),
		agentID,
	)
	if err != nil {
		return fmt.Errorf("apply counter delta: %w", err)
	}
	return requireRow(res, agentID)
}

// AdvanceTierTx raises the agent's tier to rank only if it is currently lower.
// It reports whether the row changed.
func (r *AgentRepo) AdvanceTierTx(ctx context.Context, q DBTX, agentID string, rank domain.TierRank) (bool, error) {
	const stmt = `UPDATE agents SET tier_rank = ? WHERE agent_id = ? AND tier_rank < ?`
	res, err := q.ExecContext(ctx, stmt, int(rank), agentID, int(rank))
	if err != nil {
		return false, fmt.Errorf("advance tier: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return n == 1, nil
}

// GetByID retrieves an agent by its ID.
func (r *AgentRepo) GetByID(ctx context.Context, q DBTX, agentID string) (*domain.Agent, error) {
	row := q.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE agent_id = ?`, agentID)

	a, err := scanAgent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Detail(domain.ErrAgentNotFound, "%q", agentID)
		}
		return nil, fmt.Errorf("get agent: %w", err)
	}
	return a, nil
}

// ListRanked returns up to limit agents ordered by total score descending,
// then earliest activity, then agent ID.
func (r *AgentRepo) ListRanked(ctx context.Context, q DBTX, limit int) ([]domain.Agent, error) {
	const query = `SELECT ` + agentColumns + `
FROM agents
ORDER BY total_score DESC, last_active_at ASC, agent_id ASC
LIMIT ?`

	rows, err := q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, *a)
	}
	return agents, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(s rowScanner) (*domain.Agent, error) {
	var a domain.Agent
	var rank int
	var lastActive, created int64
	err := s.Scan(&a.AgentID, &a.DisplayName, &rank,
		&a.Counters.TotalScore, &a.Counters.CommitCount, &a.Counters.ModelsTrained,
		&a.Counters.DatasetsCreated, &a.Counters.CommunityHelpUnits, &a.Counters.UptimeHours,
		&a.Counters.ActiveDays, &lastActive, &created)
	if err != nil {
		return nil, err
	}
	a.CurrentTier = domain.TierRank(rank)
	a.LastActiveAt = fromUnixNano(lastActive)
	a.CreatedAt = fromUnixNano(created)
	return &a, nil
}

func requireRow(res sql.Result, agentID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return domain.Detail(domain.ErrAgentNotFound, "%q", agentID)
	}
	return nil
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
