package store

import (
	"context"
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/rogers-f/tierforge/internal/domain"
)

// ContributionStore owns all durable state: the agent registry, the
// append-only event log and the tier history. Every write is committed before
// the call returns.
type ContributionStore struct {
	DB          *sql.DB
	Agents      *AgentRepo
	Events      *EventRepo
	Transitions *TransitionRepo

	// StrictRegistration rejects re-registration under a different display
	// name instead of updating it.
	StrictRegistration bool
	// Now is the clock used for created_at and transition timestamps.
	Now func() time.Time
}

// NewContributionStore creates a store over an opened database.
func NewContributionStore(db *sql.DB) *ContributionStore {
	return &ContributionStore{
		DB:          db,
		Agents:      &AgentRepo{},
		Events:      &EventRepo{},
		Transitions: &TransitionRepo{},
		Now:         time.Now,
	}
}

// RegisterAgent inserts a new agent with zeroed counters at the lowest tier.
// Registering an existing ID is idempotent; a different non-empty display name
// replaces the old one unless StrictRegistration is set. IDs are stored
// verbatim, so blank IDs and IDs with surrounding whitespace are rejected.
func (s *ContributionStore) RegisterAgent(ctx context.Context, agentID, displayName string) (*domain.Agent, error) {
	if strings.TrimSpace(agentID) == "" {
		return nil, domain.Detail(domain.ErrInvalidArgument, "agent id is required")
	}
	if strings.TrimSpace(agentID) != agentID {
		return nil, domain.Detail(domain.ErrInvalidArgument, "agent id %q has surrounding whitespace", agentID)
	}
	named := displayName != ""
	if !named {
		displayName = agentID
	}

	var agent *domain.Agent
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		inserted, err := s.Agents.InsertIfAbsent(ctx, tx, agentID, displayName, s.Now())
		if err != nil {
			return err
		}
		existing, err := s.Agents.GetByID(ctx, tx, agentID)
		if err != nil {
			return err
		}
		if !inserted && named && existing.DisplayName != displayName {
			if s.StrictRegistration {
				return domain.Detail(domain.ErrAgentExists, "%q is registered as %q", agentID, existing.DisplayName)
			}
			if err := s.Agents.UpdateDisplayName(ctx, tx, agentID, displayName); err != nil {
				return err
			}
			existing.DisplayName = displayName
		}
		agent = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return agent, nil
}

// GetAgent returns the agent or ErrAgentNotFound.
func (s *ContributionStore) GetAgent(ctx context.Context, agentID string) (*domain.Agent, error) {
	a, err := s.Agents.GetByID(ctx, s.DB, agentID)
	if err != nil {
		return nil, domain.StorageFailure("get agent", err)
	}
	return a, nil
}

// RecordContribution appends event and applies delta to the agent's counters
// in one transaction. Either both are durable or neither is. It returns the
// new event's ID. A negative delta, or one that would overflow a counter, fails
// with ErrInvalidContribution and writes nothing.
func (s *ContributionStore) RecordContribution(ctx context.Context, event domain.ContributionEvent, delta domain.CounterDelta) (int64, error) {
	var id int64
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		agent, err := s.Agents.GetByID(ctx, tx, event.AgentID)
		if err != nil {
			return err
		}
		if err := checkDelta(agent.Counters, delta); err != nil {
			return err
		}
		id, err = s.Events.AppendTx(ctx, tx, event)
		if err != nil {
			return err
		}
		return s.Agents.ApplyDeltaTx(ctx, tx, event.AgentID, delta)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func checkDelta(cur domain.Counters, delta domain.CounterDelta) error {
	fields := []struct {
		name      string
		have, add int64
	}{
		{"total_score", cur.TotalScore, delta.TotalScore},
		{"commit_count", cur.CommitCount, delta.CommitCount},
		{"models_trained_count", cur.ModelsTrained, delta.ModelsTrained},
		{"datasets_created_count", cur.DatasetsCreated, delta.DatasetsCreated},
		{"community_help_units", cur.CommunityHelpUnits, delta.CommunityHelpUnits},
		{"active_days", cur.ActiveDays, delta.ActiveDays},
	}
	for _, f := range fields {
		if f.add < 0 {
			return domain.Detail(domain.ErrInvalidContribution, "%s delta %d is negative", f.name, f.add)
		}
		if f.have > math.MaxInt64-f.add {
			return domain.Detail(domain.ErrInvalidContribution, "%s %d + %d overflows", f.name, f.have, f.add)
		}
	}
	if math.IsNaN(delta.UptimeHours) || math.IsInf(delta.UptimeHours, 0) || delta.UptimeHours < 0 {
		return domain.Detail(domain.ErrInvalidContribution, "uptime_hours delta %v is invalid", delta.UptimeHours)
	}
	return nil
}

// SetTier moves the agent forward to rank and records the transition.
// Writing the current rank is a no-op; a lower rank fails with ErrBackwardTier.
func (s *ContributionStore) SetTier(ctx context.Context, agentID string, rank domain.TierRank) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := s.SetTierTx(ctx, tx, agentID, rank)
		return err
	})
}

// SetTierTx is SetTier inside a caller's transaction. It reports whether the
// tier changed.
func (s *ContributionStore) SetTierTx(ctx context.Context, tx *sql.Tx, agentID string, rank domain.TierRank) (bool, error) {
	agent, err := s.Agents.GetByID(ctx, tx, agentID)
	if err != nil {
		return false, err
	}
	switch {
	case rank == agent.CurrentTier:
		return false, nil
	case rank < agent.CurrentTier:
		return false, domain.Detail(domain.ErrBackwardTier, "%q from rank %d to %d", agentID, agent.CurrentTier, rank)
	}

	advanced, err := s.Agents.AdvanceTierTx(ctx, tx, agentID, rank)
	if err != nil {
		return false, err
	}
	if !advanced {
		return false, nil
	}

	_, err = s.Transitions.Record(ctx, tx, domain.TierTransition{
		AgentID:    agentID,
		FromRank:   agent.CurrentTier,
		ToRank:     rank,
		TotalScore: agent.Counters.TotalScore,
		CreatedAt:  s.Now(),
	})
	return err == nil, err
}

// ListAgentsRankedByScore returns up to limit agents ordered by total score
// descending with ties broken by earliest last activity.
func (s *ContributionStore) ListAgentsRankedByScore(ctx context.Context, limit int) ([]domain.Agent, error) {
	if limit <= 0 {
		return nil, domain.Detail(domain.ErrInvalidArgument, "limit must be positive, got %d", limit)
	}
	agents, err := s.Agents.ListRanked(ctx, s.DB, limit)
	if err != nil {
		return nil, domain.StorageFailure("list agents", err)
	}
	return agents, nil
}

// ListEvents returns up to limit of the agent's events, newest first.
func (s *ContributionStore) ListEvents(ctx context.Context, agentID string, limit int) ([]domain.ContributionEvent, error) {
	if limit <= 0 {
		return nil, domain.Detail(domain.ErrInvalidArgument, "limit must be positive, got %d", limit)
	}
	if _, err := s.GetAgent(ctx, agentID); err != nil {
		return nil, err
	}
	events, err := s.Events.ListByAgent(ctx, s.DB, agentID, limit)
	if err != nil {
		return nil, domain.StorageFailure("list events", err)
	}
	return events, nil
}

// ListTransitions returns the agent's tier history, oldest first.
func (s *ContributionStore) ListTransitions(ctx context.Context, agentID string) ([]domain.TierTransition, error) {
	if _, err := s.GetAgent(ctx, agentID); err != nil {
		return nil, err
	}
	out, err := s.Transitions.ListByAgent(ctx, s.DB, agentID)
	if err != nil {
		return nil, domain.StorageFailure("list transitions", err)
	}
	return out, nil
}

// WithTx runs fn in a transaction, committing on success and rolling back on
// error. Raw driver errors are returned as ErrStorage.
func (s *ContributionStore) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.StorageFailure("begin tx", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return domain.StorageFailure("transaction", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.StorageFailure("commit", err)
	}
	return nil
}
