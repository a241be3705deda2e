package tier

import (
	"context"
	"database/sql"

	"github.com/rogers-f/tierforge/internal/catalog"
	"github.com/rogers-f/tierforge/internal/domain"
	"github.com/rogers-f/tierforge/internal/store"
)

// TransitionService re-evaluates an agent's tier and persists upgrades.
// It never demotes an agent.
type TransitionService struct {
	Store     *store.ContributionStore
	Catalog   *catalog.Catalog
	Evaluator *Evaluator
}

// NewTransitionService creates a TransitionService with the default gates.
func NewTransitionService(s *store.ContributionStore, cat *catalog.Catalog) *TransitionService {
	return &TransitionService{
		Store:     s,
		Catalog:   cat,
		Evaluator: NewEvaluator(),
	}
}

// Recheck loads the agent, evaluates its tier and writes the new tier if it
// is strictly higher than the stored one. The read, the evaluation and the
// write share one transaction. When the tier is unchanged the result carries
// progress toward the next tier, or none at the top tier.
func (s *TransitionService) Recheck(ctx context.Context, agentID string) (*domain.TierTransitionResult, error) {
	var result *domain.TierTransitionResult

	err := s.Store.WithTx(ctx, func(tx *sql.Tx) error {
		agent, err := s.Store.Agents.GetByID(ctx, tx, agentID)
		if err != nil {
			return err
		}

		evaluated := s.Evaluator.Evaluate(*agent, s.Catalog)
		current := agent.CurrentTier

		result = &domain.TierTransitionResult{
			AgentID:      agentID,
			PreviousTier: s.Catalog.NameOf(current),
			NewTier:      s.Catalog.NameOf(current),
		}

		if evaluated.Rank > current {
			changed, err := s.Store.SetTierTx(ctx, tx, agentID, evaluated.Rank)
			if err != nil {
				return err
			}
			if changed {
				result.NewTier = evaluated.Name
				result.Changed = true
			}
		}

		if !result.Changed {
			if next, ok := s.Catalog.Next(current); ok {
				result.NextTier = next.Name
				result.Progress = Progress(agent.Counters, next)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Explain returns the gate decisions for every tier for the stored agent.
func (s *TransitionService) Explain(ctx context.Context, agentID string) ([]domain.TierDecision, error) {
	agent, err := s.Store.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return s.Evaluator.Explain(*agent, s.Catalog), nil
}
