package tier

import (
	"github.com/rogers-f/tierforge/internal/catalog"
	"github.com/rogers-f/tierforge/internal/domain"
)

// Evaluator runs a fixed list of gates against each tier of a catalog.
// It holds no state between calls.
type Evaluator struct {
	Gates []Gate
}

// NewEvaluator creates an evaluator with the threshold and balance gates.
func NewEvaluator() *Evaluator {
	return &Evaluator{Gates: []Gate{ThresholdGate{}, BalanceGate{}}}
}

var defaultEvaluator = NewEvaluator()

// Evaluate returns the highest tier agent qualifies for using the default gates.
func Evaluate(agent domain.Agent, cat *catalog.Catalog) domain.TierDefinition {
	return defaultEvaluator.Evaluate(agent, cat)
}

// Explain returns every tier's gate decisions using the default gates.
func Explain(agent domain.Agent, cat *catalog.Catalog) []domain.TierDecision {
	return defaultEvaluator.Explain(agent, cat)
}

// Evaluate walks the catalog from the highest tier down and returns the first
// tier whose gates all allow the agent. The lowest tier is the floor.
// agent must be a consistent snapshot of the counters.
func (e *Evaluator) Evaluate(agent domain.Agent, cat *catalog.Catalog) domain.TierDefinition {
	tiers := cat.Tiers()
	for i := len(tiers) - 1; i > 0; i-- {
		if e.qualifies(agent.Counters, tiers[i]) {
			return tiers[i]
		}
	}
	return tiers[0]
}

// Explain returns, lowest tier first, whether the agent qualifies for each
// tier and the blockers reported by every gate.
func (e *Evaluator) Explain(agent domain.Agent, cat *catalog.Catalog) []domain.TierDecision {
	tiers := cat.Tiers()
	out := make([]domain.TierDecision, 0, len(tiers))
	for _, t := range tiers {
		td := domain.TierDecision{Tier: t.Name, Qualifies: true}
		for _, g := range e.Gates {
			d := g.Check(agent.Counters, t)
			td.Gates = append(td.Gates, d)
			if !d.Allow {
				td.Qualifies = false
			}
		}
		out = append(out, td)
	}
	return out
}

func (e *Evaluator) qualifies(c domain.Counters, t domain.TierDefinition) bool {
	for _, g := range e.Gates {
		if !g.Check(c, t).Allow {
			return false
		}
	}
	return true
}
