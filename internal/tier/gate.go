// Package tier decides which access tier an agent's accumulated counters
// earn, and applies forward-only tier transitions.
package tier

import (
	"fmt"
	"math"

	"github.com/rogers-f/tierforge/internal/domain"
)

const (
	// consistencyWindowDays is the activity count that yields full consistency.
	consistencyWindowDays = 30.0
	// dominanceScale is the total score at which non-dominance bottoms out.
	dominanceScale = 10000.0
	// dominanceCap bounds how far non-dominance can fall.
	dominanceCap = 0.5

	// epsilon absorbs the last-bit rounding of a measure recomputed from
	// integer counters, e.g. 1-257/10000 lands one ulp below 0.9743. It is far
	// smaller than any ratio step reachable with realistic counters.
	epsilon = 1e-12
)

// Gate checks one eligibility condition of an agent for a tier.
type Gate interface {
	Name() string
	Check(c domain.Counters, t domain.TierDefinition) domain.GateDecision
}

// ThresholdGate requires every counter to meet the tier's requirement.
type ThresholdGate struct{}

// Name returns the gate name.
func (ThresholdGate) Name() string {
	return "threshold"
}

// Check compares each counter against the tier's minimum.
func (g ThresholdGate) Check(c domain.Counters, t domain.TierDefinition) domain.GateDecision {
	d := domain.GateDecision{Gate: g.Name(), Allow: true}
	req := t.Requirement

	block := func(field string, have, need float64) {
		d.Allow = false
		d.Blockers = append(d.Blockers, fmt.Sprintf("%s %s < %s", field, formatNum(have), formatNum(need)))
	}

	if c.TotalScore < req.TotalScore {
		block("total_score", float64(c.TotalScore), float64(req.TotalScore))
	}
	if c.CommitCount < req.CommitCount {
		block("commit_count", float64(c.CommitCount), float64(req.CommitCount))
	}
	if c.ModelsTrained < req.ModelsTrained {
		block("models_trained_count", float64(c.ModelsTrained), float64(req.ModelsTrained))
	}
	if c.DatasetsCreated < req.DatasetsCreated {
		block("datasets_created_count", float64(c.DatasetsCreated), float64(req.DatasetsCreated))
	}
	if c.CommunityHelpUnits < req.CommunityHelpUnits {
		block("community_help_units", float64(c.CommunityHelpUnits), float64(req.CommunityHelpUnits))
	}
	if c.UptimeHours < req.UptimeHours {
		block("uptime_hours", c.UptimeHours, req.UptimeHours)
	}
	return d
}

// BalanceGate rejects profiles that are critically skewed: too little service
// relative to total score, too few active days, or a dominating total score.
type BalanceGate struct{}

// Name returns the gate name.
func (BalanceGate) Name() string {
	return "balance"
}

// Check compares the three balance measures against the tier's minima.
func (g BalanceGate) Check(c domain.Counters, t domain.TierDefinition) domain.GateDecision {
	d := domain.GateDecision{Gate: g.Name(), Allow: true}
	m := t.Balance

	measures := []struct {
		name string
		have float64
		need float64
	}{
		{"service_ratio", ServiceRatio(c), m.ServiceRatio},
		{"consistency", Consistency(c), m.Consistency},
		{"non_dominance", NonDominance(c), m.NonDominance},
	}
	for _, ms := range measures {
		if ms.have+epsilon < ms.need {
			d.Allow = false
			d.Blockers = append(d.Blockers, fmt.Sprintf("%s %.4f < %.4f", ms.name, ms.have, ms.need))
		}
	}
	return d
}

// ServiceRatio is community help units per point of total score.
func ServiceRatio(c domain.Counters) float64 {
	return float64(c.CommunityHelpUnits) / math.Max(float64(c.TotalScore), 1)
}

// Consistency is the share of a 30-day window the agent has been active, capped at 1.
func Consistency(c domain.Counters) float64 {
	return math.Min(float64(c.ActiveDays)/consistencyWindowDays, 1.0)
}

// NonDominance falls from 1.0 toward 0.5 as total score grows to 10000.
func NonDominance(c domain.Counters) float64 {
	return 1.0 - math.Min(float64(c.TotalScore)/dominanceScale, dominanceCap)
}

func formatNum(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
