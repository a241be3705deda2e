// Package domain defines the core types for tierforge: agents, their
// contribution events, the tier catalog entries and evaluation results.
package domain

import "time"

// TierRank is a tier's position in catalog order. Rank 0 is the lowest tier.
type TierRank int

// TierName identifies a tier by its machine name (e.g. "apprentice").
type TierName string

// HardwareSpec describes the resources allocated to a tier.
type HardwareSpec struct {
	CPUs             int     `json:"cpus" yaml:"cpus"`
	MemoryGB         int     `json:"memory_gb" yaml:"memory_gb"`
	StorageGB        int     `json:"storage_gb" yaml:"storage_gb"`
	AcceleratorCount int     `json:"accelerator_count" yaml:"accelerator_count"`
	AcceleratorType  string  `json:"accelerator_type,omitempty" yaml:"accelerator_type"`
	MaxInstances     int     `json:"max_instances" yaml:"max_instances"`
	HourlyCostUSD    float64 `json:"hourly_cost_usd" yaml:"hourly_cost_usd"`
}

// HasAccelerator reports whether h allocates any accelerator.
func (h HardwareSpec) HasAccelerator() bool {
	return h.AcceleratorCount > 0
}

// Requirement holds the minimum accumulated counters for a tier.
type Requirement struct {
	TotalScore         int64   `json:"total_score" yaml:"total_score"`
	CommitCount        int64   `json:"commit_count" yaml:"commit_count"`
	ModelsTrained      int64   `json:"models_trained_count" yaml:"models_trained_count"`
	DatasetsCreated    int64   `json:"datasets_created_count" yaml:"datasets_created_count"`
	CommunityHelpUnits int64   `json:"community_help_units" yaml:"community_help_units"`
	UptimeHours        float64 `json:"uptime_hours" yaml:"uptime_hours"`
}

// BalanceMinima are the per-tier floors of the balance gate.
type BalanceMinima struct {
	ServiceRatio float64 `json:"service_ratio" yaml:"service_ratio"`
	Consistency  float64 `json:"consistency" yaml:"consistency"`
	NonDominance float64 `json:"non_dominance" yaml:"non_dominance"`
}

// TierDefinition is one immutable entry of the tier catalog.
type TierDefinition struct {
	Rank        TierRank      `json:"rank" yaml:"-"`
	Name        TierName      `json:"name" yaml:"name"`
	Label       string        `json:"label" yaml:"label"`
	Hardware    HardwareSpec  `json:"hardware" yaml:"hardware"`
	Requirement Requirement   `json:"requirement" yaml:"requirement"`
	Balance     BalanceMinima `json:"balance" yaml:"balance"`
}

// Counters are an agent's accumulated contribution metrics.
// Every field is monotonically non-decreasing.
type Counters struct {
	TotalScore         int64   `json:"total_score"`
	CommitCount        int64   `json:"commit_count"`
	ModelsTrained      int64   `json:"models_trained_count"`
	DatasetsCreated    int64   `json:"datasets_created_count"`
	CommunityHelpUnits int64   `json:"community_help_units"`
	UptimeHours        float64 `json:"uptime_hours"`
	ActiveDays         int64   `json:"active_days"`
}

// Agent is a registered contributor and its accumulated state.
type Agent struct {
	AgentID      string    `json:"agent_id"`
	DisplayName  string    `json:"display_name"`
	CurrentTier  TierRank  `json:"current_tier"`
	Counters     Counters  `json:"counters"`
	LastActiveAt time.Time `json:"last_active_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// ContributionKind is one of the fixed set of contribution types.
type ContributionKind string

const (
	KindCodeCommit      ContributionKind = "code_commit"
	KindModelTraining   ContributionKind = "model_training"
	KindDatasetCreation ContributionKind = "dataset_creation"
	KindCommunityHelp   ContributionKind = "community_help"
	KindUptime          ContributionKind = "uptime"
)

// ContributionKinds lists every valid kind in a stable order.
var ContributionKinds = []ContributionKind{
	KindCodeCommit,
	KindModelTraining,
	KindDatasetCreation,
	KindCommunityHelp,
	KindUptime,
}

// Valid reports whether k is one of the fixed contribution kinds.
func (k ContributionKind) Valid() bool {
	for _, known := range ContributionKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ContributionEvent is an immutable entry of the append-only contribution log.
type ContributionEvent struct {
	ID            int64            `json:"id"`
	AgentID       string           `json:"agent_id"`
	Kind          ContributionKind `json:"kind"`
	ComputedValue int64            `json:"computed_value"`
	Description   string           `json:"description"`
	MetadataJSON  string           `json:"metadata"`
	RecordedAt    time.Time        `json:"recorded_at"`
}

// CounterDelta is the additive change one event applies to an agent's counters.
// ActiveDays is always 1 for a recorded event.
type CounterDelta struct {
	TotalScore         int64
	CommitCount        int64
	ModelsTrained      int64
	DatasetsCreated    int64
	CommunityHelpUnits int64
	UptimeHours        float64
	ActiveDays         int64
	LastActiveAt       time.Time
}

// ProgressItem describes progress toward one requirement field of the next tier.
type ProgressItem struct {
	Field    string  `json:"field"`
	Current  float64 `json:"current"`
	Required float64 `json:"required"`
	Percent  float64 `json:"percent"`
}

// TierTransitionResult is the outcome of one tier evaluation for an agent.
type TierTransitionResult struct {
	AgentID      string         `json:"agent_id"`
	PreviousTier TierName       `json:"previous_tier"`
	NewTier      TierName       `json:"new_tier"`
	Changed      bool           `json:"changed"`
	NextTier     TierName       `json:"next_tier,omitempty"`
	Progress     []ProgressItem `json:"progress,omitempty"`
}

// TierTransition is a persisted record of one forward tier change.
type TierTransition struct {
	ID         string    `json:"id"`
	AgentID    string    `json:"agent_id"`
	FromRank   TierRank  `json:"from_rank"`
	ToRank     TierRank  `json:"to_rank"`
	TotalScore int64     `json:"total_score"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProvisioningDirective is a structured, non-executed description of the
// infrastructure an agent's tier entitles it to.
type ProvisioningDirective struct {
	AgentID  string       `json:"agent_id"`
	Tier     TierName     `json:"tier"`
	Label    string       `json:"label"`
	Hardware HardwareSpec `json:"hardware"`
	Command  string       `json:"command"`
}

// LeaderboardEntry is one row of the ranked leaderboard projection.
type LeaderboardEntry struct {
	Rank     int          `json:"rank"`
	Agent    Agent        `json:"agent"`
	Tier     TierName     `json:"tier"`
	Hardware HardwareSpec `json:"hardware"`
}

// GateDecision is the result of checking one gate for one tier.
type GateDecision struct {
	Gate     string   `json:"gate"`
	Allow    bool     `json:"allow"`
	Blockers []string `json:"blockers,omitempty"`
}

// TierDecision collects every gate decision for one tier.
type TierDecision struct {
	Tier      TierName       `json:"tier"`
	Qualifies bool           `json:"qualifies"`
	Gates     []GateDecision `json:"gates"`
}
