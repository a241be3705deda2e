package contribution

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rogers-f/tierforge/internal/domain"
)

// EventWriter persists an event together with its counter delta atomically.
type EventWriter interface {
	RecordContribution(ctx context.Context, event domain.ContributionEvent, delta domain.CounterDelta) (int64, error)
}

// Rechecker re-evaluates an agent's tier after its counters change.
type Rechecker interface {
	Recheck(ctx context.Context, agentID string) (*domain.TierTransitionResult, error)
}

// Recorder validates, scores and records contribution events, then triggers
// a tier recheck for the agent.
type Recorder struct {
	Store EventWriter
	Tiers Rechecker
	Now   func() time.Time
}

// NewRecorder creates a Recorder.
func NewRecorder(store EventWriter, tiers Rechecker) *Recorder {
	return &Recorder{Store: store, Tiers: tiers, Now: time.Now}
}

// RecordRaw decodes untyped metadata for kind and records it. This is the
// entry point for collaborators that receive metadata as key/value pairs.
func (r *Recorder) RecordRaw(ctx context.Context, agentID string, kind domain.ContributionKind, metadata map[string]any) (*domain.TierTransitionResult, error) {
	c, description, err := Decode(kind, metadata)
	if err != nil {
		return nil, err
	}
	return r.record(ctx, agentID, c, description)
}

// Record validates c and records it for agentID. Nothing is written if the
// contribution is invalid or the agent is unknown. The event stays durable
// even if the following tier recheck fails; Recheck can be retried on its own.
func (r *Recorder) Record(ctx context.Context, agentID string, c Contribution) (*domain.TierTransitionResult, error) {
	if c == nil {
		return nil, domain.Detail(domain.ErrInvalidContribution, "missing contribution")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return r.record(ctx, agentID, c, "")
}

func (r *Recorder) record(ctx context.Context, agentID string, c Contribution, description string) (*domain.TierTransitionResult, error) {
	event, delta, err := r.build(agentID, c, description)
	if err != nil {
		return nil, err
	}

	if _, err := r.Store.RecordContribution(ctx, event, delta); err != nil {
		return nil, err
	}

	return r.Tiers.Recheck(ctx, agentID)
}

func (r *Recorder) build(agentID string, c Contribution, description string) (domain.ContributionEvent, domain.CounterDelta, error) {
	now := r.Now()

	var delta domain.CounterDelta
	value := c.Score(&delta)
	delta.TotalScore = value
	// One increment per event, not per calendar day.
	delta.ActiveDays = 1
	delta.LastActiveAt = now

	metadata, err := json.Marshal(c)
	if err != nil {
		return domain.ContributionEvent{}, domain.CounterDelta{}, fmt.Errorf("encode metadata: %w", err)
	}
	if description == "" {
		description = c.Describe()
	}

	event := domain.ContributionEvent{
		AgentID:       agentID,
		Kind:          c.Kind(),
		ComputedValue: value,
		Description:   description,
		MetadataJSON:  string(metadata),
		RecordedAt:    now,
	}
	return event, delta, nil
}
