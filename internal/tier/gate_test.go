package tier

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/rogers-f/tierforge/internal/catalog"
	"github.com/rogers-f/tierforge/internal/domain"
)

func TestBalanceMeasures(t *testing.T) {
	tests := []struct {
		name        string
		c           domain.Counters
		service     float64
		consistency float64
		nonDom      float64
	}{
		{"zero", domain.Counters{}, 0, 0, 1},
		{"help without score", domain.Counters{CommunityHelpUnits: 4}, 4, 0, 1},
		{"typical", domain.Counters{TotalScore: 1000, CommunityHelpUnits: 50, ActiveDays: 15}, 0.05, 0.5, 0.9},
		{"capped", domain.Counters{TotalScore: 40000, CommunityHelpUnits: 400, ActiveDays: 90}, 0.01, 1, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.service, ServiceRatio(tt.c), 1e-12)
			assert.InDelta(t, tt.consistency, Consistency(tt.c), 1e-12)
			assert.InDelta(t, tt.nonDom, NonDominance(tt.c), 1e-12)
		})
	}
}

func TestThresholdGate(t *testing.T) {
	apprentice, err := catalog.Default().ByName(catalog.Apprentice)
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}

	d := ThresholdGate{}.Check(domain.Counters{TotalScore: 100, CommitCount: 5, ModelsTrained: 1, CommunityHelpUnits: 10}, apprentice)
	assert.True(t, d.Allow)
	assert.Empty(t, d.Blockers)

	d = ThresholdGate{}.Check(domain.Counters{TotalScore: 600, CommitCount: 5, ModelsTrained: 1, CommunityHelpUnits: 9}, apprentice)
	assert.False(t, d.Allow)
	assert.Equal(t, []string{"community_help_units 9 < 10"}, d.Blockers)
	assert.Equal(t, "threshold", d.Gate)
}

func TestBalanceGate(t *testing.T) {
	expert, err := catalog.Default().ByName(catalog.Expert)
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}

	ok := domain.Counters{TotalScore: 5000, CommunityHelpUnits: 100, ActiveDays: 12}
	d := BalanceGate{}.Check(ok, expert)
	assert.True(t, d.Allow, "blockers: %v", d.Blockers)

	skewed := domain.Counters{TotalScore: 9000, CommunityHelpUnits: 90, ActiveDays: 11}
	d = BalanceGate{}.Check(skewed, expert)
	assert.False(t, d.Allow)
	assert.Equal(t, []string{
		"service_ratio 0.0100 < 0.0200",
		"consistency 0.3667 < 0.4000",
	}, d.Blockers)
}

func TestBalanceGate_Boundaries(t *testing.T) {
	tests := []struct {
		name  string
		c     domain.Counters
		min   domain.BalanceMinima
		allow bool
	}{
		{"service ratio at minimum", domain.Counters{TotalScore: 5000, CommunityHelpUnits: 100}, domain.BalanceMinima{ServiceRatio: 0.02}, true},
		{"service ratio just below", domain.Counters{TotalScore: 5000, CommunityHelpUnits: 99}, domain.BalanceMinima{ServiceRatio: 0.02}, false},
		{"consistency at minimum", domain.Counters{ActiveDays: 18}, domain.BalanceMinima{Consistency: 0.6}, true},
		{"consistency just below", domain.Counters{ActiveDays: 17}, domain.BalanceMinima{Consistency: 0.6}, false},
		{"non-dominance rounded below its decimal", domain.Counters{TotalScore: 257}, domain.BalanceMinima{NonDominance: 0.9743}, true},
		{"non-dominance one point short", domain.Counters{TotalScore: 258}, domain.BalanceMinima{NonDominance: 0.9743}, false},
		{"a billionth below blocks", domain.Counters{TotalScore: 257}, domain.BalanceMinima{NonDominance: 0.9743 + 1e-9}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := BalanceGate{}.Check(tt.c, domain.TierDefinition{Balance: tt.min})
			assert.Equal(t, tt.allow, d.Allow, "blockers: %v", d.Blockers)
		})
	}
}

func TestProgress(t *testing.T) {
	journeyman, err := catalog.Default().ByName(catalog.Journeyman)
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}

	c := domain.Counters{TotalScore: 250, CommitCount: 40, ModelsTrained: 1, CommunityHelpUnits: 10, UptimeHours: 6}
	got := Progress(c, journeyman)
	want := []domain.ProgressItem{
		{Field: "total_score", Current: 250, Required: 1000, Percent: 25},
		{Field: "commit_count", Current: 40, Required: 20, Percent: 100},
		{Field: "models_trained_count", Current: 1, Required: 3, Percent: 33.33},
		{Field: "datasets_created_count", Current: 0, Required: 1, Percent: 0},
		{Field: "community_help_units", Current: 10, Required: 50, Percent: 20},
		{Field: "uptime_hours", Current: 6, Required: 24, Percent: 25},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Progress mismatch (-want +got):\n%s", diff)
	}
}

func TestProgress_ZeroRequirementIsComplete(t *testing.T) {
	apprentice, err := catalog.Default().ByName(catalog.Apprentice)
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	for _, item := range Progress(domain.Counters{}, apprentice) {
		if item.Required == 0 && item.Percent != 100 {
			t.Errorf("%s: percent = %v, want 100 for zero requirement", item.Field, item.Percent)
		}
		if item.Percent < 0 || item.Percent > 100 {
			t.Errorf("%s: percent %v outside [0,100]", item.Field, item.Percent)
		}
	}
}
