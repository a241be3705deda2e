package tier

import (
	"math"

	"github.com/rogers-f/tierforge/internal/domain"
)

// Progress reports, per requirement field, how far c is toward next.
// Percentages are clamped to [0,100]; a zero requirement counts as complete.
func Progress(c domain.Counters, next domain.TierDefinition) []domain.ProgressItem {
	req := next.Requirement
	return []domain.ProgressItem{
		progressItem("total_score", float64(c.TotalScore), float64(req.TotalScore)),
		progressItem("commit_count", float64(c.CommitCount), float64(req.CommitCount)),
		progressItem("models_trained_count", float64(c.ModelsTrained), float64(req.ModelsTrained)),
		progressItem("datasets_created_count", float64(c.DatasetsCreated), float64(req.DatasetsCreated)),
		progressItem("community_help_units", float64(c.CommunityHelpUnits), float64(req.CommunityHelpUnits)),
		progressItem("uptime_hours", c.UptimeHours, req.UptimeHours),
	}
}

func progressItem(field string, current, required float64) domain.ProgressItem {
	pct := 100.0
	if required > 0 {
		pct = math.Max(0, math.Min(100, current/required*100))
	}
	return domain.ProgressItem{
		Field:    field,
		Current:  current,
		Required: required,
		Percent:  math.Round(pct*100) / 100,
	}
}
