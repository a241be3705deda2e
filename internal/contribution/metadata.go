// Package contribution validates, classifies and scores contribution events
// and records them against an agent.
package contribution

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/rogers-f/tierforge/internal/domain"
)

// Flat per-event values for kinds that are not scaled by their metadata.
const (
	ModelTrainingValue   int64 = 100
	DatasetCreationValue int64 = 250

	maxHelpfulness = 10.0
	maxQuality     = 10.0

	// Per-event ceilings. They keep every computed value far inside int64.
	maxLinesChanged int64 = 10_000_000
	maxUsersHelped  int64 = 1_000_000
	maxUptimeHours        = 24 * 366.0
)

// Contribution is the kind-specific metadata of one event.
type Contribution interface {
	Kind() domain.ContributionKind
	// Validate reports malformed or out-of-range fields as ErrInvalidContribution.
	Validate() error
	// Score returns the event's computed value and fills the kind-specific
	// counter deltas.
	Score(delta *domain.CounterDelta) int64
	// Describe renders a short human-readable summary.
	Describe() string
}

// CodeCommit is a code contribution. QualityScore is recorded but does not
// scale the score.
type CodeCommit struct {
	LinesChanged int64   `mapstructure:"lines_changed" json:"lines_changed"`
	QualityScore float64 `mapstructure:"quality_score" json:"quality_score"`
}

func (CodeCommit) Kind() domain.ContributionKind { return domain.KindCodeCommit }

func (c CodeCommit) Validate() error {
	if c.LinesChanged < 0 || c.LinesChanged > maxLinesChanged {
		return invalid(c.Kind(), "lines_changed must be in [0,%d], got %d", maxLinesChanged, c.LinesChanged)
	}
	if !inRange(c.QualityScore, 0, maxQuality) {
		return invalid(c.Kind(), "quality_score must be in [0,10], got %v", c.QualityScore)
	}
	return nil
}

func (c CodeCommit) Score(delta *domain.CounterDelta) int64 {
	delta.CommitCount = 1
	return c.LinesChanged
}

func (c CodeCommit) Describe() string {
	return fmt.Sprintf("code_commit: %d lines (quality %.1f)", c.LinesChanged, c.QualityScore)
}

// ModelTraining is a trained-model contribution.
type ModelTraining struct {
	ModelName string `mapstructure:"model_name" json:"model_name"`
}

func (ModelTraining) Kind() domain.ContributionKind { return domain.KindModelTraining }

func (m ModelTraining) Validate() error {
	if strings.TrimSpace(m.ModelName) == "" {
		return invalid(m.Kind(), "model_name is required")
	}
	return nil
}

func (m ModelTraining) Score(delta *domain.CounterDelta) int64 {
	delta.ModelsTrained = 1
	return ModelTrainingValue
}

func (m ModelTraining) Describe() string {
	return "model_training: " + m.ModelName
}

// DatasetCreation is a published-dataset contribution.
type DatasetCreation struct {
	DatasetName string `mapstructure:"dataset_name" json:"dataset_name"`
	Samples     int64  `mapstructure:"samples" json:"samples"`
}

func (DatasetCreation) Kind() domain.ContributionKind { return domain.KindDatasetCreation }

func (d DatasetCreation) Validate() error {
	if strings.TrimSpace(d.DatasetName) == "" {
		return invalid(d.Kind(), "dataset_name is required")
	}
	if d.Samples < 0 {
		return invalid(d.Kind(), "samples must be >= 0, got %d", d.Samples)
	}
	return nil
}

func (d DatasetCreation) Score(delta *domain.CounterDelta) int64 {
	delta.DatasetsCreated = 1
	return DatasetCreationValue
}

func (d DatasetCreation) Describe() string {
	return fmt.Sprintf("dataset_creation: %s (%d samples)", d.DatasetName, d.Samples)
}

// CommunityHelp is help rendered to other users.
type CommunityHelp struct {
	UsersHelped      int64   `mapstructure:"users_helped" json:"users_helped"`
	HelpfulnessScore float64 `mapstructure:"helpfulness_score" json:"helpfulness_score"`
}

func (CommunityHelp) Kind() domain.ContributionKind { return domain.KindCommunityHelp }

func (h CommunityHelp) Validate() error {
	if h.UsersHelped < 0 || h.UsersHelped > maxUsersHelped {
		return invalid(h.Kind(), "users_helped must be in [0,%d], got %d", maxUsersHelped, h.UsersHelped)
	}
	if !inRange(h.HelpfulnessScore, 0, maxHelpfulness) {
		return invalid(h.Kind(), "helpfulness_score must be in [0,10], got %v", h.HelpfulnessScore)
	}
	return nil
}

func (h CommunityHelp) Score(delta *domain.CounterDelta) int64 {
	delta.CommunityHelpUnits = h.UsersHelped
	return int64(math.Round(float64(h.UsersHelped) * h.HelpfulnessScore))
}

func (h CommunityHelp) Describe() string {
	return fmt.Sprintf("community_help: %d users (helpfulness %.1f)", h.UsersHelped, h.HelpfulnessScore)
}

// Uptime is hours of service availability.
type Uptime struct {
	Hours float64 `mapstructure:"hours" json:"hours"`
}

func (Uptime) Kind() domain.ContributionKind { return domain.KindUptime }

func (u Uptime) Validate() error {
	if math.IsNaN(u.Hours) || u.Hours <= 0 || u.Hours > maxUptimeHours {
		return invalid(u.Kind(), "hours must be in (0,%v], got %v", maxUptimeHours, u.Hours)
	}
	return nil
}

func (u Uptime) Score(delta *domain.CounterDelta) int64 {
	delta.UptimeHours = u.Hours
	return int64(math.Round(u.Hours))
}

func (u Uptime) Describe() string {
	return fmt.Sprintf("uptime: %.2f hours", u.Hours)
}

// Decode builds the typed contribution for kind from an untyped metadata
// map. Every field of the variant is required and unknown keys are rejected.
// An optional "description" key is returned separately.
func Decode(kind domain.ContributionKind, metadata map[string]any) (Contribution, string, error) {
	fields := make(map[string]any, len(metadata))
	for k, v := range metadata {
		fields[k] = v
	}

	var description string
	if raw, ok := fields["description"]; ok {
		s, isString := raw.(string)
		if !isString {
			return nil, "", invalid(kind, "description must be a string")
		}
		description = s
		delete(fields, "description")
	}

	var target Contribution
	switch kind {
	case domain.KindCodeCommit:
		target = &CodeCommit{}
	case domain.KindModelTraining:
		target = &ModelTraining{}
	case domain.KindDatasetCreation:
		target = &DatasetCreation{}
	case domain.KindCommunityHelp:
		target = &CommunityHelp{}
	case domain.KindUptime:
		target = &Uptime{}
	default:
		return nil, "", domain.Detail(domain.ErrInvalidContribution, "unknown kind %q", kind)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		ErrorUnset:       true,
		DecodeHook:       mapstructure.DecodeHookFuncType(integralFloats),
	})
	if err != nil {
		return nil, "", fmt.Errorf("metadata decoder: %w", err)
	}
	if err := dec.Decode(fields); err != nil {
		return nil, "", invalid(kind, "%v", err)
	}

	c := deref(target)
	if err := c.Validate(); err != nil {
		return nil, "", err
	}
	return c, description, nil
}

// deref turns the decode target back into a value so callers never share it.
func deref(c Contribution) Contribution {
	switch v := c.(type) {
	case *CodeCommit:
		return *v
	case *ModelTraining:
		return *v
	case *DatasetCreation:
		return *v
	case *CommunityHelp:
		return *v
	case *Uptime:
		return *v
	}
	return c
}

// integralFloats refuses to truncate a fractional or out-of-range float into
// an integer field.
func integralFloats(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Int64 && to.Kind() != reflect.Int {
		return data, nil
	}
	if from.Kind() != reflect.Float32 && from.Kind() != reflect.Float64 {
		return data, nil
	}
	f := reflect.ValueOf(data).Float()
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, fmt.Errorf("%v is not a whole number", data)
	}
	return data, nil
}

func invalid(kind domain.ContributionKind, format string, args ...any) error {
	return domain.Detail(domain.ErrInvalidContribution, "%s: %s", kind, fmt.Sprintf(format, args...))
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
