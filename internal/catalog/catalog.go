// Package catalog holds the immutable registry of access tiers.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rogers-f/tierforge/internal/domain"
)

// TierCount is the number of ranks every catalog must define.
const TierCount = 7

// Catalog is an ordered, immutable sequence of tier definitions.
// It is safe for concurrent use.
type Catalog struct {
	tiers  []domain.TierDefinition
	byName map[domain.TierName]domain.TierRank
}

// New validates defs and builds a catalog. Ranks are assigned from slice order,
// lowest tier first.
func New(defs []domain.TierDefinition) (*Catalog, error) {
	tiers := make([]domain.TierDefinition, len(defs))
	copy(tiers, defs)
	for i := range tiers {
		tiers[i].Rank = domain.TierRank(i)
	}
	if err := validate(tiers); err != nil {
		return nil, err
	}

	byName := make(map[domain.TierName]domain.TierRank, len(tiers))
	for _, t := range tiers {
		byName[t.Name] = t.Rank
	}
	return &Catalog{tiers: tiers, byName: byName}, nil
}

// MustNew is like New but panics on an invalid definition list.
func MustNew(defs []domain.TierDefinition) *Catalog {
	c, err := New(defs)
	if err != nil {
		panic(err)
	}
	return c
}

type fileFormat struct {
	Tiers []domain.TierDefinition `yaml:"tiers"`
}

// LoadFile reads a YAML tier catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML tier catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, domain.WrapEngineError(domain.ErrCatalogInvalid.Code, domain.ErrCatalogInvalid.Message, err)
	}
	return New(f.Tiers)
}

// Len returns the number of tiers.
func (c *Catalog) Len() int {
	return len(c.tiers)
}

// Tiers returns a copy of the definitions in rank order.
func (c *Catalog) Tiers() []domain.TierDefinition {
	out := make([]domain.TierDefinition, len(c.tiers))
	copy(out, c.tiers)
	return out
}

// Lowest returns the floor tier.
func (c *Catalog) Lowest() domain.TierDefinition {
	return c.tiers[0]
}

// Highest returns the top tier.
func (c *Catalog) Highest() domain.TierDefinition {
	return c.tiers[len(c.tiers)-1]
}

// ByRank returns the tier at rank r.
func (c *Catalog) ByRank(r domain.TierRank) (domain.TierDefinition, error) {
	if r < 0 || int(r) >= len(c.tiers) {
		return domain.TierDefinition{}, domain.Detail(domain.ErrUnknownTier, "rank %d", r)
	}
	return c.tiers[r], nil
}

// ByName returns the tier with the given name.
func (c *Catalog) ByName(name domain.TierName) (domain.TierDefinition, error) {
	r, ok := c.byName[name]
	if !ok {
		return domain.TierDefinition{}, domain.Detail(domain.ErrUnknownTier, "%q", name)
	}
	return c.tiers[r], nil
}

// Next returns the tier directly above r, or false at the top.
func (c *Catalog) Next(r domain.TierRank) (domain.TierDefinition, bool) {
	if r < 0 || int(r)+1 >= len(c.tiers) {
		return domain.TierDefinition{}, false
	}
	return c.tiers[r+1], true
}

// NameOf returns the name of the tier at rank r, or an empty name if r is
// outside the catalog.
func (c *Catalog) NameOf(r domain.TierRank) domain.TierName {
	t, err := c.ByRank(r)
	if err != nil {
		return ""
	}
	return t.Name
}

func validate(tiers []domain.TierDefinition) error {
	var problems []string

	if len(tiers) != TierCount {
		problems = append(problems, fmt.Sprintf("expected %d tiers, got %d", TierCount, len(tiers)))
	}

	seen := make(map[domain.TierName]bool, len(tiers))
	for i, t := range tiers {
		if t.Name == "" {
			problems = append(problems, fmt.Sprintf("tier %d has no name", i))
		} else if seen[t.Name] {
			problems = append(problems, fmt.Sprintf("duplicate tier name %q", t.Name))
		}
		seen[t.Name] = true

		if t.Hardware.AcceleratorCount < 0 {
			problems = append(problems, fmt.Sprintf("%s: negative accelerator count", t.Name))
		}
		if t.Hardware.AcceleratorCount > 0 && t.Hardware.AcceleratorType == "" {
			problems = append(problems, fmt.Sprintf("%s: accelerator type required when count > 0", t.Name))
		}

		if i == 0 {
			if t.Requirement != (domain.Requirement{}) || t.Balance != (domain.BalanceMinima{}) {
				problems = append(problems, fmt.Sprintf("%s: lowest tier must have zero requirements", t.Name))
			}
			continue
		}

		prev := tiers[i-1]
		if t.Requirement.TotalScore <= prev.Requirement.TotalScore {
			problems = append(problems, fmt.Sprintf("%s: total_score must increase over %s", t.Name, prev.Name))
		}
		if !requirementAtLeast(t.Requirement, prev.Requirement) {
			problems = append(problems, fmt.Sprintf("%s: requirements must not decrease from %s", t.Name, prev.Name))
		}
		if !balanceAtLeast(t.Balance, prev.Balance) {
			problems = append(problems, fmt.Sprintf("%s: balance minima must not decrease from %s", t.Name, prev.Name))
		}
	}

	if len(problems) > 0 {
		return domain.Detail(domain.ErrCatalogInvalid, "%v", problems)
	}
	return nil
}

func requirementAtLeast(a, b domain.Requirement) bool {
	return a.CommitCount >= b.CommitCount &&
		a.ModelsTrained >= b.ModelsTrained &&
		a.DatasetsCreated >= b.DatasetsCreated &&
		a.CommunityHelpUnits >= b.CommunityHelpUnits &&
		a.UptimeHours >= b.UptimeHours
}

func balanceAtLeast(a, b domain.BalanceMinima) bool {
	return a.ServiceRatio >= b.ServiceRatio &&
		a.Consistency >= b.Consistency &&
		a.NonDominance >= b.NonDominance
}
