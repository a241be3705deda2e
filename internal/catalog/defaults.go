package catalog

import "github.com/rogers-f/tierforge/internal/domain"

// Tier names of the built-in catalog.
const (
	Novice      domain.TierName = "novice"
	Apprentice  domain.TierName = "apprentice"
	Journeyman  domain.TierName = "journeyman"
	Expert      domain.TierName = "expert"
	Master      domain.TierName = "master"
	Grandmaster domain.TierName = "grandmaster"
	Legend      domain.TierName = "legend"
)

// DefaultTiers returns the built-in tier definitions, lowest first.
// Accelerators start at the expert tier.
func DefaultTiers() []domain.TierDefinition {
	return []domain.TierDefinition{
		{
			Name:     Novice,
			Label:    "Novice",
			Hardware: domain.HardwareSpec{CPUs: 2, MemoryGB: 4, StorageGB: 50, MaxInstances: 1, HourlyCostUSD: 0.05},
		},
		{
			Name:        Apprentice,
			Label:       "Apprentice",
			Hardware:    domain.HardwareSpec{CPUs: 4, MemoryGB: 16, StorageGB: 100, MaxInstances: 2, HourlyCostUSD: 0.20},
			Requirement: domain.Requirement{TotalScore: 100, CommitCount: 5, ModelsTrained: 1, CommunityHelpUnits: 10},
			Balance:     domain.BalanceMinima{ServiceRatio: 0.01, Consistency: 0.1, NonDominance: 0.1},
		},
		{
			Name:        Journeyman,
			Label:       "Journeyman",
			Hardware:    domain.HardwareSpec{CPUs: 8, MemoryGB: 32, StorageGB: 250, MaxInstances: 3, HourlyCostUSD: 0.50},
			Requirement: domain.Requirement{TotalScore: 1000, CommitCount: 20, ModelsTrained: 3, DatasetsCreated: 1, CommunityHelpUnits: 50, UptimeHours: 24},
			Balance:     domain.BalanceMinima{ServiceRatio: 0.015, Consistency: 0.2, NonDominance: 0.2},
		},
		{
			Name:        Expert,
			Label:       "Expert",
			Hardware:    domain.HardwareSpec{CPUs: 16, MemoryGB: 64, StorageGB: 500, AcceleratorCount: 1, AcceleratorType: "nvidia-t4", MaxInstances: 4, HourlyCostUSD: 1.20},
			Requirement: domain.Requirement{TotalScore: 5000, CommitCount: 50, ModelsTrained: 10, DatasetsCreated: 3, CommunityHelpUnits: 150, UptimeHours: 168},
			Balance:     domain.BalanceMinima{ServiceRatio: 0.02, Consistency: 0.4, NonDominance: 0.3},
		},
		{
			Name:        Master,
			Label:       "Master",
			Hardware:    domain.HardwareSpec{CPUs: 32, MemoryGB: 128, StorageGB: 1000, AcceleratorCount: 2, AcceleratorType: "nvidia-a10g", MaxInstances: 6, HourlyCostUSD: 3.50},
			Requirement: domain.Requirement{TotalScore: 15000, CommitCount: 150, ModelsTrained: 25, DatasetsCreated: 10, CommunityHelpUnits: 500, UptimeHours: 720},
			Balance:     domain.BalanceMinima{ServiceRatio: 0.025, Consistency: 0.6, NonDominance: 0.4},
		},
		{
			Name:        Grandmaster,
			Label:       "Grandmaster",
			Hardware:    domain.HardwareSpec{CPUs: 64, MemoryGB: 256, StorageGB: 2000, AcceleratorCount: 4, AcceleratorType: "nvidia-a100", MaxInstances: 8, HourlyCostUSD: 12.00},
			Requirement: domain.Requirement{TotalScore: 50000, CommitCount: 400, ModelsTrained: 60, DatasetsCreated: 25, CommunityHelpUnits: 1500, UptimeHours: 2160},
			Balance:     domain.BalanceMinima{ServiceRatio: 0.03, Consistency: 0.8, NonDominance: 0.45},
		},
		{
			Name:        Legend,
			Label:       "Legend",
			Hardware:    domain.HardwareSpec{CPUs: 96, MemoryGB: 768, StorageGB: 4000, AcceleratorCount: 8, AcceleratorType: "nvidia-h100", MaxInstances: 16, HourlyCostUSD: 40.00},
			Requirement: domain.Requirement{TotalScore: 150000, CommitCount: 1000, ModelsTrained: 150, DatasetsCreated: 60, CommunityHelpUnits: 5000, UptimeHours: 8760},
			Balance:     domain.BalanceMinima{ServiceRatio: 0.03, Consistency: 1.0, NonDominance: 0.5},
		},
	}
}

// Default returns a catalog built from DefaultTiers.
func Default() *Catalog {
	return MustNew(DefaultTiers())
}
