// Package leaderboard projects agents ranked by accumulated score.
package leaderboard

import (
	"context"

	"github.com/rogers-f/tierforge/internal/catalog"
	"github.com/rogers-f/tierforge/internal/domain"
)

// RankedLister lists agents by total score descending, ties broken by
// earliest last activity.
type RankedLister interface {
	ListAgentsRankedByScore(ctx context.Context, limit int) ([]domain.Agent, error)
}

// Service is a read-only view over the ranked agent list.
type Service struct {
	Agents  RankedLister
	Catalog *catalog.Catalog
}

// NewService creates a leaderboard Service.
func NewService(agents RankedLister, cat *catalog.Catalog) *Service {
	return &Service{Agents: agents, Catalog: cat}
}

// Top returns up to limit entries, best first, each with the hardware of the
// agent's current tier. limit must be positive.
func (s *Service) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, domain.Detail(domain.ErrInvalidArgument, "limit must be positive, got %d", limit)
	}
	agents, err := s.Agents.ListAgentsRankedByScore(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(agents))
	for i, a := range agents {
		def, err := s.Catalog.ByRank(a.CurrentTier)
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.LeaderboardEntry{
			Rank:     i + 1,
			Agent:    a,
			Tier:     def.Name,
			Hardware: def.Hardware,
		})
	}
	return entries, nil
}
