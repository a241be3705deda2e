package store

import (
	"context"
	"testing"
	"time"

	"github.com/rogers-f/tierforge/internal/domain"
)

func TestTransitionRepo_RecordAndList(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := &TransitionRepo{}
	now := time.Now()

	for _, id := range []string{"agent-1", "agent-2"} {
		if _, err := (&AgentRepo{}).InsertIfAbsent(ctx, db, id, id, now); err != nil {
			t.Fatalf("InsertIfAbsent %s: %v", id, err)
		}
	}

	records := []domain.TierTransition{
		{AgentID: "agent-1", FromRank: 0, ToRank: 1, TotalScore: 150, CreatedAt: now},
		{ID: "fixed-id", AgentID: "agent-1", FromRank: 1, ToRank: 3, TotalScore: 5200, CreatedAt: now.Add(time.Minute)},
		{AgentID: "agent-2", FromRank: 0, ToRank: 1, TotalScore: 120, CreatedAt: now},
	}

	for _, r := range records {
		id, err := repo.Record(ctx, db, r)
		if err != nil {
			t.Fatalf("Record %+v: %v", r, err)
		}
		if id == "" {
			t.Error("expected a generated id")
		}
	}

	got, err := repo.ListByAgent(ctx, db, "agent-1")
	if err != nil {
		t.Fatalf("ListByAgent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(got))
	}
	if got[0].ToRank != 1 || got[1].ToRank != 3 {
		t.Errorf("ranks = %d,%d, want 1,3", got[0].ToRank, got[1].ToRank)
	}
	if got[1].ID != "fixed-id" {
		t.Errorf("second ID = %q, want fixed-id", got[1].ID)
	}
	if got[1].TotalScore != 5200 {
		t.Errorf("TotalScore = %d, want 5200", got[1].TotalScore)
	}
}

func TestTransitionRepo_DuplicateID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := &TransitionRepo{}
	now := time.Now()

	if _, err := (&AgentRepo{}).InsertIfAbsent(ctx, db, "agent-1", "Ada", now); err != nil {
		t.Fatalf("InsertIfAbsent: %v", err)
	}

	tr := domain.TierTransition{ID: "dup", AgentID: "agent-1", FromRank: 0, ToRank: 1, CreatedAt: now}
	if _, err := repo.Record(ctx, db, tr); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	if _, err := repo.Record(ctx, db, tr); err == nil {
		t.Error("expected error on duplicate ID, got nil")
	}
}
