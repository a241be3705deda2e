// Package store provides SQLite-backed persistence for agents, their
// contribution log and tier history.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/rogers-f/tierforge/internal/domain"
)

// schemaV1 defines the initial database schema.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS agents (
	agent_id               TEXT PRIMARY KEY,
	display_name           TEXT NOT NULL DEFAULT '',
	tier_rank              INTEGER NOT NULL DEFAULT 0,
	total_score            INTEGER NOT NULL DEFAULT 0,
	commit_count           INTEGER NOT NULL DEFAULT 0,
	models_trained_count   INTEGER NOT NULL DEFAULT 0,
	datasets_created_count INTEGER NOT NULL DEFAULT 0,
	community_help_units   INTEGER NOT NULL DEFAULT 0,
	uptime_hours           REAL NOT NULL DEFAULT 0.0,
	active_days            INTEGER NOT NULL DEFAULT 0,
	last_active_at         INTEGER NOT NULL DEFAULT 0,
	created_at             INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_agents_score ON agents(total_score DESC, last_active_at ASC);

CREATE TABLE IF NOT EXISTS contribution_events (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	agent_id       TEXT NOT NULL REFERENCES agents(agent_id),
	kind           TEXT NOT NULL,
	computed_value INTEGER NOT NULL DEFAULT 0,
	description    TEXT NOT NULL DEFAULT '',
	metadata_json  TEXT NOT NULL DEFAULT '{}',
	recorded_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_agent ON contribution_events(agent_id, id);

CREATE TABLE IF NOT EXISTS tier_transitions (
	id          TEXT PRIMARY KEY,
	agent_id    TEXT NOT NULL REFERENCES agents(agent_id),
	from_rank   INTEGER NOT NULL,
	to_rank     INTEGER NOT NULL,
	total_score INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transitions_agent ON tier_transitions(agent_id, created_at);
`

// DBTX is the subset of *sql.DB and *sql.Tx used by the repos, so reads can
// run either standalone or inside a caller's transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewDB opens a SQLite database at the given path with recommended pragmas
// and runs the V1 schema migration.
func NewDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection serializes writers, which gives every transaction
	// exclusive access to the agent rows it touches.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, domain.WrapEngineError(domain.ErrSchemaMigration.Code, domain.ErrSchemaMigration.Message, err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	_, err := db.ExecContext(context.Background(), schemaV1)
	return err
}
