// Package sqlite backs the durable memory, scheduler, and skill-library
// stores with a single modernc.org/sqlite file, the pure-Go driver that
// lets a standalone build ship without a cgo toolchain. golang-migrate is
// deliberately not used here: its sqlite3 driver binds mattn/go-sqlite3
// (cgo) and migrating the schema through a second, ABI-incompatible driver
// on the same file is a wiring conflict, not a missing feature — see
// DESIGN.md. Schema changes are applied idempotently on Open instead.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS memory_records (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	content TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_memory_session ON memory_records(session_id, created_at);

CREATE TABLE IF NOT EXISTS cron_jobs (
	id TEXT PRIMARY KEY,
	agent_id TEXT NOT NULL,
	name TEXT NOT NULL,
	expression TEXT NOT NULL DEFAULT '',
	run_at DATETIME,
	message TEXT NOT NULL,
	delivery_mode TEXT NOT NULL DEFAULT '',
	delivery_channel TEXT NOT NULL DEFAULT '',
	delivery_target TEXT NOT NULL DEFAULT '',
	enabled INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	last_run_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_cron_agent ON cron_jobs(agent_id);

CREATE TABLE IF NOT EXISTS cron_runs (
	job_id TEXT NOT NULL,
	fired_at DATETIME NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	input_tokens INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	err TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS skills (
	agent_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	body TEXT NOT NULL,
	accepted INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (agent_id, name)
);

CREATE TABLE IF NOT EXISTS traces (
	id TEXT PRIMARY KEY,
	parent_trace_id TEXT,
	agent_id TEXT,
	run_id TEXT NOT NULL DEFAULT '',
	session_key TEXT NOT NULL DEFAULT '',
	user_id TEXT NOT NULL DEFAULT '',
	channel TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL DEFAULT '',
	input_preview TEXT NOT NULL DEFAULT '',
	output_preview TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '',
	start_time DATETIME NOT NULL,
	end_time DATETIME,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_traces_session ON traces(session_key, created_at);

CREATE TABLE IF NOT EXISTS spans (
	id TEXT PRIMARY KEY,
	trace_id TEXT NOT NULL,
	parent_span_id TEXT,
	agent_id TEXT,
	span_type TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL DEFAULT '',
	start_time DATETIME NOT NULL,
	end_time DATETIME,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	model TEXT NOT NULL DEFAULT '',
	provider TEXT NOT NULL DEFAULT '',
	tool_name TEXT NOT NULL DEFAULT '',
	tool_call_id TEXT NOT NULL DEFAULT '',
	finish_reason TEXT NOT NULL DEFAULT '',
	input_preview TEXT NOT NULL DEFAULT '',
	output_preview TEXT NOT NULL DEFAULT '',
	input_tokens INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	metadata TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	level TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_spans_trace ON spans(trace_id);
`

// DB wraps the shared *sql.DB every sqlite-backed store in this package
// is constructed from, so a standalone deployment opens one file once
// and hands the same handle to each store constructor.
type DB struct {
	*sql.DB
}

// Open opens (creating if absent) the sqlite file at path and applies the
// package's schema. WAL mode is enabled so the memory/cron/skills stores
// and the cron tick loop can read and write concurrently without
// SQLITE_BUSY under the default journal mode.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers anyway; avoid pool contention on one file
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &DB{db}, nil
}
