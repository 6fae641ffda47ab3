package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations, sequential from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS speed_tests (
	id            TEXT PRIMARY KEY,
	server_name   TEXT NOT NULL DEFAULT '',
	download_mbps REAL NOT NULL,
	upload_mbps   REAL NOT NULL,
	ping_ms       REAL NOT NULL,
	jitter_ms     REAL NOT NULL,
	vpn_active    INTEGER NOT NULL DEFAULT 0,
	tested_at     DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS plan_cache (
	plan_id    TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	position   INTEGER NOT NULL,
	fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
}
