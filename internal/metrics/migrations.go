package metrics

const schemaVersion = 1

const migrationSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id               TEXT PRIMARY KEY,
    remote_addr      TEXT NOT NULL,
    opened_at        INTEGER NOT NULL,
    closed_at        INTEGER,
    commands_count   INTEGER NOT NULL DEFAULT 0,
    bytes_written    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sessions_opened ON sessions(opened_at);

CREATE TABLE IF NOT EXISTS ticks (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    emitted_at  INTEGER NOT NULL,
    bytes       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);
`

func (s *Store) migrate() error {
	if _, err := s.db.Exec(migrationSQL); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO schema_version (rowid, version) VALUES (1, ?)`, schemaVersion)
	return err
}
