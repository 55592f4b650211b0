package artifact

import "database/sql"

// Migration is a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations. Append new
// migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS patterns (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    metacluster TEXT NOT NULL,
    name TEXT NOT NULL,
    UNIQUE (metacluster, name)
);

CREATE TABLE IF NOT EXISTS seqlets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    pattern_id INTEGER NOT NULL REFERENCES patterns(id),
    idx INTEGER NOT NULL,
    chrom TEXT NOT NULL,
    start INTEGER NOT NULL,
    stop INTEGER NOT NULL,
    strand TEXT NOT NULL DEFAULT '+',
    seq_match REAL NOT NULL,
    contrib_match REAL NOT NULL,
    contrib_magnitude REAL NOT NULL,
    UNIQUE (pattern_id, idx)
);

CREATE TABLE IF NOT EXISTS contrib_tracks (
    metacluster TEXT NOT NULL,
    pattern TEXT NOT NULL,
    seqlet_idx INTEGER NOT NULL,
    track_start INTEGER NOT NULL,
    track TEXT NOT NULL,
    PRIMARY KEY (metacluster, pattern, seqlet_idx)
);

CREATE INDEX IF NOT EXISTS idx_seqlets_pattern ON seqlets(pattern_id);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
