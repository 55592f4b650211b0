package artifact

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/seqletlab/motifcull/internal/patterns"
)

// ListPatterns enumerates the (metacluster, pattern) pairs in the
// container, in insertion order.
func (s *Store) ListPatterns() ([]patterns.Key, error) {
	rows, err := s.conn.Query(
		"SELECT metacluster, name FROM patterns ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []patterns.Key
	for rows.Next() {
		var k patterns.Key
		if err := rows.Scan(&k.Metacluster, &k.Pattern); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Seqlets returns the seqlet records for one pattern, in seqlet order.
func (s *Store) Seqlets(metacluster, pattern string) ([]Seqlet, error) {
	rows, err := s.conn.Query(
		`SELECT s.id, s.idx, s.chrom, s.start, s.stop, s.strand,
		    s.seq_match, s.contrib_match, s.contrib_magnitude
		FROM seqlets s JOIN patterns p ON s.pattern_id = p.id
		WHERE p.metacluster = ? AND p.name = ? ORDER BY s.idx`,
		metacluster, pattern,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seqlets []Seqlet
	for rows.Next() {
		var sq Seqlet
		if err := rows.Scan(&sq.ID, &sq.Idx, &sq.Chrom, &sq.Start, &sq.End, &sq.Strand,
			&sq.SeqMatch, &sq.ContribMatch, &sq.ContribMagnitude); err != nil {
			return nil, err
		}
		seqlets = append(seqlets, sq)
	}
	return seqlets, rows.Err()
}

// ContribTrack returns the contribution track for one seqlet, or (nil, nil)
// when the container has no track for it.
func (s *Store) ContribTrack(metacluster, pattern string, seqletIdx int) (*Track, error) {
	var trackStart int
	var encoded string
	err := s.conn.QueryRow(
		`SELECT track_start, track FROM contrib_tracks
		WHERE metacluster = ? AND pattern = ? AND seqlet_idx = ?`,
		metacluster, pattern, seqletIdx,
	).Scan(&trackStart, &encoded)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var values []float64
	if err := json.Unmarshal([]byte(encoded), &values); err != nil {
		return nil, fmt.Errorf("decoding contribution track for %s/%s[%d]: %w",
			metacluster, pattern, seqletIdx, err)
	}
	return &Track{GenomicStart: trackStart, Values: values}, nil
}

// InsertPattern inserts a pattern, returning its row ID. Inserting an
// existing (metacluster, name) pair returns the existing ID.
func (s *Store) InsertPattern(metacluster, name string) (int64, error) {
	result, err := s.conn.Exec(
		"INSERT OR IGNORE INTO patterns (metacluster, name) VALUES (?, ?)",
		metacluster, name,
	)
	if err != nil {
		return 0, err
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		return result.LastInsertId()
	}
	var id int64
	err = s.conn.QueryRow(
		"SELECT id FROM patterns WHERE metacluster = ? AND name = ?",
		metacluster, name,
	).Scan(&id)
	return id, err
}

// InsertSeqlet inserts one seqlet record under a pattern row.
func (s *Store) InsertSeqlet(patternID int64, sq Seqlet) error {
	_, err := s.conn.Exec(
		`INSERT INTO seqlets (pattern_id, idx, chrom, start, stop, strand,
		    seq_match, contrib_match, contrib_magnitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		patternID, sq.Idx, sq.Chrom, sq.Start, sq.End, sq.Strand,
		sq.SeqMatch, sq.ContribMatch, sq.ContribMagnitude,
	)
	return err
}

// InsertContribTrack stores the contribution track for one seqlet.
func (s *Store) InsertContribTrack(metacluster, pattern string, seqletIdx int, t Track) error {
	encoded, err := json.Marshal(t.Values)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec(
		`INSERT OR REPLACE INTO contrib_tracks
		    (metacluster, pattern, seqlet_idx, track_start, track)
		VALUES (?, ?, ?, ?, ?)`,
		metacluster, pattern, seqletIdx, t.GenomicStart, string(encoded),
	)
	return err
}
