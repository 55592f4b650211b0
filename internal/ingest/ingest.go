// Package ingest builds an artifact container from a JSON seqlet bundle,
// the interchange format emitted by the upstream converter that unpacks a
// motif-discovery run.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/seqletlab/motifcull/internal/artifact"
)

// Bundle is the converter's interchange document.
type Bundle struct {
	Patterns []BundlePattern `json:"patterns"`
}

// BundlePattern holds one pattern and its seqlets.
type BundlePattern struct {
	MetaclusterName string         `json:"metacluster-name"`
	PatternName     string         `json:"pattern-name"`
	Seqlets         []BundleSeqlet `json:"seqlets"`
}

// BundleSeqlet is one seqlet record, optionally with its contribution
// track. ContribTrackStart is the genomic coordinate of the track's first
// position.
type BundleSeqlet struct {
	Chrom             string    `json:"chrom"`
	Start             int       `json:"start"`
	End               int       `json:"end"`
	Strand            string    `json:"strand"`
	SeqMatch          float64   `json:"seq-match"`
	ContribMatch      float64   `json:"contrib-match"`
	ContribMagnitude  float64   `json:"contrib-magnitude"`
	ContribTrack      []float64 `json:"contrib-track,omitempty"`
	ContribTrackStart int       `json:"contrib-track-start,omitempty"`
}

// Summary reports what an import inserted.
type Summary struct {
	Patterns int
	Seqlets  int
	Tracks   int
}

// File imports a bundle file into a store.
func File(store *artifact.Store, path string) (Summary, error) {
	fp, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("opening bundle: %w", err)
	}
	defer fp.Close()
	return Read(store, fp)
}

// Read imports a bundle document into a store. Seqlet ordinals are assigned
// in document order per pattern.
func Read(store *artifact.Store, r io.Reader) (Summary, error) {
	var bundle Bundle
	if err := json.NewDecoder(r).Decode(&bundle); err != nil {
		return Summary{}, fmt.Errorf("decoding bundle: %w", err)
	}

	var sum Summary
	for _, bp := range bundle.Patterns {
		if bp.MetaclusterName == "" || bp.PatternName == "" {
			return sum, fmt.Errorf("bundle pattern %d missing metacluster-name or pattern-name", sum.Patterns)
		}
		patternID, err := store.InsertPattern(bp.MetaclusterName, bp.PatternName)
		if err != nil {
			return sum, fmt.Errorf("inserting pattern %s/%s: %w", bp.MetaclusterName, bp.PatternName, err)
		}
		sum.Patterns++

		for idx, bs := range bp.Seqlets {
			sq := artifact.Seqlet{
				Idx:              idx,
				Chrom:            bs.Chrom,
				Start:            bs.Start,
				End:              bs.End,
				Strand:           bs.Strand,
				SeqMatch:         bs.SeqMatch,
				ContribMatch:     bs.ContribMatch,
				ContribMagnitude: bs.ContribMagnitude,
			}
			if sq.Strand == "" {
				sq.Strand = "+"
			}
			if err := store.InsertSeqlet(patternID, sq); err != nil {
				return sum, fmt.Errorf("inserting seqlet %s/%s[%d]: %w",
					bp.MetaclusterName, bp.PatternName, idx, err)
			}
			sum.Seqlets++

			if len(bs.ContribTrack) > 0 {
				track := artifact.Track{
					GenomicStart: bs.ContribTrackStart,
					Values:       bs.ContribTrack,
				}
				if err := store.InsertContribTrack(bp.MetaclusterName, bp.PatternName, idx, track); err != nil {
					return sum, fmt.Errorf("inserting track %s/%s[%d]: %w",
						bp.MetaclusterName, bp.PatternName, idx, err)
				}
				sum.Tracks++
			}
		}
	}
	return sum, nil
}
