// Package artifact reads and writes the discovery-artifact container: the
// per-pattern seqlet records and per-seqlet contribution tracks produced by
// an upstream motif-discovery run. The container is a SQLite database; the
// same container format holds both the discovery tables and, optionally,
// the contribution tracks, so one file can serve as either artifact.
package artifact

import (
	"fmt"

	"github.com/seqletlab/motifcull/internal/patterns"
)

// Seqlet is one motif instance called by the upstream discovery run.
type Seqlet struct {
	ID     int64
	Idx    int // ordinal within its pattern, assigned upstream
	Chrom  string
	Start  int // genomic start, 0-based inclusive
	End    int // genomic end, exclusive
	Strand string

	// Match scores against the seqlet's assigned pattern.
	SeqMatch         float64
	ContribMatch     float64
	ContribMagnitude float64
}

// Track is a per-position contribution score track. GenomicStart is the
// genomic coordinate of Values[0]; the track covers at least its seqlet's
// span plus flanking context.
type Track struct {
	GenomicStart int
	Values       []float64
}

// Reader is the capability the pipeline needs from a discovery artifact.
type Reader interface {
	// ListPatterns enumerates the (metacluster, pattern) pairs present,
	// in artifact order.
	ListPatterns() ([]patterns.Key, error)
	// Seqlets returns the seqlet records for one pattern, in seqlet order.
	Seqlets(metacluster, pattern string) ([]Seqlet, error)
}

// TrackReader is the capability the pipeline needs from a contribution
// artifact.
type TrackReader interface {
	// ContribTrack returns the contribution track for one seqlet, or
	// (nil, nil) when the artifact has no track for it.
	ContribTrack(metacluster, pattern string, seqletIdx int) (*Track, error)
}

// ReadError reports a failure reading seqlet or contribution data for one
// pattern. Fatal for the run; results from previously processed patterns
// are retained.
type ReadError struct {
	Metacluster string
	Pattern     string
	Err         error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("artifact: reading %s/%s: %v", e.Metacluster, e.Pattern, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
