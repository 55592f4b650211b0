// Package pipeline sequences the cutoff run: resolve patterns, derive
// quantile cutoffs, filter seqlets, trim survivors, and emit the configured
// artifacts. Patterns are processed in parallel; the aggregated result
// preserves resolution order.
package pipeline

import (
	"fmt"
	"log"

	"github.com/pbenner/threadpool"

	"github.com/seqletlab/motifcull/internal/artifact"
	"github.com/seqletlab/motifcull/internal/config"
	"github.com/seqletlab/motifcull/internal/output"
	"github.com/seqletlab/motifcull/internal/patterns"
	"github.com/seqletlab/motifcull/internal/quantile"
	"github.com/seqletlab/motifcull/internal/trim"
)

// Cutoffs holds the realized scalar cutoffs for one pattern. nil means the
// axis was disabled (null quantile) or the pattern had no seqlets.
type Cutoffs struct {
	SeqMatch         *float64
	ContribMatch     *float64
	ContribMagnitude *float64
}

// SeqletResult is one seqlet with its trim outcome.
type SeqletResult struct {
	artifact.Seqlet
	// TrimmedStart/TrimmedEnd are the genomic coordinates after trimming.
	// Equal to the original span when no contribution track was available.
	TrimmedStart int
	TrimmedEnd   int
	Retained     bool
}

// PatternResult aggregates one pattern's cutoffs and seqlet outcomes.
type PatternResult struct {
	Pattern  patterns.Resolved
	Cutoffs  Cutoffs
	Seqlets  []SeqletResult
	Retained int
}

// Result is the aggregated run outcome. When Run returns an error, Patterns
// still holds every pattern that completed before the failure, in
// resolution order, to aid diagnosis.
type Result struct {
	Patterns   []PatternResult
	Background [4]float64
}

// Pipeline runs the seqlet cutoff analysis for one configuration.
type Pipeline struct {
	cfg     *config.Config
	store   artifact.Reader
	tracks  artifact.TrackReader // nil when no contribution artifact
	threads int
	debug   bool
}

// New creates a pipeline. tracks may be nil, in which case seqlets keep
// their full span. threads must be at least 1.
func New(cfg *config.Config, store artifact.Reader, tracks artifact.TrackReader, threads int) *Pipeline {
	if threads < 1 {
		threads = 1
	}
	return &Pipeline{
		cfg:     cfg,
		store:   store,
		tracks:  tracks,
		threads: threads,
		debug:   cfg.Verbosity == "DEBUG",
	}
}

// Run executes the full analysis and writes the configured outputs. The
// first fatal error halts remaining pattern processing; the partial Result
// is returned alongside it.
func (p *Pipeline) Run() (*Result, error) {
	available, err := p.store.ListPatterns()
	if err != nil {
		return &Result{}, fmt.Errorf("enumerating artifact patterns: %w", err)
	}

	resolved, err := p.cfg.Patterns.Resolve(available)
	if err != nil {
		return &Result{}, err
	}

	bg, err := p.cfg.Background.Resolve()
	if err != nil {
		return &Result{}, err
	}

	log.Printf("processing %d patterns", len(resolved))

	// Fan out one job per pattern; each worker writes only its own slot,
	// so the merge below preserves resolution order.
	slots := make([]*PatternResult, len(resolved))
	pool := threadpool.New(p.threads, 2*len(resolved)+1)
	group := pool.NewJobGroup()

	jobErr := pool.AddRangeJob(0, len(resolved), group,
		func(i int, pool threadpool.ThreadPool, erf func() error) error {
			if erf() != nil {
				return nil
			}
			r, err := p.processPattern(resolved[i])
			if err != nil {
				return err
			}
			slots[i] = r
			return nil
		})
	if jobErr == nil {
		jobErr = pool.Wait(group)
	}

	result := &Result{Background: bg}
	for _, r := range slots {
		if r != nil {
			result.Patterns = append(result.Patterns, *r)
		}
	}
	if jobErr != nil {
		return result, jobErr
	}

	if err := p.writeOutputs(result); err != nil {
		return result, err
	}
	return result, nil
}

// processPattern derives the three cutoffs for one pattern, filters its
// seqlets on every configured axis, and trims the survivors.
func (p *Pipeline) processPattern(pat patterns.Resolved) (*PatternResult, error) {
	seqlets, err := p.store.Seqlets(pat.Metacluster, pat.Pattern)
	if err != nil {
		return nil, &artifact.ReadError{Metacluster: pat.Metacluster, Pattern: pat.Pattern, Err: err}
	}

	seqScores := make([]float64, len(seqlets))
	contribScores := make([]float64, len(seqlets))
	magnitudes := make([]float64, len(seqlets))
	for i, sq := range seqlets {
		seqScores[i] = sq.SeqMatch
		contribScores[i] = sq.ContribMatch
		magnitudes[i] = sq.ContribMagnitude
	}

	cutoffs := Cutoffs{
		SeqMatch:         quantile.Cutoff(seqScores, p.cfg.SeqMatchQuantile),
		ContribMatch:     quantile.Cutoff(contribScores, p.cfg.ContribMatchQuantile),
		ContribMagnitude: quantile.Cutoff(magnitudes, p.cfg.ContribMagnitudeQuantile),
	}

	result := &PatternResult{Pattern: pat, Cutoffs: cutoffs}
	for _, sq := range seqlets {
		sr := SeqletResult{Seqlet: sq, TrimmedStart: sq.Start, TrimmedEnd: sq.End}

		// All three axes must pass; failing any one excludes the seqlet.
		pass := quantile.Passes(sq.SeqMatch, cutoffs.SeqMatch) &&
			quantile.Passes(sq.ContribMatch, cutoffs.ContribMatch) &&
			quantile.Passes(sq.ContribMagnitude, cutoffs.ContribMagnitude)

		if pass {
			sr, err = p.trimSeqlet(pat, sr)
			if err != nil {
				return nil, err
			}
		}
		sr.Retained = pass && sr.Retained
		if sr.Retained {
			result.Retained++
		}
		result.Seqlets = append(result.Seqlets, sr)
	}

	if p.debug {
		log.Printf("%s/%s: %d seqlets, %d retained",
			pat.Metacluster, pat.Pattern, len(result.Seqlets), result.Retained)
	}
	return result, nil
}

// trimSeqlet narrows one surviving seqlet to its contribution support.
// Seqlets without a contribution track keep their full span.
func (p *Pipeline) trimSeqlet(pat patterns.Resolved, sr SeqletResult) (SeqletResult, error) {
	sr.Retained = true
	if p.tracks == nil {
		return sr, nil
	}

	track, err := p.tracks.ContribTrack(pat.Metacluster, pat.Pattern, sr.Idx)
	if err != nil {
		return sr, &artifact.ReadError{Metacluster: pat.Metacluster, Pattern: pat.Pattern, Err: err}
	}
	if track == nil {
		return sr, nil
	}

	span, ok := trim.ToSupport(track.Values, p.cfg.TrimThreshold, p.cfg.TrimPadding)
	if !ok {
		sr.Retained = false
		return sr, nil
	}
	sr.TrimmedStart = track.GenomicStart + span.Start
	sr.TrimmedEnd = track.GenomicStart + span.End
	return sr, nil
}

// writeOutputs emits the configured TSV and quantile-JSON artifacts.
func (p *Pipeline) writeOutputs(result *Result) error {
	if p.cfg.SeqletsTSV != "" {
		log.Printf("writing seqlets tsv to %s", p.cfg.SeqletsTSV)
		if err := output.WriteSeqletsTSV(p.cfg.SeqletsTSV, seqletRows(result)); err != nil {
			return fmt.Errorf("writing seqlets tsv: %w", err)
		}
	}
	if p.cfg.QuantileJSON != "" {
		log.Printf("writing quantile json to %s", p.cfg.QuantileJSON)
		if err := output.WriteQuantileJSON(p.cfg.QuantileJSON, scanPatterns(result)); err != nil {
			return fmt.Errorf("writing quantile json: %w", err)
		}
	}
	return nil
}

// seqletRows flattens retained seqlets across patterns into TSV rows.
func seqletRows(result *Result) []output.SeqletRow {
	var rows []output.SeqletRow
	for _, pr := range result.Patterns {
		for _, sr := range pr.Seqlets {
			if !sr.Retained {
				continue
			}
			rows = append(rows, output.SeqletRow{
				Chrom:            sr.Chrom,
				Start:            sr.TrimmedStart,
				End:              sr.TrimmedEnd,
				Name:             pr.Pattern.DisplayName,
				Strand:           sr.Strand,
				Metacluster:      pr.Pattern.Metacluster,
				Pattern:          pr.Pattern.Pattern,
				SeqMatch:         sr.SeqMatch,
				ContribMatch:     sr.ContribMatch,
				ContribMagnitude: sr.ContribMagnitude,
			})
		}
	}
	return rows
}

// scanPatterns converts realized cutoffs into the scan-pattern entries the
// downstream motif scanner consumes.
func scanPatterns(result *Result) []output.ScanPattern {
	entries := make([]output.ScanPattern, 0, len(result.Patterns))
	for _, pr := range result.Patterns {
		entries = append(entries, output.ScanPattern{
			MetaclusterName:        pr.Pattern.Metacluster,
			PatternName:            pr.Pattern.Pattern,
			ShortName:              pr.Pattern.DisplayName,
			SeqMatchCutoff:         pr.Cutoffs.SeqMatch,
			ContribMatchCutoff:     pr.Cutoffs.ContribMatch,
			ContribMagnitudeCutoff: pr.Cutoffs.ContribMagnitude,
		})
	}
	return entries
}
