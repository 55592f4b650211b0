// Package config parses and validates the JSON configuration document that
// drives a seqlet cutoff run. Validation is fail-fast: the first violated
// constraint is reported as a SchemaError naming the offending field path.
package config

import (
	"fmt"
	"os"

	"github.com/seqletlab/motifcull/internal/background"
	"github.com/seqletlab/motifcull/internal/patterns"
)

// Config is the normalized, fully-resolved configuration. It is constructed
// once per run and immutable thereafter.
type Config struct {
	// ModiscoH5 locates the discovery artifact. Required.
	ModiscoH5 string
	// ContribH5 locates the contribution artifact. Empty when absent, in
	// which case seqlets carry no contribution tracks and are not trimmed.
	ContribH5 string
	// SeqletsTSV, when non-empty, is where the retained-seqlet TSV is
	// written.
	SeqletsTSV string
	// QuantileJSON, when non-empty, is where realized cutoffs are written.
	QuantileJSON string

	Patterns patterns.Selection

	// The three quantile axes. nil disables the corresponding filter.
	SeqMatchQuantile         *float64
	ContribMatchQuantile     *float64
	ContribMagnitudeQuantile *float64

	TrimThreshold float64
	TrimPadding   int

	Background background.Spec

	// Verbosity is one of DEBUG, INFO, WARNING, ERROR. Defaults to INFO.
	Verbosity string
}

// SchemaError reports a malformed or ambiguous configuration document.
type SchemaError struct {
	Path string // offending field, e.g. "patterns[1].pattern-names"
	Msg  string // violated constraint
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Path, e.Msg)
}

// Load reads and validates a config document from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}
