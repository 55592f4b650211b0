// Package background resolves the config's background-probs directive into
// a canonical 4-vector of nucleotide probabilities (A, C, G, T order).
package background

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed genomes.yaml
var genomesYAML []byte

// genomeTable maps genome identifiers to their background composition.
// Loaded once from the embedded table at package init.
var genomeTable = mustLoadGenomes()

// Spec is the two-case background-probs alternative: a named genome or a
// literal probability vector. Exactly one field is set post-validation.
type Spec struct {
	Genome string
	Probs  *[4]float64
}

// UnknownGenomeError reports a genome identifier missing from the table.
// The validator enumerates the closed identifier set, so this is only
// reachable on a table/schema version mismatch.
type UnknownGenomeError struct {
	Genome string
}

func (e *UnknownGenomeError) Error() string {
	return fmt.Sprintf("unknown genome %q (known: %v)", e.Genome, Genomes())
}

// Resolve returns the background vector for the spec. Literal vectors pass
// through; the sum-to-one check already happened during config validation.
func (s Spec) Resolve() ([4]float64, error) {
	if s.Probs != nil {
		return *s.Probs, nil
	}
	probs, ok := genomeTable[s.Genome]
	if !ok {
		return [4]float64{}, &UnknownGenomeError{Genome: s.Genome}
	}
	return probs, nil
}

// Known reports whether name is a recognized genome identifier.
func Known(name string) bool {
	_, ok := genomeTable[name]
	return ok
}

// Genomes returns the known genome identifiers in sorted order.
func Genomes() []string {
	names := make([]string, 0, len(genomeTable))
	for name := range genomeTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Probs returns the background vector for a known genome identifier.
func Probs(name string) ([4]float64, bool) {
	p, ok := genomeTable[name]
	return p, ok
}

func mustLoadGenomes() map[string][4]float64 {
	var raw map[string][]float64
	if err := yaml.Unmarshal(genomesYAML, &raw); err != nil {
		panic(fmt.Sprintf("background: parsing embedded genome table: %v", err))
	}
	table := make(map[string][4]float64, len(raw))
	for name, probs := range raw {
		if len(probs) != 4 {
			panic(fmt.Sprintf("background: genome %q has %d probabilities, want 4", name, len(probs)))
		}
		table[name] = [4]float64{probs[0], probs[1], probs[2], probs[3]}
	}
	return table
}
