// Package patterns resolves the config's pattern selection against the
// patterns actually present in a discovery artifact.
package patterns

import "fmt"

// Key identifies one pattern within one metacluster.
type Key struct {
	Metacluster string
	Pattern     string
}

// Spec names one metacluster and one or more patterns within it, each
// optionally paired with a caller-supplied short name. ShortNames is either
// nil or the same length as Patterns, in the same order. The config
// validator guarantees this shape.
type Spec struct {
	Metacluster string
	Patterns    []string
	ShortNames  []string
}

// Selection is either the sentinel "all" or an ordered list of specs.
type Selection struct {
	All   bool
	Specs []Spec
}

// Resolved is one (metacluster, pattern) pair with its display name. The
// display name defaults to the pattern id when no short name was given.
type Resolved struct {
	Metacluster string
	Pattern     string
	DisplayName string
}

// NotFoundError reports a named metacluster or pattern that does not exist
// in the discovery artifact.
type NotFoundError struct {
	Metacluster string
	Pattern     string
}

func (e *NotFoundError) Error() string {
	if e.Pattern == "" {
		return fmt.Sprintf("metacluster %q not found in artifact", e.Metacluster)
	}
	return fmt.Sprintf("pattern %q/%q not found in artifact", e.Metacluster, e.Pattern)
}

// Resolve expands the selection into an ordered, deduplicated list of
// resolved patterns. "all" expands in artifact enumeration order. Explicit
// specs expand in document order, patterns within a spec in list order.
// Duplicate (metacluster, pattern) pairs keep their first occurrence,
// including its short name.
func (s Selection) Resolve(available []Key) ([]Resolved, error) {
	if s.All {
		out := make([]Resolved, 0, len(available))
		for _, k := range available {
			out = append(out, Resolved{
				Metacluster: k.Metacluster,
				Pattern:     k.Pattern,
				DisplayName: k.Pattern,
			})
		}
		return dedupe(out), nil
	}

	present := make(map[Key]bool, len(available))
	metaclusters := make(map[string]bool)
	for _, k := range available {
		present[k] = true
		metaclusters[k.Metacluster] = true
	}

	var out []Resolved
	for _, spec := range s.Specs {
		if !metaclusters[spec.Metacluster] {
			return nil, &NotFoundError{Metacluster: spec.Metacluster}
		}
		for i, p := range spec.Patterns {
			if !present[Key{spec.Metacluster, p}] {
				return nil, &NotFoundError{Metacluster: spec.Metacluster, Pattern: p}
			}
			name := p
			if spec.ShortNames != nil {
				name = spec.ShortNames[i]
			}
			out = append(out, Resolved{
				Metacluster: spec.Metacluster,
				Pattern:     p,
				DisplayName: name,
			})
		}
	}
	return dedupe(out), nil
}

// dedupe drops repeated (metacluster, pattern) pairs, preserving first-seen
// order.
func dedupe(in []Resolved) []Resolved {
	seen := make(map[Key]bool, len(in))
	out := in[:0]
	for _, r := range in {
		k := Key{r.Metacluster, r.Pattern}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
