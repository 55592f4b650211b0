package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/seqletlab/motifcull/internal/background"
	"github.com/seqletlab/motifcull/internal/patterns"
)

// backgroundSumTolerance is how far a literal background vector may deviate
// from summing to 1.
const backgroundSumTolerance = 1e-6

// requiredKeys are checked first, in this order.
var requiredKeys = []string{
	"modisco-h5",
	"patterns",
	"seq-match-quantile",
	"contrib-match-quantile",
	"contrib-magnitude-quantile",
	"trim-threshold",
	"trim-padding",
	"background-probs",
}

var verbosityLevels = map[string]bool{
	"DEBUG":   true,
	"INFO":    true,
	"WARNING": true,
	"ERROR":   true,
}

// Parse validates a raw config document against the grammar and returns the
// normalized Configuration. Pure function of its input; the first violated
// constraint wins.
func Parse(data []byte) (*Config, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &SchemaError{Path: "$", Msg: "document is not a JSON object"}
	}

	// (a) required top-level keys
	for _, key := range requiredKeys {
		if _, ok := doc[key]; !ok {
			return nil, &SchemaError{Path: key, Msg: "required key missing"}
		}
	}

	cfg := &Config{Verbosity: "INFO"}
	var err error

	// (b) optional keys, if present, match their declared shape
	if cfg.SeqletsTSV, err = optionalString(doc, "seqlets-tsv"); err != nil {
		return nil, err
	}
	if cfg.ContribH5, err = optionalString(doc, "modisco-contrib-h5"); err != nil {
		return nil, err
	}
	if cfg.QuantileJSON, err = optionalString(doc, "quantile-json"); err != nil {
		return nil, err
	}
	if raw, ok := doc["verbosity"]; ok {
		v, err := asString(raw, "verbosity")
		if err != nil {
			return nil, err
		}
		if !verbosityLevels[v] {
			return nil, &SchemaError{Path: "verbosity", Msg: "must be one of DEBUG, INFO, WARNING, ERROR"}
		}
		cfg.Verbosity = v
	}
	if cfg.ModiscoH5, err = asString(doc["modisco-h5"], "modisco-h5"); err != nil {
		return nil, err
	}

	// (c) patterns: "all" or a non-empty list of pattern specs
	if cfg.Patterns, err = parsePatterns(doc["patterns"]); err != nil {
		return nil, err
	}

	// (d) quantiles: number in [0, 1] or null
	if cfg.SeqMatchQuantile, err = asQuantile(doc["seq-match-quantile"], "seq-match-quantile"); err != nil {
		return nil, err
	}
	if cfg.ContribMatchQuantile, err = asQuantile(doc["contrib-match-quantile"], "contrib-match-quantile"); err != nil {
		return nil, err
	}
	if cfg.ContribMagnitudeQuantile, err = asQuantile(doc["contrib-magnitude-quantile"], "contrib-magnitude-quantile"); err != nil {
		return nil, err
	}

	// (e) trim parameters
	threshold, err := asNumber(doc["trim-threshold"], "trim-threshold")
	if err != nil {
		return nil, err
	}
	if threshold < 0 {
		return nil, &SchemaError{Path: "trim-threshold", Msg: "must be non-negative"}
	}
	cfg.TrimThreshold = threshold

	padding, err := asNumber(doc["trim-padding"], "trim-padding")
	if err != nil {
		return nil, err
	}
	if padding < 0 || padding != math.Trunc(padding) {
		return nil, &SchemaError{Path: "trim-padding", Msg: "must be a non-negative integer"}
	}
	cfg.TrimPadding = int(padding)

	// (f) background-probs: genome identifier or literal 4-vector
	if cfg.Background, err = parseBackground(doc["background-probs"]); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parsePatterns handles the "all" sentinel and the four mutually exclusive
// pattern-spec shapes. A spec matching none of the shapes, or structurally
// matching more than one, is rejected.
func parsePatterns(raw json.RawMessage) (patterns.Selection, error) {
	if isJSONString(raw) {
		s, err := asString(raw, "patterns")
		if err != nil {
			return patterns.Selection{}, err
		}
		if s != "all" {
			return patterns.Selection{}, &SchemaError{Path: "patterns", Msg: `string form must be "all"`}
		}
		return patterns.Selection{All: true}, nil
	}

	var rawSpecs []json.RawMessage
	if err := json.Unmarshal(raw, &rawSpecs); err != nil {
		return patterns.Selection{}, &SchemaError{Path: "patterns", Msg: `must be "all" or a list of pattern specs`}
	}
	if len(rawSpecs) == 0 {
		return patterns.Selection{}, &SchemaError{Path: "patterns", Msg: "pattern list must be non-empty"}
	}

	specs := make([]patterns.Spec, 0, len(rawSpecs))
	for i, rawSpec := range rawSpecs {
		spec, err := parsePatternSpec(rawSpec, fmt.Sprintf("patterns[%d]", i))
		if err != nil {
			return patterns.Selection{}, err
		}
		specs = append(specs, spec)
	}
	return patterns.Selection{Specs: specs}, nil
}

var patternSpecKeys = map[string]bool{
	"metacluster-name": true,
	"pattern-name":     true,
	"pattern-names":    true,
	"short-name":       true,
	"short-names":      true,
}

func parsePatternSpec(raw json.RawMessage, path string) (patterns.Spec, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return patterns.Spec{}, &SchemaError{Path: path, Msg: "pattern spec must be an object"}
	}
	for key := range obj {
		if !patternSpecKeys[key] {
			return patterns.Spec{}, &SchemaError{Path: path + "." + key, Msg: "unknown pattern spec key"}
		}
	}

	metaRaw, ok := obj["metacluster-name"]
	if !ok {
		return patterns.Spec{}, &SchemaError{Path: path + ".metacluster-name", Msg: "required key missing"}
	}
	meta, err := asString(metaRaw, path+".metacluster-name")
	if err != nil {
		return patterns.Spec{}, err
	}

	_, hasSingular := obj["pattern-name"]
	_, hasPlural := obj["pattern-names"]
	_, hasShortSingular := obj["short-name"]
	_, hasShortPlural := obj["short-names"]

	switch {
	case hasSingular && hasPlural:
		return patterns.Spec{}, &SchemaError{Path: path, Msg: "pattern-name and pattern-names are mutually exclusive"}
	case !hasSingular && !hasPlural:
		return patterns.Spec{}, &SchemaError{Path: path, Msg: "one of pattern-name or pattern-names is required"}
	case hasSingular && hasShortPlural:
		return patterns.Spec{}, &SchemaError{Path: path, Msg: "short-names requires pattern-names"}
	case hasPlural && hasShortSingular:
		return patterns.Spec{}, &SchemaError{Path: path, Msg: "short-name requires pattern-name"}
	}

	spec := patterns.Spec{Metacluster: meta}
	if hasSingular {
		name, err := asString(obj["pattern-name"], path+".pattern-name")
		if err != nil {
			return patterns.Spec{}, err
		}
		spec.Patterns = []string{name}
		if hasShortSingular {
			short, err := asString(obj["short-name"], path+".short-name")
			if err != nil {
				return patterns.Spec{}, err
			}
			spec.ShortNames = []string{short}
		}
		return spec, nil
	}

	names, err := asStringList(obj["pattern-names"], path+".pattern-names")
	if err != nil {
		return patterns.Spec{}, err
	}
	spec.Patterns = names
	if hasShortPlural {
		shorts, err := asStringList(obj["short-names"], path+".short-names")
		if err != nil {
			return patterns.Spec{}, err
		}
		if len(shorts) != len(names) {
			return patterns.Spec{}, &SchemaError{Path: path + ".short-names", Msg: "length must match pattern-names"}
		}
		spec.ShortNames = shorts
	}
	return spec, nil
}

func parseBackground(raw json.RawMessage) (background.Spec, error) {
	if isJSONString(raw) {
		name, err := asString(raw, "background-probs")
		if err != nil {
			return background.Spec{}, err
		}
		if !background.Known(name) {
			return background.Spec{}, &SchemaError{Path: "background-probs", Msg: "unknown genome identifier " + name}
		}
		return background.Spec{Genome: name}, nil
	}

	var vec []float64
	if err := json.Unmarshal(raw, &vec); err != nil {
		return background.Spec{}, &SchemaError{Path: "background-probs", Msg: "must be a genome identifier or an array of 4 probabilities"}
	}
	if len(vec) != 4 {
		return background.Spec{}, &SchemaError{Path: "background-probs", Msg: "probability vector must have exactly 4 entries"}
	}
	sum := 0.0
	for _, p := range vec {
		if p < 0 {
			return background.Spec{}, &SchemaError{Path: "background-probs", Msg: "probabilities must be non-negative"}
		}
		sum += p
	}
	if math.Abs(sum-1.0) > backgroundSumTolerance {
		return background.Spec{}, &SchemaError{Path: "background-probs", Msg: "probabilities must sum to 1"}
	}
	probs := [4]float64{vec[0], vec[1], vec[2], vec[3]}
	return background.Spec{Probs: &probs}, nil
}

// --- decoding helpers ---

func isJSONString(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '"'
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func asString(raw json.RawMessage, path string) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &SchemaError{Path: path, Msg: "must be a string"}
	}
	return s, nil
}

func optionalString(doc map[string]json.RawMessage, key string) (string, error) {
	raw, ok := doc[key]
	if !ok {
		return "", nil
	}
	return asString(raw, key)
}

func asNumber(raw json.RawMessage, path string) (float64, error) {
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, &SchemaError{Path: path, Msg: "must be a number"}
	}
	return v, nil
}

func asQuantile(raw json.RawMessage, path string) (*float64, error) {
	if isJSONNull(raw) {
		return nil, nil
	}
	v, err := asNumber(raw, path)
	if err != nil {
		return nil, err
	}
	if v < 0 || v > 1 {
		return nil, &SchemaError{Path: path, Msg: "quantile must be between 0 and 1"}
	}
	return &v, nil
}

func asStringList(raw json.RawMessage, path string) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, &SchemaError{Path: path, Msg: "must be a list of strings"}
	}
	return list, nil
}
