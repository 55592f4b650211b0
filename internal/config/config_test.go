package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validDoc = `{
	"seqlets-tsv": "out/seqlets.tsv",
	"modisco-h5": "modisco.db",
	"modisco-contrib-h5": "contrib.db",
	"patterns": [
		{"metacluster-name": "pos_patterns", "pattern-name": "pattern_0", "short-name": "Abf1"},
		{"metacluster-name": "pos_patterns",
		 "pattern-names": ["pattern_1", "pattern_2"],
		 "short-names": ["Reb1", "Cbf1"]}
	],
	"seq-match-quantile": 0.4,
	"contrib-match-quantile": null,
	"contrib-magnitude-quantile": 0.1,
	"trim-threshold": 0.3,
	"trim-padding": 1,
	"background-probs": "sacCer3",
	"quantile-json": "out/quantiles.json",
	"verbosity": "DEBUG"
}`

func mustParse(t *testing.T, doc string) *Config {
	t.Helper()
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return cfg
}

func expectSchemaError(t *testing.T, doc, wantPath string) *SchemaError {
	t.Helper()
	_, err := Parse([]byte(doc))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Path != wantPath {
		t.Fatalf("error path = %q (%s), want %q", schemaErr.Path, schemaErr.Msg, wantPath)
	}
	return schemaErr
}

func TestParseValidDocument(t *testing.T) {
	cfg := mustParse(t, validDoc)

	if cfg.ModiscoH5 != "modisco.db" {
		t.Errorf("ModiscoH5 = %q", cfg.ModiscoH5)
	}
	if cfg.ContribH5 != "contrib.db" {
		t.Errorf("ContribH5 = %q", cfg.ContribH5)
	}
	if cfg.SeqletsTSV != "out/seqlets.tsv" {
		t.Errorf("SeqletsTSV = %q", cfg.SeqletsTSV)
	}
	if cfg.Patterns.All {
		t.Error("expected explicit pattern selection")
	}
	if len(cfg.Patterns.Specs) != 2 {
		t.Fatalf("expected 2 pattern specs, got %d", len(cfg.Patterns.Specs))
	}
	if got := cfg.Patterns.Specs[1].Patterns; len(got) != 2 || got[0] != "pattern_1" {
		t.Errorf("plural spec patterns = %v", got)
	}
	if got := cfg.Patterns.Specs[1].ShortNames; len(got) != 2 || got[1] != "Cbf1" {
		t.Errorf("plural spec short names = %v", got)
	}
	if cfg.SeqMatchQuantile == nil || *cfg.SeqMatchQuantile != 0.4 {
		t.Errorf("SeqMatchQuantile = %v", cfg.SeqMatchQuantile)
	}
	if cfg.ContribMatchQuantile != nil {
		t.Errorf("null quantile should normalize to nil, got %v", *cfg.ContribMatchQuantile)
	}
	if cfg.TrimThreshold != 0.3 || cfg.TrimPadding != 1 {
		t.Errorf("trim = (%v, %d)", cfg.TrimThreshold, cfg.TrimPadding)
	}
	if cfg.Background.Genome != "sacCer3" || cfg.Background.Probs != nil {
		t.Errorf("Background = %+v", cfg.Background)
	}
	if cfg.Verbosity != "DEBUG" {
		t.Errorf("Verbosity = %q", cfg.Verbosity)
	}
}

func TestParsePatternsAll(t *testing.T) {
	doc := strings.Replace(validDoc, `"patterns": [
		{"metacluster-name": "pos_patterns", "pattern-name": "pattern_0", "short-name": "Abf1"},
		{"metacluster-name": "pos_patterns",
		 "pattern-names": ["pattern_1", "pattern_2"],
		 "short-names": ["Reb1", "Cbf1"]}
	],`, `"patterns": "all",`, 1)
	cfg := mustParse(t, doc)
	if !cfg.Patterns.All {
		t.Error("expected the all sentinel")
	}
	if len(cfg.Patterns.Specs) != 0 {
		t.Errorf("unexpected specs: %v", cfg.Patterns.Specs)
	}
}

func TestParseLiteralBackground(t *testing.T) {
	doc := strings.Replace(validDoc, `"background-probs": "sacCer3"`,
		`"background-probs": [0.25, 0.25, 0.25, 0.25]`, 1)
	cfg := mustParse(t, doc)
	if cfg.Background.Probs == nil {
		t.Fatal("expected a literal background vector")
	}
	if (*cfg.Background.Probs)[0] != 0.25 {
		t.Errorf("Probs = %v", *cfg.Background.Probs)
	}
}

func TestParseMissingRequiredKey(t *testing.T) {
	doc := strings.Replace(validDoc, `"trim-threshold": 0.3,`, ``, 1)
	expectSchemaError(t, doc, "trim-threshold")
}

func TestParseNotAnObject(t *testing.T) {
	expectSchemaError(t, `[1, 2, 3]`, "$")
}

func TestParseMixedSingularPlural(t *testing.T) {
	doc := strings.Replace(validDoc,
		`{"metacluster-name": "pos_patterns", "pattern-name": "pattern_0", "short-name": "Abf1"}`,
		`{"metacluster-name": "pos_patterns", "pattern-name": "pattern_0", "pattern-names": ["pattern_1"]}`, 1)
	expectSchemaError(t, doc, "patterns[0]")
}

func TestParseSingularWithPluralShortNames(t *testing.T) {
	doc := strings.Replace(validDoc,
		`{"metacluster-name": "pos_patterns", "pattern-name": "pattern_0", "short-name": "Abf1"}`,
		`{"metacluster-name": "pos_patterns", "pattern-name": "pattern_0", "short-names": ["Abf1"]}`, 1)
	expectSchemaError(t, doc, "patterns[0]")
}

func TestParseShortNamesLengthMismatch(t *testing.T) {
	doc := strings.Replace(validDoc, `"short-names": ["Reb1", "Cbf1"]`,
		`"short-names": ["Reb1"]`, 1)
	expectSchemaError(t, doc, "patterns[1].short-names")
}

func TestParseEmptyPatternList(t *testing.T) {
	doc := strings.Replace(validDoc, `"patterns": [
		{"metacluster-name": "pos_patterns", "pattern-name": "pattern_0", "short-name": "Abf1"},
		{"metacluster-name": "pos_patterns",
		 "pattern-names": ["pattern_1", "pattern_2"],
		 "short-names": ["Reb1", "Cbf1"]}
	],`, `"patterns": [],`, 1)
	expectSchemaError(t, doc, "patterns")
}

func TestParsePatternsBadSentinel(t *testing.T) {
	doc := strings.Replace(validDoc, `"patterns": [
		{"metacluster-name": "pos_patterns", "pattern-name": "pattern_0", "short-name": "Abf1"},
		{"metacluster-name": "pos_patterns",
		 "pattern-names": ["pattern_1", "pattern_2"],
		 "short-names": ["Reb1", "Cbf1"]}
	],`, `"patterns": "some",`, 1)
	expectSchemaError(t, doc, "patterns")
}

func TestParseQuantileOutOfRange(t *testing.T) {
	doc := strings.Replace(validDoc, `"seq-match-quantile": 0.4`,
		`"seq-match-quantile": 1.5`, 1)
	expectSchemaError(t, doc, "seq-match-quantile")
}

func TestParseQuantileBoundaryValues(t *testing.T) {
	doc := strings.Replace(validDoc, `"seq-match-quantile": 0.4`,
		`"seq-match-quantile": 0`, 1)
	doc = strings.Replace(doc, `"contrib-magnitude-quantile": 0.1`,
		`"contrib-magnitude-quantile": 1`, 1)
	cfg := mustParse(t, doc)
	if cfg.SeqMatchQuantile == nil || *cfg.SeqMatchQuantile != 0 {
		t.Errorf("quantile 0 should be accepted, got %v", cfg.SeqMatchQuantile)
	}
	if cfg.ContribMagnitudeQuantile == nil || *cfg.ContribMagnitudeQuantile != 1 {
		t.Errorf("quantile 1 should be accepted, got %v", cfg.ContribMagnitudeQuantile)
	}
}

func TestParseNegativeTrimThreshold(t *testing.T) {
	doc := strings.Replace(validDoc, `"trim-threshold": 0.3`,
		`"trim-threshold": -0.1`, 1)
	expectSchemaError(t, doc, "trim-threshold")
}

func TestParseFractionalTrimPadding(t *testing.T) {
	doc := strings.Replace(validDoc, `"trim-padding": 1`,
		`"trim-padding": 1.5`, 1)
	expectSchemaError(t, doc, "trim-padding")
}

func TestParseBackgroundSumRejected(t *testing.T) {
	doc := strings.Replace(validDoc, `"background-probs": "sacCer3"`,
		`"background-probs": [0.25, 0.25, 0.25, 0.26]`, 1)
	expectSchemaError(t, doc, "background-probs")
}

func TestParseBackgroundUnknownGenome(t *testing.T) {
	doc := strings.Replace(validDoc, `"background-probs": "sacCer3"`,
		`"background-probs": "hg19"`, 1)
	expectSchemaError(t, doc, "background-probs")
}

func TestParseBackgroundWrongLength(t *testing.T) {
	doc := strings.Replace(validDoc, `"background-probs": "sacCer3"`,
		`"background-probs": [0.5, 0.5]`, 1)
	expectSchemaError(t, doc, "background-probs")
}

func TestParseBadVerbosity(t *testing.T) {
	doc := strings.Replace(validDoc, `"verbosity": "DEBUG"`,
		`"verbosity": "LOUD"`, 1)
	expectSchemaError(t, doc, "verbosity")
}

func TestVerbosityDefaultsToInfo(t *testing.T) {
	doc := strings.Replace(validDoc, `,
	"verbosity": "DEBUG"`, ``, 1)
	cfg := mustParse(t, doc)
	if cfg.Verbosity != "INFO" {
		t.Errorf("Verbosity = %q, want INFO", cfg.Verbosity)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(validDoc), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.ModiscoH5 != "modisco.db" {
		t.Errorf("ModiscoH5 = %q", cfg.ModiscoH5)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
