package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteSeqletsTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seqlets.tsv")
	rows := []SeqletRow{
		{
			Chrom: "chrI", Start: 101, End: 126, Name: "Abf1", Strand: "+",
			Metacluster: "pos_patterns", Pattern: "pattern_0",
			SeqMatch: 5.5, ContribMatch: 0.9, ContribMagnitude: 1.25,
		},
	}
	if err := WriteSeqletsTSV(path, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + 1 row", len(lines))
	}
	if !strings.HasPrefix(lines[0], "chrom\tstart\tend\tshort-name") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	want := "chrI\t101\t126\tAbf1\t5.5\t+\tpos_patterns\tpattern_0\t0.9\t1.25"
	if lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}

func TestWriteSeqletsTSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seqlets.tsv")
	if err := WriteSeqletsTSV(path, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 {
		t.Errorf("expected only the header, got %d lines", len(lines))
	}
}

func TestWriteQuantileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quantiles.json")
	cutoff := 2.6
	entries := []ScanPattern{
		{
			MetaclusterName: "pos_patterns", PatternName: "pattern_0", ShortName: "Abf1",
			SeqMatchCutoff: &cutoff,
		},
	}
	if err := WriteQuantileJSON(path, entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("got %d entries, want 1", len(decoded))
	}
	entry := decoded[0]
	if entry["short-name"] != "Abf1" {
		t.Errorf("short-name = %v", entry["short-name"])
	}
	if entry["seq-match-cutoff"] != 2.6 {
		t.Errorf("seq-match-cutoff = %v", entry["seq-match-cutoff"])
	}
	// Disabled axes serialize as null, not zero.
	if v, ok := entry["contrib-match-cutoff"]; !ok || v != nil {
		t.Errorf("contrib-match-cutoff = %v, want null", v)
	}
}

func TestWriteQuantileJSONNoPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quantiles.json")
	if err := WriteQuantileJSON(path, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("expected an empty list, got %q", string(data))
	}
}
