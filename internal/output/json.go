package output

import (
	"encoding/json"
	"os"
)

// ScanPattern is one entry of the quantile JSON: a pattern's identity plus
// its realized cutoffs. A nil cutoff marshals to null, meaning the axis was
// unset (disabled quantile or no seqlets).
type ScanPattern struct {
	MetaclusterName        string   `json:"metacluster-name"`
	PatternName            string   `json:"pattern-name"`
	ShortName              string   `json:"short-name"`
	SeqMatchCutoff         *float64 `json:"seq-match-cutoff"`
	ContribMatchCutoff     *float64 `json:"contrib-match-cutoff"`
	ContribMagnitudeCutoff *float64 `json:"contrib-magnitude-cutoff"`
}

// WriteQuantileJSON writes the realized cutoffs for every resolved pattern.
func WriteQuantileJSON(path string, entries []ScanPattern) error {
	if entries == nil {
		entries = []ScanPattern{}
	}
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
