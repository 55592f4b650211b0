// Package output writes the two run artifacts: the retained-seqlet TSV and
// the quantile JSON consumed by the downstream motif scanner.
package output

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
)

// SeqletRow is one retained seqlet in the output TSV. Coordinates are the
// trimmed genomic span, half-open.
type SeqletRow struct {
	Chrom            string
	Start            int
	End              int
	Name             string
	Strand           string
	Metacluster      string
	Pattern          string
	SeqMatch         float64
	ContribMatch     float64
	ContribMagnitude float64
}

var tsvHeader = []string{
	"chrom", "start", "end", "short-name", "seq-match", "strand",
	"metacluster-name", "pattern-name", "contrib-match", "contrib-magnitude",
}

// WriteSeqletsTSV writes the retained seqlets with their metadata.
func WriteSeqletsTSV(path string, rows []SeqletRow) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()

	w := bufio.NewWriter(fp)
	for i, col := range tsvHeader {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, col)
	}
	fmt.Fprintln(w)

	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Chrom, r.Start, r.End, r.Name,
			formatScore(r.SeqMatch), r.Strand,
			r.Metacluster, r.Pattern,
			formatScore(r.ContribMatch), formatScore(r.ContribMagnitude),
		)
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return fp.Close()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
