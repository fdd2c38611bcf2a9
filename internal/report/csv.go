package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ironsheep/alveoli-tools/internal/analysis"
)

var (
	samplesHeader = []string{"Sample", "Condition", "Alveoli Count"}
	summaryHeader = []string{"Condition", "Mean Count", "Standard Error", "p-value"}
)

// Row is one line of the per-sample counts table.
type Row struct {
	Sample    string `json:"sample"`
	Condition string `json:"condition"`
	Count     int    `json:"count"`
}

// RowsFromCohorts flattens cohorts into rows, cohort by cohort in the given
// order and samples in cohort order.
func RowsFromCohorts(cohorts ...*analysis.Cohort) []Row {
	var rows []Row
	for _, c := range cohorts {
		for _, s := range c.Samples {
			rows = append(rows, Row{Sample: s.Name, Condition: c.Condition, Count: s.Count})
		}
	}
	return rows
}

// WriteSamplesCSV writes rows under the header Sample,Condition,Alveoli Count.
func WriteSamplesCSV(path string, rows []Row) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, samplesHeader)
	for _, r := range rows {
		records = append(records, []string{r.Sample, r.Condition, strconv.Itoa(r.Count)})
	}
	return writeCSV(path, records)
}

// ReadSamplesCSV parses a file written by WriteSamplesCSV.
func ReadSamplesCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rdr := csv.NewReader(f)
	rdr.FieldsPerRecord = len(samplesHeader)
	records, err := rdr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header", path)
	}
	for i, h := range samplesHeader {
		if records[0][i] != h {
			return nil, fmt.Errorf("%s: unexpected header %v", path, records[0])
		}
	}

	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		n, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: invalid count %q", path, i+2, rec[2])
		}
		rows = append(rows, Row{Sample: rec[0], Condition: rec[1], Count: n})
	}
	return rows, nil
}

// WriteSummaryCSV writes one row per summary under the header
// Condition,Mean Count,Standard Error,p-value. The single p-value is repeated
// on every row.
func WriteSummaryCSV(path string, summaries []analysis.Summary, pValue float64) error {
	records := make([][]string, 0, len(summaries)+1)
	records = append(records, summaryHeader)
	for _, s := range summaries {
		records = append(records, []string{
			s.Condition,
			formatFloat(s.Mean),
			formatFloat(s.StdErr),
			formatFloat(pValue),
		})
	}
	return writeCSV(path, records)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, records [][]string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer closeFile(file, path, &err)

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// closeFile closes c and stores a failure in *err unless an earlier error is
// already there. A written file is only complete once Close succeeds.
func closeFile(c io.Closer, path string, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("failed to close %s: %w", path, cerr)
	}
}
