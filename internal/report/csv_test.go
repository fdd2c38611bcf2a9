package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/alveoli-tools/internal/analysis"
)

func sampleRows() []Row {
	return []Row{
		{Sample: "s1_ctrl_1.tif", Condition: "ctrl", Count: 12},
		{Sample: "s2_ctrl_2.tif", Condition: "ctrl", Count: 15},
		{Sample: "s3_treat_1.tif", Condition: "treat", Count: 7},
	}
}

func TestWriteSamplesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alveoli_counts_by_condition.csv")
	if err := WriteSamplesCSV(path, sampleRows()); err != nil {
		t.Fatalf("WriteSamplesCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "Sample,Condition,Alveoli Count\n" +
		"s1_ctrl_1.tif,ctrl,12\n" +
		"s2_ctrl_2.tif,ctrl,15\n" +
		"s3_treat_1.tif,treat,7\n"
	if string(data) != want {
		t.Errorf("file content:\n%s\nwant:\n%s", data, want)
	}

	rows, err := ReadSamplesCSV(path)
	if err != nil {
		t.Fatalf("ReadSamplesCSV failed: %v", err)
	}
	if len(rows) != 3 || rows[1] != sampleRows()[1] {
		t.Errorf("read back: got %+v", rows)
	}
}

func TestReadSamplesCSV_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"wrong header", "Name,Group,Count\na,b,1\n"},
		{"bad count", "Sample,Condition,Alveoli Count\na,ctrl,many\n"},
		{"short row", "Sample,Condition,Alveoli Count\na,ctrl\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".csv")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := ReadSamplesCSV(path); err == nil {
				t.Error("ReadSamplesCSV should fail")
			}
		})
	}

	if _, err := ReadSamplesCSV(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestWriteSummaryCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary_statistics_alveoli.csv")
	summaries := []analysis.Summary{
		{Condition: "ctrl", Mean: 5, StdErr: 0.5},
		{Condition: "treat", Mean: 10, StdErr: 0.25},
	}
	if err := WriteSummaryCSV(path, summaries, 0.0036); err != nil {
		t.Fatalf("WriteSummaryCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "Condition,Mean Count,Standard Error,p-value\n" +
		"ctrl,5,0.5,0.0036\n" +
		"treat,10,0.25,0.0036\n"
	if string(data) != want {
		t.Errorf("file content:\n%s\nwant:\n%s", data, want)
	}
}

func TestRowsFromCohorts(t *testing.T) {
	a := &analysis.Cohort{Condition: "ctrl", Samples: []analysis.Sample{{Name: "a.tif", Count: 3}, {Name: "b.tif", Count: 4}}}
	b := &analysis.Cohort{Condition: "treat", Samples: []analysis.Sample{{Name: "c.tif", Count: 9}}}

	rows := RowsFromCohorts(a, b)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Condition != "ctrl" || rows[2] != (Row{Sample: "c.tif", Condition: "treat", Count: 9}) {
		t.Errorf("rows: got %+v", rows)
	}
}

func TestWriteSamplesCSV_BadPath(t *testing.T) {
	if err := WriteSamplesCSV(filepath.Join(t.TempDir(), "no", "such", "dir.csv"), nil); err == nil {
		t.Error("writing into a missing directory should fail")
	}
}

type failingCloser struct{ err error }

func (c failingCloser) Close() error { return c.err }

func TestCloseFile(t *testing.T) {
	errClose := errors.New("disk full")
	errWrite := errors.New("short write")

	tests := []struct {
		name   string
		closer failingCloser
		prior  error
		want   error
	}{
		{"clean close", failingCloser{}, nil, nil},
		{"close failure is reported", failingCloser{errClose}, nil, errClose},
		{"earlier error wins", failingCloser{errClose}, errWrite, errWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.prior
			closeFile(tt.closer, "out.csv", &err)
			if tt.want == nil {
				if err != nil {
					t.Errorf("got %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCloseFile_AlreadyClosedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	var got error
	closeFile(f, path, &got)
	if !errors.Is(got, os.ErrClosed) {
		t.Fatalf("got %v, want os.ErrClosed", got)
	}
	if !strings.Contains(got.Error(), path) {
		t.Errorf("error %q does not name %s", got, path)
	}
}
