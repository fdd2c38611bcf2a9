package cli

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/tiff"
)

var (
	tissueGray = color.RGBA{150, 150, 150, 255}
	stain      = color.RGBA{160, 40, 200, 255}
)

// createTile returns a 120x120 tissue-gray tile with n stained discs of
// radius 8 on a 36 pixel grid.
func createTile(n int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 120, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 120; x++ {
			img.Set(x, y, tissueGray)
		}
	}
	for i := 0; i < n; i++ {
		cx, cy := 20+36*(i%3), 20+36*(i/3)
		for y := cy - 8; y <= cy+8; y++ {
			for x := cx - 8; x <= cx+8; x++ {
				if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= 64 {
					img.Set(x, y, stain)
				}
			}
		}
	}
	return img
}

// writeCohorts writes one TIFF tile per count, named s<i>_<condition>_<i>.tif.
func writeCohorts(t *testing.T, dir string, cohorts map[string][]int) {
	t.Helper()
	for condition, counts := range cohorts {
		for i, n := range counts {
			path := filepath.Join(dir, fmt.Sprintf("s%d_%s_%d.tif", i+1, condition, i+1))
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := tiff.Encode(f, createTile(n), nil); err != nil {
				f.Close()
				t.Fatal(err)
			}
			f.Close()
		}
	}
}

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("ALVEOLI_LOG_LEVEL", "")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(BuildInfo{Version: "1.0.0", BuildTime: "today", GitCommit: "abc123"})
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

type recordingViewer struct {
	opened []string
}

func (v *recordingViewer) Open(path string) error {
	v.opened = append(v.opened, path)
	return nil
}
