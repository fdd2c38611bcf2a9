package analysis

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ironsheep/alveoli-tools/internal/detection"
	"github.com/ironsheep/alveoli-tools/internal/imaging"
)

// recordingLogger keeps warnings for assertions.
type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (r *recordingLogger) Info(string, string, map[string]interface{})  {}
func (r *recordingLogger) Error(string, error, map[string]interface{})  {}
func (r *recordingLogger) Debug(string, string, map[string]interface{}) {}
func (r *recordingLogger) Warning(_ string, msg string, _ map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, msg)
}

func newCounter(windows []imaging.Window, opts ...CounterOption) *Counter {
	return NewCounter(detection.NewPipeline(detection.DefaultParams()), windows, opts...)
}

func TestCounter_SumsWindows(t *testing.T) {
	img := createTile(200, 100,
		image.Point{25, 25}, image.Point{70, 70},
		image.Point{125, 25}, image.Point{170, 70}, image.Point{130, 75},
	)
	windows := []imaging.Window{{X: 0, Y: 0, Size: 100}, {X: 100, Y: 0, Size: 100}}

	result, err := newCounter(windows).CountLoaded(context.Background(), "tile", img)
	if err != nil {
		t.Fatalf("CountLoaded failed: %v", err)
	}

	if len(result.Windows) != 2 {
		t.Fatalf("windows: got %d, want 2", len(result.Windows))
	}
	if result.Windows[0].Count != 2 || result.Windows[1].Count != 3 {
		t.Errorf("per-window counts: got %d and %d, want 2 and 3",
			result.Windows[0].Count, result.Windows[1].Count)
	}
	if result.Total != result.Windows[0].Count+result.Windows[1].Count {
		t.Errorf("Total %d is not the sum of window counts", result.Total)
	}
}

func TestCounter_OverlappingWindowsDoubleCount(t *testing.T) {
	img := createTile(100, 100, image.Point{50, 50})
	w := imaging.Window{X: 0, Y: 0, Size: 100}

	result, err := newCounter([]imaging.Window{w, w}).CountLoaded(context.Background(), "tile", img)
	if err != nil {
		t.Fatalf("CountLoaded failed: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("Total: got %d, want 2", result.Total)
	}
}

func TestCounter_NoWindows(t *testing.T) {
	img := createTile(50, 50, image.Point{25, 25})
	result, err := newCounter(nil).CountLoaded(context.Background(), "tile", img)
	if err != nil {
		t.Fatalf("CountLoaded failed: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("Total: got %d, want 0", result.Total)
	}
}

func TestCounter_ClippedWindowWarns(t *testing.T) {
	img := createTile(200, 100, image.Point{170, 50})
	log := &recordingLogger{}

	c := newCounter([]imaging.Window{{X: 150, Y: 0, Size: 100}}, WithLogger(log))
	result, err := c.CountLoaded(context.Background(), "tile", img)
	if err != nil {
		t.Fatalf("CountLoaded failed: %v", err)
	}
	if !result.Windows[0].Clipped {
		t.Error("window past the edge should be marked clipped")
	}
	if result.Total != 1 {
		t.Errorf("Total: got %d, want 1", result.Total)
	}
	if len(log.warnings) != 1 {
		t.Errorf("warnings: got %v, want one clip warning", log.warnings)
	}
}

func TestCounter_WindowOutsideImage(t *testing.T) {
	img := createTile(100, 100)
	c := newCounter([]imaging.Window{{X: 0, Y: 0, Size: 50}, {X: 300, Y: 0, Size: 50}})

	_, err := c.CountLoaded(context.Background(), "tile", img)
	if !errors.Is(err, imaging.ErrWindowOutsideImage) {
		t.Errorf("got %v, want ErrWindowOutsideImage", err)
	}
}

func TestCounter_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newCounter([]imaging.Window{{X: 0, Y: 0, Size: 10}}).CountLoaded(ctx, "tile", createTile(20, 20))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestCounter_CountImage(t *testing.T) {
	dir := t.TempDir()
	path := writeTIFF(t, dir, "s1_ctrl_1.tif", createTile(200, 200, gridCenters(9, 200)...))

	c := newCounter([]imaging.Window{{X: 0, Y: 0, Size: 200}})
	n, err := c.CountImage(context.Background(), path)
	if err != nil {
		t.Fatalf("CountImage failed: %v", err)
	}
	if n != 9 {
		t.Errorf("count: got %d, want 9", n)
	}

	detail, err := c.CountFile(context.Background(), path)
	if err != nil {
		t.Fatalf("CountFile failed: %v", err)
	}
	if detail.Sample != "s1_ctrl_1" || detail.Path != path {
		t.Errorf("detail: got %+v", detail)
	}
}

func TestCounter_CountImage_Unreadable(t *testing.T) {
	c := newCounter([]imaging.Window{{X: 0, Y: 0, Size: 10}})
	_, err := c.CountImage(context.Background(), filepath.Join(t.TempDir(), "missing_ctrl_1.tif"))
	if !errors.Is(err, imaging.ErrImageLoad) {
		t.Errorf("got %v, want ErrImageLoad", err)
	}
}

func TestCounter_DebugArtifacts(t *testing.T) {
	debugDir := filepath.Join(t.TempDir(), "debug")
	img := createTile(120, 60, image.Point{30, 30}, image.Point{90, 30})
	windows := []imaging.Window{{X: 0, Y: 0, Size: 60}, {X: 60, Y: 0, Size: 60}}

	if _, err := newCounter(windows, WithDebugDir(debugDir)).CountLoaded(context.Background(), "s1_ctrl_1", img); err != nil {
		t.Fatalf("CountLoaded failed: %v", err)
	}

	for _, name := range []string{
		"s1_ctrl_1_w0_tissue.png",
		"s1_ctrl_1_w0_structures.png",
		"s1_ctrl_1_w1_tissue.png",
		"s1_ctrl_1_w1_structures.png",
		"s1_ctrl_1_windows.png",
	} {
		if _, err := os.Stat(filepath.Join(debugDir, name)); err != nil {
			t.Errorf("missing debug artifact %s: %v", name, err)
		}
	}
}

func TestSampleName(t *testing.T) {
	tests := []struct{ path, want string }{
		{"/data/s1_ctrl_1.tif", "s1_ctrl_1"},
		{"s1_ctrl_1.tif", "s1_ctrl_1"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := SampleName(tt.path); got != tt.want {
			t.Errorf("SampleName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
