package report

import (
	"os/exec"
	"testing"
)

func TestOpenerFor(t *testing.T) {
	tests := []struct {
		goos    string
		want    string
		wantErr bool
	}{
		{"linux", "xdg-open", false},
		{"darwin", "open", false},
		{"windows", "rundll32", false},
		{"plan9", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			args, err := openerFor(tt.goos)
			if (err != nil) != tt.wantErr {
				t.Fatalf("openerFor(%s) error = %v", tt.goos, err)
			}
			if !tt.wantErr && args[0] != tt.want {
				t.Errorf("openerFor(%s) = %v, want %s", tt.goos, args, tt.want)
			}
		})
	}
}

func TestSystemViewer_Open(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	v := &SystemViewer{command: []string{"true"}}
	if err := v.Open("plot.png"); err != nil {
		t.Errorf("Open failed: %v", err)
	}

	v = &SystemViewer{command: []string{"/nonexistent/opener"}}
	if err := v.Open("plot.png"); err == nil {
		t.Error("missing opener should fail")
	}
}

func TestNopViewer(t *testing.T) {
	var v Viewer = NopViewer{}
	if err := v.Open("anything"); err != nil {
		t.Errorf("NopViewer.Open: %v", err)
	}
}
