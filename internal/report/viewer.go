package report

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Viewer displays a rendered file to the user.
type Viewer interface {
	Open(path string) error
}

// SystemViewer opens files with the platform's default application.
type SystemViewer struct {
	// command overrides the platform opener; used by tests.
	command []string
}

// NewSystemViewer returns a viewer for the current platform.
func NewSystemViewer() *SystemViewer {
	return &SystemViewer{}
}

// Open starts the opener and returns without waiting for it to exit.
func (v *SystemViewer) Open(path string) error {
	args := v.command
	if len(args) == 0 {
		var err error
		args, err = openerFor(runtime.GOOS)
		if err != nil {
			return err
		}
	}

	cmd := exec.Command(args[0], append(args[1:], path)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	go cmd.Wait()
	return nil
}

func openerFor(goos string) ([]string, error) {
	switch goos {
	case "darwin":
		return []string{"open"}, nil
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return []string{"xdg-open"}, nil
	default:
		return nil, fmt.Errorf("no file opener for %s", goos)
	}
}

// NopViewer never displays anything.
type NopViewer struct{}

func (NopViewer) Open(string) error { return nil }
