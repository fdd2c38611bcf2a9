//go:build !gocv

package detection

import (
	"errors"
	"testing"
)

func TestNewBackend_OpenCVUnavailable(t *testing.T) {
	_, err := NewBackend("opencv", DefaultParams())
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("got %v, want ErrBackendUnavailable", err)
	}
	if got := Backends(); len(got) != 1 || got[0] != "go" {
		t.Errorf("Backends: got %v, want [go]", got)
	}
}
