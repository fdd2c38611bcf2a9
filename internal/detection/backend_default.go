//go:build !gocv

package detection

import "fmt"

const opencvAvailable = false

func newOpenCVBackend(Params) (RegionCounter, error) {
	return nil, fmt.Errorf("%w: opencv (rebuild with -tags gocv)", ErrBackendUnavailable)
}
