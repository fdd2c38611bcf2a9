// Package detection finds tissue and stained structures in microscopy tiles.
//
// A region goes through two stages:
//
//  1. Tissue segmentation: an inverted intensity threshold separates tissue
//     from the bright slide background, followed by an opening and a closing
//     with a square element to drop specks and fill small gaps.
//  2. Structure detection: the region is masked to tissue, converted to HSV on
//     the 8-bit scale (H 0-179), restricted to the configured hue band, cleaned
//     with a closing and an opening, and traced into contours. Contours whose
//     polygon area is strictly greater than the minimum area are counted.
//
// # Contours
//
// FindContours returns a two-level hierarchy: outer boundaries of 8-connected
// foreground components and boundaries of the holes inside them. Points are
// pixel centers, compressed so that only direction changes remain, and areas
// use the shoelace formula over those points. A filled square of side s
// therefore has area (s-1)^2, and a single pixel has area 0. A hole boundary
// runs through the foreground pixels around the hole and cuts its corners
// diagonally, so a w x h rectangular hole has area (w+1)(h+1)-2.
//
// Both outer and hole contours are counted. A ring-shaped structure whose
// hole is large enough contributes two.
//
// # Backends
//
// The pure Go pipeline is always available. Building with the gocv tag adds an
// OpenCV backend (NewBackend("opencv")) that runs the same steps through gocv,
// for cross-checking counts against OpenCV on the same tiles.
//
// # Coordinate System
//
// All coordinates are relative to the region passed in:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
package detection
