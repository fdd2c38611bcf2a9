// Package imaging provides the low-level raster operations used by the alveoli
// counting pipeline.
//
// This package implements image loading (TIFF, PNG, JPEG), subsample window
// extraction, 8-bit HSV conversion, binary masks with rectangular morphology,
// and a window overlay used to check where subsamples were taken. All operations
// work with standard Go image.Image types and use a coordinate system where
// (0,0) is at the top-left corner, X increases rightward, and Y increases
// downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - A Window is anchored at its top-left pixel (inclusive) and spans Size
//     pixels in each direction (exclusive end)
//
// # Masks
//
// A Mask is a single-channel buffer holding exactly 0 or 255 per pixel. Masks
// are always derived into new buffers; the source image is never modified.
//
// Morphology uses a rectangular all-ones structuring element anchored at its
// center. Pixels outside the mask never constrain an operation: erosion treats
// them as set, dilation treats them as clear.
//
// # Color Representation
//
// HSV values follow the 8-bit convention used by OpenCV:
//   - H: 0-179 (degrees / 2)
//   - S: 0-255
//   - V: 0-255
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other operations are
// stateless and can be called concurrently on different images.
package imaging
