package detection

import (
	"math"

	"github.com/ironsheep/alveoli-tools/internal/imaging"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Contour is a closed boundary traced around a foreground component or one
// of its holes.
type Contour struct {
	// Points are the boundary pixel centers in tracing order, reduced to the
	// vertices where the direction changes. The polygon closes implicitly.
	Points []Point `json:"points"`

	// Area is the shoelace area of Points.
	Area float64 `json:"area"`

	// Hole is true for the boundary of a hole inside a component.
	Hole bool `json:"hole"`

	// Parent is the index of the enclosing outer contour for holes, -1
	// otherwise. After area filtering it indexes the kept contours, and is -1
	// for a hole whose outer contour was dropped.
	Parent int `json:"parent"`
}

// moore lists the eight neighbour offsets clockwise on screen, starting east.
var moore = [8]Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// Moore indices of the horizontal offsets.
const (
	east = 0
	west = 4
)

// FindContours traces the outer boundary of every 8-connected foreground
// component of m and the boundary of every hole inside a component.
//
// Outer contours come first, in raster order of their topmost-leftmost
// pixel, followed by hole contours in the same order. A hole is a 4-connected
// background component that does not touch the mask border.
//
// # Algorithm
//
//  1. Label foreground components with an 8-connected flood fill.
//  2. Trace each component from its first raster pixel with Moore-neighbour
//     tracing, stopping when the start pixel is re-entered the same way.
//  3. Label background components with a 4-connected flood fill and keep the
//     ones that never reach the border.
//  4. Trace each hole through the foreground pixels bordering it, starting
//     left of its first raster pixel with the hole on the backtrack side.
//     Diagonal steps cut the hole's corners.
//  5. Drop collinear points and compute the shoelace area.
func FindContours(m *imaging.Mask) []Contour {
	w, h := m.Width, m.Height
	if w == 0 || h == 0 {
		return nil
	}

	fg := func(p Point) bool { return m.On(p.X, p.Y) }

	labels := make([]int, w*h)
	contours := make([]Contour, 0)
	outerOf := make(map[int]int)

	next := 1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !m.On(x, y) || labels[y*w+x] != 0 {
				continue
			}
			floodFill(labels, w, h, Point{x, y}, next, fg, true)
			outerOf[next] = len(contours)
			contours = append(contours, newContour(traceBoundary(Point{x, y}, west, fg, w, h), false, -1))
			next++
		}
	}

	// Background labels are negative so they share the slice.
	bg := func(p Point) bool { return !m.On(p.X, p.Y) }
	hole := -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if m.On(x, y) || labels[y*w+x] != 0 {
				continue
			}
			id := hole
			hole--
			if floodFill(labels, w, h, Point{x, y}, id, bg, false) {
				continue
			}

			// (x, y) is the hole's first raster pixel, so (x-1, y) is the
			// foreground pixel of the enclosing component.
			start := Point{x - 1, y}
			parent := outerOf[labels[y*w+x-1]]
			contours = append(contours, newContour(traceBoundary(start, east, fg, w, h), true, parent))
		}
	}

	return contours
}

// floodFill writes label over the connected region of pixels accepted by in,
// starting at start. It reports whether the region touches the mask border.
func floodFill(labels []int, width, height int, start Point, label int, in func(Point) bool, eight bool) bool {
	stack := []Point{start}
	border := false

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if labels[p.Y*width+p.X] != 0 || !in(p) {
			continue
		}

		labels[p.Y*width+p.X] = label
		if p.X == 0 || p.Y == 0 || p.X == width-1 || p.Y == height-1 {
			border = true
		}

		for d, off := range moore {
			if !eight && d%2 == 1 {
				continue
			}
			stack = append(stack, Point{p.X + off.X, p.Y + off.Y})
		}
	}
	return border
}

// traceBoundary follows the boundary between the region accepted by in and
// the background neighbour of start in direction back. Outer boundaries start
// at the region's first raster pixel with back set to west and run clockwise.
//
// width and height only bound the number of steps.
func traceBoundary(start Point, back int, in func(Point) bool, width, height int) []Point {
	points := []Point{start}
	cur := start
	var second Point
	haveSecond := false

	limit := 4*width*height + 8
	for step := 0; step < limit; step++ {
		n, nb, ok := nextBoundary(cur, back, in)
		if !ok {
			break
		}
		if cur == start && haveSecond && n == second {
			break
		}
		if !haveSecond {
			second, haveSecond = n, true
		}
		points = append(points, n)
		cur, back = n, nb
	}

	if len(points) > 1 && points[len(points)-1] == start {
		points = points[:len(points)-1]
	}
	return points
}

// nextBoundary scans the neighbours of cur clockwise from the backtrack
// direction and returns the first accepted one, together with the direction
// from it back to the last rejected neighbour.
func nextBoundary(cur Point, back int, in func(Point) bool) (Point, int, bool) {
	for i := 1; i <= 8; i++ {
		d := (back + i) % 8
		n := Point{cur.X + moore[d].X, cur.Y + moore[d].Y}
		if !in(n) {
			continue
		}
		prev := moore[(d+7)%8]
		p := Point{cur.X + prev.X, cur.Y + prev.Y}
		return n, direction(Point{p.X - n.X, p.Y - n.Y}), true
	}
	return Point{}, 0, false
}

// direction returns the moore index of a unit offset.
func direction(off Point) int {
	for i, m := range moore {
		if m == off {
			return i
		}
	}
	return west
}

func newContour(points []Point, hole bool, parent int) Contour {
	points = compress(points)
	return Contour{
		Points: points,
		Area:   polygonArea(points),
		Hole:   hole,
		Parent: parent,
	}
}

// compress drops every point that lies on a straight run between its
// neighbours, keeping only the vertices where the direction changes.
func compress(points []Point) []Point {
	n := len(points)
	if n < 3 {
		return points
	}

	out := make([]Point, 0, n)
	for i, p := range points {
		prev := points[(i+n-1)%n]
		next := points[(i+1)%n]
		in := Point{p.X - prev.X, p.Y - prev.Y}
		outDir := Point{next.X - p.X, next.Y - p.Y}
		if in == outDir {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return points[:1]
	}
	return out
}

// polygonArea returns the absolute shoelace area of a closed polygon.
func polygonArea(points []Point) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	sum := 0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return math.Abs(float64(sum)) / 2
}
