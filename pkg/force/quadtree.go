package force

import "math"

// maxQuadDepth bounds subdivision so nearly coincident points end up in a
// shared leaf instead of recursing until float precision runs out.
const maxQuadDepth = 32

type quadItem struct {
	body *Body
	x, y float64
}

// quad is a square region of a Barnes–Hut tree. Leaves carry items; internal
// nodes carry up to four children. The aggregate fields are filled in by the
// force that owns the tree.
type quad struct {
	x0, y0, x1, y1 float64
	children       [4]*quad
	items          []quadItem

	value  float64 // summed charge
	cx, cy float64 // charge-weighted centre
	r      float64 // largest radius inside
}

func (q *quad) leaf() bool { return q.items != nil }

// buildQuadtree indexes bodies by the coordinates pos reports.
func buildQuadtree(bodies []*Body, pos func(*Body) (float64, float64)) *quad {
	if len(bodies) == 0 {
		return nil
	}
	items := make([]quadItem, len(bodies))
	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for i, b := range bodies {
		x, y := pos(b)
		items[i] = quadItem{body: b, x: x, y: y}
		x0, y0 = math.Min(x0, x), math.Min(y0, y)
		x1, y1 = math.Max(x1, x), math.Max(y1, y)
	}
	// Square extent so cell width is meaningful for the theta criterion.
	size := math.Max(x1-x0, y1-y0)
	if size <= 0 {
		size = 1
	}
	size = math.Pow(2, math.Ceil(math.Log2(size)))
	return subdivide(items, x0, y0, x0+size, y0+size, 0)
}

func subdivide(items []quadItem, x0, y0, x1, y1 float64, depth int) *quad {
	if len(items) == 0 {
		return nil
	}
	q := &quad{x0: x0, y0: y0, x1: x1, y1: y1}
	if len(items) == 1 || depth >= maxQuadDepth || coincident(items) {
		q.items = items
		return q
	}

	xm, ym := (x0+x1)/2, (y0+y1)/2
	var parts [4][]quadItem
	for _, it := range items {
		i := 0
		if it.x >= xm {
			i |= 1
		}
		if it.y >= ym {
			i |= 2
		}
		parts[i] = append(parts[i], it)
	}
	q.children[0] = subdivide(parts[0], x0, y0, xm, ym, depth+1)
	q.children[1] = subdivide(parts[1], xm, y0, x1, ym, depth+1)
	q.children[2] = subdivide(parts[2], x0, ym, xm, y1, depth+1)
	q.children[3] = subdivide(parts[3], xm, ym, x1, y1, depth+1)
	return q
}

func coincident(items []quadItem) bool {
	for _, it := range items[1:] {
		if it.x != items[0].x || it.y != items[0].y {
			return false
		}
	}
	return true
}

// visit walks the tree in pre-order. Returning true from fn skips the
// children of the visited quad.
func (q *quad) visit(fn func(*quad) bool) {
	if q == nil || fn(q) {
		return
	}
	for _, c := range q.children {
		c.visit(fn)
	}
}

// visitAfter walks the tree in post-order.
func (q *quad) visitAfter(fn func(*quad)) {
	if q == nil {
		return
	}
	for _, c := range q.children {
		c.visitAfter(fn)
	}
	fn(q)
}
