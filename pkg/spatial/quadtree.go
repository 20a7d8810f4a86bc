// Package spatial provides a reactive spatial index over entity positions.
// Unlike a periodically-rebuilt index, PositionMap keeps the quadtree
// current entity-by-entity as Position components change, driven by a
// hook registered on the world (see positionmap.go).
package spatial

import (
	"math"

	"github.com/RazeLighter777/melon/pkg/ecs"
)

// Bounds is an axis-aligned rectangle in world space.
type Bounds struct {
	X, Y          float64
	Width, Height float64
}

// Contains reports whether the point (x, y) lies within b.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.X && x < b.X+b.Width &&
		y >= b.Y && y < b.Y+b.Height
}

// Intersects reports whether b and other overlap.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.X >= b.X+b.Width ||
		other.X+other.Width <= b.X ||
		other.Y >= b.Y+b.Height ||
		other.Y+other.Height <= b.Y)
}

type entry struct {
	entity ecs.EntityID
	x, y   float64
}

// Quadtree is a point index over entity positions, subdivided into four
// quadrants once a node exceeds its capacity.
type Quadtree struct {
	bounds   Bounds
	capacity int
	entries  []entry
	divided  bool

	northwest *Quadtree
	northeast *Quadtree
	southwest *Quadtree
	southeast *Quadtree
}

// NewQuadtree creates an empty quadtree covering bounds, subdividing a node
// once it holds more than capacity entries.
func NewQuadtree(bounds Bounds, capacity int) *Quadtree {
	if capacity < 1 {
		capacity = 1
	}
	return &Quadtree{bounds: bounds, capacity: capacity, entries: make([]entry, 0, capacity)}
}

// Insert adds entity at (x, y). Returns false if the point falls outside
// the tree's bounds.
func (q *Quadtree) Insert(entity ecs.EntityID, x, y float64) bool {
	if !q.bounds.Contains(x, y) {
		return false
	}
	if len(q.entries) < q.capacity && !q.divided {
		q.entries = append(q.entries, entry{entity: entity, x: x, y: y})
		return true
	}
	if !q.divided {
		q.subdivide()
	}
	for _, child := range q.children() {
		if child.Insert(entity, x, y) {
			return true
		}
	}
	return false
}

// Remove deletes entity's entry at (x, y). Both must match what was
// originally inserted, since the tree has no index back from entity id to
// location; PositionMap tracks last-known position for callers.
func (q *Quadtree) Remove(entity ecs.EntityID, x, y float64) bool {
	if !q.bounds.Contains(x, y) {
		return false
	}
	for i, e := range q.entries {
		if e.entity == entity {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	if !q.divided {
		return false
	}
	for _, child := range q.children() {
		if child.Remove(entity, x, y) {
			return true
		}
	}
	return false
}

func (q *Quadtree) subdivide() {
	x, y := q.bounds.X, q.bounds.Y
	w, h := q.bounds.Width/2, q.bounds.Height/2

	q.northwest = NewQuadtree(Bounds{x, y, w, h}, q.capacity)
	q.northeast = NewQuadtree(Bounds{x + w, y, w, h}, q.capacity)
	q.southwest = NewQuadtree(Bounds{x, y + h, w, h}, q.capacity)
	q.southeast = NewQuadtree(Bounds{x + w, y + h, w, h}, q.capacity)
	q.divided = true
}

func (q *Quadtree) children() [4]*Quadtree {
	return [4]*Quadtree{q.northwest, q.northeast, q.southwest, q.southeast}
}

// Query returns every entity whose point lies within queryBounds.
func (q *Quadtree) Query(queryBounds Bounds) []ecs.EntityID {
	var result []ecs.EntityID
	q.queryRecursive(queryBounds, &result)
	return result
}

func (q *Quadtree) queryRecursive(queryBounds Bounds, result *[]ecs.EntityID) {
	if !q.bounds.Intersects(queryBounds) {
		return
	}
	for _, e := range q.entries {
		if queryBounds.Contains(e.x, e.y) {
			*result = append(*result, e.entity)
		}
	}
	if q.divided {
		for _, child := range q.children() {
			child.queryRecursive(queryBounds, result)
		}
	}
}

// QueryRadius returns every entity within radius of (x, y).
func (q *Quadtree) QueryRadius(x, y, radius float64) []ecs.EntityID {
	box := Bounds{X: x - radius, Y: y - radius, Width: radius * 2, Height: radius * 2}
	candidates := q.Query(box)

	radiusSq := radius * radius
	result := make([]ecs.EntityID, 0, len(candidates))
	for _, id := range candidates {
		ex, ey, ok := q.locate(id)
		if !ok {
			continue
		}
		dx, dy := ex-x, ey-y
		if dx*dx+dy*dy <= radiusSq {
			result = append(result, id)
		}
	}
	return result
}

func (q *Quadtree) locate(id ecs.EntityID) (float64, float64, bool) {
	for _, e := range q.entries {
		if e.entity == id {
			return e.x, e.y, true
		}
	}
	if !q.divided {
		return 0, 0, false
	}
	for _, child := range q.children() {
		if x, y, ok := child.locate(id); ok {
			return x, y, true
		}
	}
	return 0, 0, false
}

// Count returns the total number of indexed points.
func (q *Quadtree) Count() int {
	count := len(q.entries)
	if q.divided {
		for _, child := range q.children() {
			count += child.Count()
		}
	}
	return count
}

// Distance is the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	return math.Sqrt(dx*dx + dy*dy)
}
