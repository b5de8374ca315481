// pkg/physics/collision.go
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Sphere represents a spherical collision or trigger volume
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

// Overlaps checks if two spheres intersect
func (s Sphere) Overlaps(other Sphere) bool {
	return Distance(s.Center, other.Center) < s.Radius+other.Radius
}

// Contains reports whether point lies inside the sphere
func (s Sphere) Contains(point mgl64.Vec3) bool {
	return LengthSquared(point.Sub(s.Center)) <= s.Radius*s.Radius
}

// HitResult describes where a probe segment struck a surface
type HitResult struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
	Time     float64 // fraction of the segment, 0..1
}

// SegmentSphere casts the segment start→end against the surface of s.
// A segment starting inside the sphere reports a hit at its start.
func SegmentSphere(start, end mgl64.Vec3, s Sphere) (HitResult, bool) {
	d := end.Sub(start)
	f := start.Sub(s.Center)

	c := f.Dot(f) - s.Radius*s.Radius
	if c <= 0 {
		normal, ok := DirectionTo(s.Center, start)
		if !ok {
			normal = AxisUp
		}
		return HitResult{Point: start, Normal: normal}, true
	}

	a := d.Dot(d)
	if a < SmallNumber {
		return HitResult{}, false
	}
	b := 2 * f.Dot(d)
	disc := b*b - 4*a*c
	if disc < 0 {
		return HitResult{}, false
	}

	t := (-b - math.Sqrt(disc)) / (2 * a)
	if t < 0 || t > 1 {
		return HitResult{}, false
	}

	point := start.Add(d.Mul(t))
	return HitResult{
		Point:    point,
		Normal:   SafeNormal(point.Sub(s.Center)),
		Distance: t * math.Sqrt(a),
		Time:     t,
	}, true
}

// Box is an axis-aligned cube
type Box struct {
	Center   mgl64.Vec3
	HalfSize float64
}

// Contains reports whether point lies in the half-open box
func (b Box) Contains(point mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if point[i] < b.Center[i]-b.HalfSize || point[i] >= b.Center[i]+b.HalfSize {
			return false
		}
	}
	return true
}

// intersectsSphere tests the box against a sphere by clamping the sphere
// center onto the box.
func (b Box) intersectsSphere(s Sphere) bool {
	var distSq float64
	for i := 0; i < 3; i++ {
		lo := b.Center[i] - b.HalfSize
		hi := b.Center[i] + b.HalfSize
		v := s.Center[i]
		if v < lo {
			distSq += (lo - v) * (lo - v)
		} else if v > hi {
			distSq += (v - hi) * (v - hi)
		}
	}
	return distSq <= s.Radius*s.Radius
}

// Octree for spatial partitioning of body positions
type Octree struct {
	Boundary Box
	Capacity int
	Points   []mgl64.Vec3
	Objects  []interface{}
	Children []*Octree
}

// NewOctree creates a new octree with the given boundary and capacity
func NewOctree(boundary Box, capacity int) *Octree {
	return &Octree{
		Boundary: boundary,
		Capacity: capacity,
		Points:   make([]mgl64.Vec3, 0, capacity),
		Objects:  make([]interface{}, 0, capacity),
	}
}

// Divided reports whether the node has been split
func (ot *Octree) Divided() bool {
	return ot.Children != nil
}

// Insert adds object at point. Points outside the boundary are rejected.
func (ot *Octree) Insert(point mgl64.Vec3, object interface{}) bool {
	if !ot.Boundary.Contains(point) {
		return false
	}

	if len(ot.Points) < ot.Capacity && !ot.Divided() {
		ot.Points = append(ot.Points, point)
		ot.Objects = append(ot.Objects, object)
		return true
	}

	if !ot.Divided() {
		ot.Subdivide()
	}

	for _, child := range ot.Children {
		if child.Insert(point, object) {
			return true
		}
	}
	return false
}

// Subdivide splits the node into eight octants
func (ot *Octree) Subdivide() {
	h := ot.Boundary.HalfSize / 2
	c := ot.Boundary.Center

	ot.Children = make([]*Octree, 0, 8)
	for _, dx := range []float64{-h, h} {
		for _, dy := range []float64{-h, h} {
			for _, dz := range []float64{-h, h} {
				octant := Box{Center: mgl64.Vec3{c[0] + dx, c[1] + dy, c[2] + dz}, HalfSize: h}
				ot.Children = append(ot.Children, NewOctree(octant, ot.Capacity))
			}
		}
	}
}

// QuerySphere returns all objects whose point lies inside s
func (ot *Octree) QuerySphere(s Sphere) []interface{} {
	found := make([]interface{}, 0)

	if !ot.Boundary.intersectsSphere(s) {
		return found
	}

	for i, point := range ot.Points {
		if s.Contains(point) {
			found = append(found, ot.Objects[i])
		}
	}

	for _, child := range ot.Children {
		found = append(found, child.QuerySphere(s)...)
	}
	return found
}

// Clear drops every point and child node
func (ot *Octree) Clear() {
	ot.Points = ot.Points[:0]
	ot.Objects = ot.Objects[:0]
	ot.Children = nil
}
