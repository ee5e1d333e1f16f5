// Package vec2d implements the unsigned 2D integer arithmetic shared by
// every tile-geometry computation in the dezoomer and encoder packages.
package vec2d

// Vec2d is an unsigned 2D integer vector used for both positions and
// sizes. No operation here may produce a negative component: callers
// that subtract must first establish the left-hand side dominates,
// exactly as the geometry these vectors describe (tile inside canvas,
// canvas larger than origin) guarantees in practice.
type Vec2d struct {
	X, Y uint
}

// New builds a Vec2d from plain dimensions.
func New(x, y uint) Vec2d {
	return Vec2d{X: x, Y: y}
}

// Add returns the component-wise sum.
func (v Vec2d) Add(o Vec2d) Vec2d {
	return Vec2d{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns the component-wise difference. Panics if it would
// underflow; callers are expected to call Min first when the operands
// are not known to be ordered.
func (v Vec2d) Sub(o Vec2d) Vec2d {
	if o.X > v.X || o.Y > v.Y {
		panic("vec2d: Sub would underflow")
	}
	return Vec2d{X: v.X - o.X, Y: v.Y - o.Y}
}

// Min returns the component-wise minimum.
func (v Vec2d) Min(o Vec2d) Vec2d {
	return Vec2d{X: minUint(v.X, o.X), Y: minUint(v.Y, o.Y)}
}

// Max returns the component-wise maximum.
func (v Vec2d) Max(o Vec2d) Vec2d {
	return Vec2d{X: maxUint(v.X, o.X), Y: maxUint(v.Y, o.Y)}
}

// Mul returns the component-wise product.
func (v Vec2d) Mul(o Vec2d) Vec2d {
	return Vec2d{X: v.X * o.X, Y: v.Y * o.Y}
}

// DivScalar performs integer component-wise division by a scalar.
func (v Vec2d) DivScalar(s uint) Vec2d {
	return Vec2d{X: v.X / s, Y: v.Y / s}
}

// MulScalar performs component-wise multiplication by a scalar.
func (v Vec2d) MulScalar(s uint) Vec2d {
	return Vec2d{X: v.X * s, Y: v.Y * s}
}

// FitsInside reports whether v is strictly within [0, bound) on both axes,
// i.e. whether a tile positioned at v lies inside a canvas of size bound.
func (v Vec2d) FitsInside(bound Vec2d) bool {
	return v.X < bound.X && v.Y < bound.Y
}

// MaxSizeInRect computes the clamped size of a tile placed at position p
// with nominal size s inside a container of size container:
//
//	MaxSizeInRect(p, s, container) = min(p+s, container) - p
//
// This is the exact invariant named in the specification's testable
// properties; it is used both by the canvas encoder's blit bounds and by
// dezoomer variants that must report a tile's true (possibly truncated)
// size at the right/bottom edge of the image.
func MaxSizeInRect(p, s, container Vec2d) Vec2d {
	bottomRight := p.Add(s).Min(container)
	return bottomRight.Sub(p)
}

func minUint(a, b uint) uint {
	if a < b {
		return a
	}
	return b
}

func maxUint(a, b uint) uint {
	if a > b {
		return a
	}
	return b
}
