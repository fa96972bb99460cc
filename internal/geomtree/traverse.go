package geomtree

import "fmt"

// PrimitiveKind discriminates the renderable primitives produced by Flatten.
type PrimitiveKind uint8

const (
	PrimPolygon PrimitiveKind = iota
	PrimLine
	PrimPoint
)

// Primitive is a single renderable unit handed to a rasterizer. For
// PrimPolygon, Rings[0] is the exterior and Rings[1:] are holes — all
// merged into one active-edge table by the scan converter (spec §4.3).
type Primitive struct {
	Kind  PrimitiveKind
	Rings []Ring
	Line  []Coord
	Point Coord
}

// UnsupportedGeometryError is returned when Flatten encounters a Kind value
// outside the seven the engine understands.
type UnsupportedGeometryError struct {
	Kind Kind
}

func (e *UnsupportedGeometryError) Error() string {
	return fmt.Sprintf("geomtree: unsupported geometry kind %s", e.Kind)
}

// MalformedRingError is returned when a polygon ring fails the closed,
// >=4-point invariant.
type MalformedRingError struct {
	Reason string
}

func (e *MalformedRingError) Error() string {
	return fmt.Sprintf("geomtree: malformed ring: %s", e.Reason)
}

// Flatten walks a geometry tree and returns the stream of primitives it
// decomposes into. Multi* wrappers and GeometryCollection are flattened
// without a recursion-depth limit: an explicit stack is used instead of the
// call stack so a pathologically deep collection-of-collections input
// cannot blow the goroutine stack.
func Flatten(g Geometry) ([]Primitive, error) {
	var out []Primitive
	stack := []Geometry{g}

	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]

		switch cur.Kind {
		case KindPoint:
			out = append(out, Primitive{Kind: PrimPoint, Point: cur.Point})

		case KindLineString:
			out = append(out, Primitive{Kind: PrimLine, Line: cur.Line})

		case KindPolygon:
			rings := make([]Ring, 0, 1+len(cur.Polygon.Holes))
			if !cur.Polygon.Exterior.Valid() {
				return nil, &MalformedRingError{Reason: "exterior ring has <4 points or is not closed"}
			}
			rings = append(rings, cur.Polygon.Exterior)
			for i, h := range cur.Polygon.Holes {
				if !h.Valid() {
					return nil, &MalformedRingError{Reason: fmt.Sprintf("hole ring %d has <4 points or is not closed", i)}
				}
				rings = append(rings, h)
			}
			out = append(out, Primitive{Kind: PrimPolygon, Rings: rings})

		case KindMultiPoint, KindMultiLineString, KindMultiPolygon, KindGeometryCollection:
			// Push members in reverse so they pop (and therefore appear in
			// the output) in original order.
			for i := len(cur.Members) - 1; i >= 0; i-- {
				stack = append(stack, cur.Members[i])
			}

		default:
			return nil, &UnsupportedGeometryError{Kind: cur.Kind}
		}
	}

	return out, nil
}
