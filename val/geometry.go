package val

import "fmt"

// geometryRank fixes the variant order used by Geometry.Compare: Point <
// Line < Polygon < MultiPoint < MultiLine < MultiPolygon < Collection,
// grounded on original_source/core/src/sql/geometry.rs's Ord derive (the
// enum's declaration order becomes its comparison order).
type geometryRank uint8

const (
	rankPoint geometryRank = iota
	rankLine
	rankPolygon
	rankMultiPoint
	rankMultiLine
	rankMultiPolygon
	rankCollection
)

// Coord is a (x, y) coordinate pair.
type Coord struct{ X, Y float64 }

func (c Coord) compare(o Coord) int {
	if d := FloatTotalCompare(c.X, o.X); d != 0 {
		return d
	}
	return FloatTotalCompare(c.Y, o.Y)
}

// Geometry is the total-ordered sum type backing Value's Geometry kind:
// Point, Line, Polygon, and their Multi*/Collection variants.
type Geometry interface {
	fmt.Stringer
	rank() geometryRank
	// coords returns the geometry's coordinate pairs in a deterministic
	// order, used by Compare's lexicographic tie-break.
	coords() []Coord
}

// Compare implements the total order from spec.md §3: variant-rank first,
// then lexicographic comparison over coordinate pairs.
func Compare(a, b Geometry) int {
	if a.rank() != b.rank() {
		if a.rank() < b.rank() {
			return -1
		}
		return 1
	}
	ac, bc := a.coords(), b.coords()
	n := len(ac)
	if len(bc) < n {
		n = len(bc)
	}
	for i := 0; i < n; i++ {
		if d := ac[i].compare(bc[i]); d != 0 {
			return d
		}
	}
	switch {
	case len(ac) < len(bc):
		return -1
	case len(ac) > len(bc):
		return 1
	default:
		return 0
	}
}

type Point struct{ Coord }

func (p Point) rank() geometryRank  { return rankPoint }
func (p Point) coords() []Coord     { return []Coord{p.Coord} }
func (p Point) String() string      { return fmt.Sprintf("POINT(%g %g)", p.X, p.Y) }

type Line struct{ Points []Coord }

func (l Line) rank() geometryRank { return rankLine }
func (l Line) coords() []Coord    { return l.Points }
func (l Line) String() string     { return fmt.Sprintf("LINESTRING(%d pts)", len(l.Points)) }

// Polygon's first ring is the exterior; any further rings are holes.
type Polygon struct{ Rings [][]Coord }

func (p Polygon) rank() geometryRank { return rankPolygon }
func (p Polygon) coords() []Coord {
	var out []Coord
	for _, r := range p.Rings {
		out = append(out, r...)
	}
	return out
}
func (p Polygon) String() string { return fmt.Sprintf("POLYGON(%d rings)", len(p.Rings)) }

type MultiPoint struct{ Points []Coord }

func (m MultiPoint) rank() geometryRank { return rankMultiPoint }
func (m MultiPoint) coords() []Coord    { return m.Points }
func (m MultiPoint) String() string     { return fmt.Sprintf("MULTIPOINT(%d pts)", len(m.Points)) }

type MultiLine struct{ Lines []Line }

func (m MultiLine) rank() geometryRank { return rankMultiLine }
func (m MultiLine) coords() []Coord {
	var out []Coord
	for _, l := range m.Lines {
		out = append(out, l.Points...)
	}
	return out
}
func (m MultiLine) String() string { return fmt.Sprintf("MULTILINESTRING(%d)", len(m.Lines)) }

type MultiPolygon struct{ Polygons []Polygon }

func (m MultiPolygon) rank() geometryRank { return rankMultiPolygon }
func (m MultiPolygon) coords() []Coord {
	var out []Coord
	for _, p := range m.Polygons {
		out = append(out, p.coords()...)
	}
	return out
}
func (m MultiPolygon) String() string { return fmt.Sprintf("MULTIPOLYGON(%d)", len(m.Polygons)) }

type Collection struct{ Geometries []Geometry }

func (c Collection) rank() geometryRank { return rankCollection }
func (c Collection) coords() []Coord {
	var out []Coord
	for _, g := range c.Geometries {
		out = append(out, g.coords()...)
	}
	return out
}
func (c Collection) String() string { return fmt.Sprintf("GEOMETRYCOLLECTION(%d)", len(c.Geometries)) }
