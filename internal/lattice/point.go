package lattice

import "fmt"

// Point is a (row, col) cell coordinate.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Point) Add(q Point) Point {
	return Point{Row: p.Row + q.Row, Col: p.Col + q.Col}
}

func (p Point) Sub(q Point) Point {
	return Point{Row: p.Row - q.Row, Col: p.Col - q.Col}
}

// Reflect returns the point reflection of p through c: 2*(c-p)+p.
func (p Point) Reflect(c Point) Point {
	return Point{Row: 2*(c.Row-p.Row) + p.Row, Col: 2*(c.Col-p.Col) + p.Col}
}

// Adjacent reports whether p and q are orthogonal lattice neighbors.
func (p Point) Adjacent(q Point) bool {
	return abs(p.Row-q.Row)+abs(p.Col-q.Col) == 1
}

// Orthogonal returns the two unit vectors perpendicular to a unit vector d.
func (p Point) Orthogonal() (Point, Point) {
	return Point{Row: p.Col, Col: p.Row}, Point{Row: -p.Col, Col: -p.Row}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

var directions = [4]Point{
	{Row: -1, Col: 0},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: 0, Col: 1},
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
