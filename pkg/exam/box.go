package exam

import (
	"errors"
	"fmt"
)

var ErrInvalidBox = errors.New("invalid bounding box")

// OracleScale is the coordinate range the oracle reports boxes in.
const OracleScale = 1000

// BoundingBox is a page region in percent (0-100) of page width and height.
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// BoxFromOracle validates a box on the 0-1000 oracle scale and converts it to
// the 0-100 storage scale.
func BoxFromOracle(x1, y1, x2, y2 float64) (*BoundingBox, error) {
	if x2 <= x1 || y2 <= y1 || x1 < 0 || y1 < 0 || x2 > OracleScale || y2 > OracleScale {
		return nil, fmt.Errorf("%w: (%g, %g, %g, %g)", ErrInvalidBox, x1, y1, x2, y2)
	}

	return &BoundingBox{
		X1: x1 / 10,
		Y1: y1 / 10,
		X2: x2 / 10,
		Y2: y2 / 10,
	}, nil
}

// Valid reports whether the box satisfies x2>x1, y2>y1 within [0,100].
func (b BoundingBox) Valid() bool {
	in := func(v float64) bool {
		return v >= 0 && v <= 100
	}

	return b.X2 > b.X1 && b.Y2 > b.Y1 && in(b.X1) && in(b.Y1) && in(b.X2) && in(b.Y2)
}

// Oracle returns the box on the 0-1000 oracle scale.
func (b BoundingBox) Oracle() (x1, y1, x2, y2 float64) {
	return b.X1 * 10, b.Y1 * 10, b.X2 * 10, b.Y2 * 10
}
