package pdf

import (
	"fmt"
	"math"

	"github.com/paperscan/paperscan/pkg/exam"

	"github.com/ledongthuc/pdf"
)

// matrix is a PDF transformation [a b c d e f] mapping (x, y) to
// (a*x + c*y + e, b*x + d*y + f).
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// mul returns the transform applying m first and then n.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// pageRect is the MediaBox of a page in user space.
type pageRect struct {
	X, Y          float64
	Width, Height float64
}

// box maps the unit square drawn under m onto the page and returns it in
// percent of the page, measured from the top-left corner.
func (r pageRect) box(m matrix) (*exam.BoundingBox, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, p := range [][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		x, y := m.apply(p[0], p[1])

		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	clamp := func(v float64) float64 {
		return math.Max(0, math.Min(100, v))
	}

	top := r.Y + r.Height

	b := &exam.BoundingBox{
		X1: clamp((minX - r.X) / r.Width * 100),
		Y1: clamp((top - maxY) / r.Height * 100),
		X2: clamp((maxX - r.X) / r.Width * 100),
		Y2: clamp((top - minY) / r.Height * 100),
	}

	return b, b.Valid()
}

// imagePlacements interprets the page content and returns the box of the
// first placement of every image XObject drawn with Do. Form XObjects are
// not entered.
func imagePlacements(page pdf.Page, rect pageRect, images map[string]bool) (boxes map[string]*exam.BoundingBox, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page content: %v", r)
		}
	}()

	boxes = make(map[string]*exam.BoundingBox)

	contents := page.V.Key("Contents")

	if contents.IsNull() || len(images) == 0 {
		return boxes, nil
	}

	ctm := identity

	var stack []matrix

	pdf.Interpret(contents, func(stk *pdf.Stack, op string) {
		args := make([]pdf.Value, stk.Len())

		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}

		switch op {
		case "q":
			stack = append(stack, ctm)

		case "Q":
			if n := len(stack); n > 0 {
				ctm = stack[n-1]
				stack = stack[:n-1]
			}

		case "cm":
			if len(args) != 6 {
				return
			}

			var m matrix

			for i := range m {
				m[i] = args[i].Float64()
			}

			ctm = m.mul(ctm)

		case "Do":
			if len(args) != 1 {
				return
			}

			name := args[0].Name()

			if !images[name] || boxes[name] != nil {
				return
			}

			if b, ok := rect.box(ctm); ok {
				boxes[name] = b
			}
		}
	})

	return boxes, nil
}
