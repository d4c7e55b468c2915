package asset

import (
	"fmt"
	"math"
	"strconv"
)

// Op is an absolute drawing operation produced by ParsePathData.
type Op byte

const (
	OpMove  Op = 'M'
	OpLine  Op = 'L'
	OpCubic Op = 'C'
	OpQuad  Op = 'Q'
	OpClose Op = 'Z'
)

// Point is a 2D coordinate.
type Point struct{ X, Y float64 }

// Command is one drawing operation with its absolute control and end points.
type Command struct {
	Op  Op
	Pts []Point
}

// arcSteps is how many line segments approximate one elliptical arc.
const arcSteps = 24

// ParsePathData converts SVG path data into absolute move, line, cubic,
// quadratic and close commands. Smooth curves are expanded and elliptical
// arcs are flattened to line segments.
func ParsePathData(d string) ([]Command, error) {
	p := &pathLexer{s: d}
	var (
		cmds             []Command
		cur, start, ctrl Point
		prevOp           byte
		op               byte
	)
	for {
		p.skipSeparators()
		if p.done() {
			break
		}
		if c := p.peek(); isCommand(c) {
			op = c
			p.i++
		} else if op == 0 {
			return nil, fmt.Errorf("path data: expected command at offset %d", p.i)
		}
		rel := op >= 'a' && op <= 'z'
		abs := func(x, y float64) Point {
			if rel {
				return Point{cur.X + x, cur.Y + y}
			}
			return Point{x, y}
		}
		switch op {
		case 'M', 'm':
			x, y, err := p.pair()
			if err != nil {
				return nil, err
			}
			cur = abs(x, y)
			start = cur
			cmds = append(cmds, Command{Op: OpMove, Pts: []Point{cur}})
			if rel {
				op = 'l'
			} else {
				op = 'L'
			}
		case 'L', 'l':
			x, y, err := p.pair()
			if err != nil {
				return nil, err
			}
			cur = abs(x, y)
			cmds = append(cmds, Command{Op: OpLine, Pts: []Point{cur}})
		case 'H', 'h':
			x, err := p.number()
			if err != nil {
				return nil, err
			}
			if rel {
				x += cur.X
			}
			cur = Point{x, cur.Y}
			cmds = append(cmds, Command{Op: OpLine, Pts: []Point{cur}})
		case 'V', 'v':
			y, err := p.number()
			if err != nil {
				return nil, err
			}
			if rel {
				y += cur.Y
			}
			cur = Point{cur.X, y}
			cmds = append(cmds, Command{Op: OpLine, Pts: []Point{cur}})
		case 'C', 'c', 'S', 's':
			var c1 Point
			if op == 'C' || op == 'c' {
				x, y, err := p.pair()
				if err != nil {
					return nil, err
				}
				c1 = abs(x, y)
			} else {
				c1 = cur
				if prevOp == 'C' || prevOp == 'c' || prevOp == 'S' || prevOp == 's' {
					c1 = Point{2*cur.X - ctrl.X, 2*cur.Y - ctrl.Y}
				}
			}
			x2, y2, err := p.pair()
			if err != nil {
				return nil, err
			}
			x, y, err := p.pair()
			if err != nil {
				return nil, err
			}
			c2, end := abs(x2, y2), abs(x, y)
			cmds = append(cmds, Command{Op: OpCubic, Pts: []Point{c1, c2, end}})
			ctrl, cur = c2, end
		case 'Q', 'q', 'T', 't':
			var c1 Point
			if op == 'Q' || op == 'q' {
				x, y, err := p.pair()
				if err != nil {
					return nil, err
				}
				c1 = abs(x, y)
			} else {
				c1 = cur
				if prevOp == 'Q' || prevOp == 'q' || prevOp == 'T' || prevOp == 't' {
					c1 = Point{2*cur.X - ctrl.X, 2*cur.Y - ctrl.Y}
				}
			}
			x, y, err := p.pair()
			if err != nil {
				return nil, err
			}
			end := abs(x, y)
			cmds = append(cmds, Command{Op: OpQuad, Pts: []Point{c1, end}})
			ctrl, cur = c1, end
		case 'A', 'a':
			vals := make([]float64, 7)
			for i := range vals {
				v, err := p.number()
				if err != nil {
					return nil, err
				}
				vals[i] = v
				p.skipSeparators()
			}
			end := abs(vals[5], vals[6])
			for _, pt := range flattenArc(cur, end, vals[0], vals[1], vals[2], vals[3] != 0, vals[4] != 0) {
				cmds = append(cmds, Command{Op: OpLine, Pts: []Point{pt}})
			}
			cur = end
		case 'Z', 'z':
			cmds = append(cmds, Command{Op: OpClose})
			cur = start
		default:
			return nil, fmt.Errorf("path data: unsupported command %q", op)
		}
		prevOp = op
	}
	return cmds, nil
}

func isCommand(c byte) bool {
	switch c {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'S', 's', 'Q', 'q', 'T', 't', 'A', 'a', 'Z', 'z':
		return true
	}
	return false
}

// flattenArc approximates an SVG elliptical arc with points ending at to,
// using the endpoint-to-centre conversion from the SVG implementation notes.
func flattenArc(from, to Point, rx, ry, rotDeg float64, large, sweep bool) []Point {
	if rx == 0 || ry == 0 || from == to {
		return []Point{to}
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	phi := rotDeg * math.Pi / 180
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)
	dx, dy := (from.X-to.X)/2, (from.Y-to.Y)/2
	x1 := cosPhi*dx + sinPhi*dy
	y1 := -sinPhi*dx + cosPhi*dy

	if lambda := x1*x1/(rx*rx) + y1*y1/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx, ry = rx*s, ry*s
	}
	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := 0.0
	if den != 0 && num > 0 {
		coef = math.Sqrt(num / den)
	}
	if large == sweep {
		coef = -coef
	}
	cx1 := coef * rx * y1 / ry
	cy1 := -coef * ry * x1 / rx
	cx := cosPhi*cx1 - sinPhi*cy1 + (from.X+to.X)/2
	cy := sinPhi*cx1 + cosPhi*cy1 + (from.Y+to.Y)/2

	angle := func(ux, uy, vx, vy float64) float64 {
		a := math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
		return a
	}
	theta1 := angle(1, 0, (x1-cx1)/rx, (y1-cy1)/ry)
	delta := angle((x1-cx1)/rx, (y1-cy1)/ry, (-x1-cx1)/rx, (-y1-cy1)/ry)
	if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	} else if sweep && delta < 0 {
		delta += 2 * math.Pi
	}

	pts := make([]Point, 0, arcSteps)
	for i := 1; i <= arcSteps; i++ {
		t := theta1 + delta*float64(i)/arcSteps
		ex, ey := rx*math.Cos(t), ry*math.Sin(t)
		pts = append(pts, Point{
			X: cosPhi*ex - sinPhi*ey + cx,
			Y: sinPhi*ex + cosPhi*ey + cy,
		})
	}
	pts[len(pts)-1] = to
	return pts
}

type pathLexer struct {
	s string
	i int
}

func (p *pathLexer) done() bool { return p.i >= len(p.s) }
func (p *pathLexer) peek() byte { return p.s[p.i] }

func (p *pathLexer) skipSeparators() {
	for !p.done() {
		switch p.s[p.i] {
		case ' ', ',', '\n', '\r', '\t':
			p.i++
		default:
			return
		}
	}
}

func (p *pathLexer) number() (float64, error) {
	p.skipSeparators()
	startAt := p.i
	if !p.done() && (p.s[p.i] == '+' || p.s[p.i] == '-') {
		p.i++
	}
	seenDot, seenExp := false, false
scan:
	for !p.done() {
		c := p.s[p.i]
		switch {
		case c >= '0' && c <= '9':
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && !seenExp:
			seenExp = true
			if p.i+1 < len(p.s) && (p.s[p.i+1] == '+' || p.s[p.i+1] == '-') {
				p.i++
			}
		default:
			break scan
		}
		p.i++
	}
	if startAt == p.i {
		return 0, fmt.Errorf("path data: expected number at offset %d", startAt)
	}
	v, err := strconv.ParseFloat(p.s[startAt:p.i], 64)
	if err != nil {
		return 0, fmt.Errorf("path data: %w", err)
	}
	return v, nil
}

func (p *pathLexer) pair() (float64, float64, error) {
	x, err := p.number()
	if err != nil {
		return 0, 0, err
	}
	y, err := p.number()
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
