package svgpath

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errBadPath = errors.New("svgpath: malformed path data")

// ParseNumbers parses a list of numbers separated by
// commas and/or white space, such as a viewBox or a points attribute.
func ParseNumbers(s string) ([]float64, error) {
	sc := scanner{s: s}
	var out []float64
	for {
		sc.skipSeparators()
		if sc.done() {
			return out, nil
		}
		f, ok := sc.number()
		if !ok {
			return out, fmt.Errorf("svgpath: invalid number list %q", s)
		}
		out = append(out, f)
	}
}

// ParseLength parses a length, ignoring a "px" suffix.
// Percentages and other units are not supported.
func ParseLength(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	return strconv.ParseFloat(s, 64)
}

// scanner reads the compact number syntax of SVG path data,
// where "1-2.5.5" holds three numbers.
type scanner struct {
	s string
	i int
}

func (sc *scanner) done() bool { return sc.i >= len(sc.s) }

func (sc *scanner) skipSeparators() {
	for sc.i < len(sc.s) {
		switch sc.s[sc.i] {
		case ' ', '\t', '\n', '\r', ',':
			sc.i++
		default:
			return
		}
	}
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

// number reads one number at the current position
func (sc *scanner) number() (float64, bool) {
	start := sc.i
	if sc.i < len(sc.s) && (sc.s[sc.i] == '+' || sc.s[sc.i] == '-') {
		sc.i++
	}
	digits, dot := 0, false
	for sc.i < len(sc.s) {
		b := sc.s[sc.i]
		if isDigit(b) {
			digits++
		} else if b == '.' && !dot {
			dot = true
		} else {
			break
		}
		sc.i++
	}
	if digits == 0 {
		sc.i = start
		return 0, false
	}
	// exponent
	if sc.i < len(sc.s) && (sc.s[sc.i] == 'e' || sc.s[sc.i] == 'E') {
		j := sc.i + 1
		if j < len(sc.s) && (sc.s[j] == '+' || sc.s[j] == '-') {
			j++
		}
		if j < len(sc.s) && isDigit(sc.s[j]) {
			for j < len(sc.s) && isDigit(sc.s[j]) {
				j++
			}
			sc.i = j
		}
	}
	f, err := strconv.ParseFloat(sc.s[start:sc.i], 64)
	if err != nil {
		sc.i = start
		return 0, false
	}
	return f, true
}

// flag reads an arc flag, which may not be separated from the next number
func (sc *scanner) flag() (float64, bool) {
	sc.skipSeparators()
	if sc.done() {
		return 0, false
	}
	switch sc.s[sc.i] {
	case '0':
		sc.i++
		return 0, true
	case '1':
		sc.i++
		return 1, true
	}
	return 0, false
}

// pathCursor is used while compiling path data
type pathCursor struct {
	path             Path
	placeX, placeY   float64 // current point
	startX, startY   float64 // start of the current sub path
	cntlPtX, cntlPtY float64 // last control point, for smooth curves
	lastKey          byte
	inPath           bool
}

// argCount gives the number of arguments of each command
var argCount = map[byte]int{
	'm': 2, 'l': 2, 'h': 1, 'v': 1, 'c': 6, 's': 4, 'q': 4, 't': 2, 'a': 7, 'z': 0,
}

// Parse compiles the content of a "d" attribute into a Path.
func Parse(d string) (Path, error) {
	var c pathCursor
	if err := c.compile(d); err != nil {
		return c.path, err
	}
	return c.path, nil
}

func (c *pathCursor) compile(d string) error {
	sc := scanner{s: d}
	var points [7]float64
	for {
		sc.skipSeparators()
		if sc.done() {
			return nil
		}
		key := sc.s[sc.i]
		lower := key | 0x20
		n, ok := argCount[lower]
		if !ok {
			return fmt.Errorf("%w: unexpected %q at %d", errBadPath, key, sc.i)
		}
		sc.i++
		if n == 0 {
			c.addSeg(key, nil)
			continue
		}
		// a command may be followed by several sets of arguments
		for first := true; ; first = false {
			sc.skipSeparators()
			if sc.done() || !startsNumber(sc.s[sc.i]) {
				if first {
					return fmt.Errorf("%w: missing arguments for %q", errBadPath, key)
				}
				break
			}
			for j := 0; j < n; j++ {
				var f float64
				var ok bool
				if lower == 'a' && (j == 3 || j == 4) {
					f, ok = sc.flag()
				} else {
					sc.skipSeparators()
					f, ok = sc.number()
				}
				if !ok {
					return fmt.Errorf("%w: bad argument %d for %q", errBadPath, j, key)
				}
				points[j] = f
			}
			c.addSeg(key, points[:n])
			// implicit lineto after a moveto
			if key == 'M' {
				key = 'L'
			} else if key == 'm' {
				key = 'l'
			}
		}
	}
}

func startsNumber(b byte) bool {
	return isDigit(b) || b == '-' || b == '+' || b == '.'
}

func (c *pathCursor) valsToAbs(rel bool, points []float64) {
	if !rel {
		return
	}
	for i := 0; i+1 < len(points); i += 2 {
		points[i] += c.placeX
		points[i+1] += c.placeY
	}
}

// reflectControl returns the reflection of the last control point
// when the previous command was of the same family.
func (c *pathCursor) reflectControl(family string) (float64, float64) {
	if strings.IndexByte(family, c.lastKey|0x20) >= 0 {
		return 2*c.placeX - c.cntlPtX, 2*c.placeY - c.cntlPtY
	}
	return c.placeX, c.placeY
}

func (c *pathCursor) addSeg(key byte, points []float64) {
	rel := key >= 'a'
	lower := key | 0x20
	switch lower {
	case 'z':
		c.path.Stop(true)
		c.placeX, c.placeY = c.startX, c.startY
		c.inPath = false
	case 'm':
		c.valsToAbs(rel, points)
		c.placeX, c.placeY = points[0], points[1]
		c.startX, c.startY = c.placeX, c.placeY
		c.path.Start(toFixedP(c.placeX, c.placeY))
		c.inPath = true
	case 'l':
		c.ensureStarted()
		c.valsToAbs(rel, points)
		c.placeX, c.placeY = points[0], points[1]
		c.path.Line(toFixedP(c.placeX, c.placeY))
	case 'h':
		c.ensureStarted()
		if rel {
			c.placeX += points[0]
		} else {
			c.placeX = points[0]
		}
		c.path.Line(toFixedP(c.placeX, c.placeY))
	case 'v':
		c.ensureStarted()
		if rel {
			c.placeY += points[0]
		} else {
			c.placeY = points[0]
		}
		c.path.Line(toFixedP(c.placeX, c.placeY))
	case 'q':
		c.ensureStarted()
		c.valsToAbs(rel, points)
		c.cntlPtX, c.cntlPtY = points[0], points[1]
		c.placeX, c.placeY = points[2], points[3]
		c.path.QuadBezier(toFixedP(c.cntlPtX, c.cntlPtY), toFixedP(c.placeX, c.placeY))
	case 't':
		c.ensureStarted()
		c.valsToAbs(rel, points)
		c.cntlPtX, c.cntlPtY = c.reflectControl("qt")
		c.placeX, c.placeY = points[0], points[1]
		c.path.QuadBezier(toFixedP(c.cntlPtX, c.cntlPtY), toFixedP(c.placeX, c.placeY))
	case 'c':
		c.ensureStarted()
		c.valsToAbs(rel, points)
		c.cntlPtX, c.cntlPtY = points[2], points[3]
		c.placeX, c.placeY = points[4], points[5]
		c.path.CubeBezier(toFixedP(points[0], points[1]), toFixedP(c.cntlPtX, c.cntlPtY), toFixedP(c.placeX, c.placeY))
	case 's':
		c.ensureStarted()
		c.valsToAbs(rel, points)
		x1, y1 := c.reflectControl("cs")
		c.cntlPtX, c.cntlPtY = points[0], points[1]
		c.placeX, c.placeY = points[2], points[3]
		c.path.CubeBezier(toFixedP(x1, y1), toFixedP(c.cntlPtX, c.cntlPtY), toFixedP(c.placeX, c.placeY))
	case 'a':
		c.ensureStarted()
		if rel {
			points[5] += c.placeX
			points[6] += c.placeY
		}
		ra, rb := math.Abs(points[0]), math.Abs(points[1])
		if ra == 0 || rb == 0 { // degenerate arc is a line
			c.placeX, c.placeY = points[5], points[6]
			c.path.Line(toFixedP(c.placeX, c.placeY))
			break
		}
		cx, cy := findEllipseCenter(&ra, &rb, points[2]*math.Pi/180, c.placeX, c.placeY,
			points[5], points[6], points[4] == 0, points[3] == 0)
		points[0], points[1] = ra, rb
		c.placeX, c.placeY = c.path.addArc(points, cx, cy, c.placeX, c.placeY)
	}
	c.lastKey = key
}

// ensureStarted opens a sub path at the current point after a close
func (c *pathCursor) ensureStarted() {
	if !c.inPath {
		c.path.Start(toFixedP(c.placeX, c.placeY))
		c.startX, c.startY = c.placeX, c.placeY
		c.inPath = true
	}
}
