package asset

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type paint struct {
	fill        string
	stroke      string
	strokeWidth float64
	role        string
}

// ParseSVG extracts the drawable sub-paths of an SVG document. Groups pass
// their fill, stroke and background role down to their children. Basic
// shapes are converted to path data.
func ParseSVG(rawURL string, data []byte) (*Asset, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	a := &Asset{URL: rawURL, Format: FormatSVG}
	stack := []paint{{}}
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse svg: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			attrs := attrMap(t.Attr)
			cur := inherit(stack[len(stack)-1], attrs)
			stack = append(stack, cur)
			switch t.Name.Local {
			case "svg":
				if !sawRoot {
					sawRoot = true
					a.Width, a.Height = svgSize(attrs)
				}
			case "path", "rect", "circle", "ellipse", "polygon", "polyline", "line":
				d := shapeData(t.Name.Local, attrs)
				if d == "" {
					continue
				}
				a.Paths = append(a.Paths, Path{
					D:           d,
					Fill:        cur.fill,
					Stroke:      cur.stroke,
					StrokeWidth: cur.strokeWidth,
					Role:        cur.role,
				})
			}
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if !sawRoot {
		return nil, errors.New("parse svg: no <svg> root")
	}
	if len(a.Paths) == 0 {
		return nil, errors.New("parse svg: no drawable paths")
	}
	return a, nil
}

func attrMap(attrs []xml.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, at := range attrs {
		name := at.Name.Local
		if at.Name.Space != "" && at.Name.Space != "http://www.w3.org/2000/svg" {
			continue
		}
		m[name] = strings.TrimSpace(at.Value)
	}
	if style, ok := m["style"]; ok {
		for _, decl := range strings.Split(style, ";") {
			k, v, ok := strings.Cut(decl, ":")
			if !ok {
				continue
			}
			m[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return m
}

func inherit(parent paint, attrs map[string]string) paint {
	cur := parent
	if v, ok := attrs["fill"]; ok {
		cur.fill = v
	}
	if v, ok := attrs["stroke"]; ok {
		cur.stroke = v
	}
	if v, ok := attrs["stroke-width"]; ok {
		cur.strokeWidth = parseLength(v)
	}
	if attrs["data-role"] == RoleBackground || hasClass(attrs["class"], RoleBackground) {
		cur.role = RoleBackground
	}
	return cur
}

func hasClass(classes, name string) bool {
	for _, c := range strings.Fields(classes) {
		if c == name {
			return true
		}
	}
	return false
}

func svgSize(attrs map[string]string) (float64, float64) {
	w, h := parseLength(attrs["width"]), parseLength(attrs["height"])
	if w > 0 && h > 0 {
		return w, h
	}
	fields := strings.FieldsFunc(attrs["viewBox"], func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 4 {
		return parseLength(fields[2]), parseLength(fields[3])
	}
	return w, h
}

func parseLength(v string) float64 {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func fmtNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func shapeData(name string, attrs map[string]string) string {
	n := func(key string) float64 { return parseLength(attrs[key]) }
	switch name {
	case "path":
		return attrs["d"]
	case "rect":
		x, y, w, h := n("x"), n("y"), n("width"), n("height")
		if w <= 0 || h <= 0 {
			return ""
		}
		return fmt.Sprintf("M%s %sH%sV%sH%sZ", fmtNum(x), fmtNum(y), fmtNum(x+w), fmtNum(y+h), fmtNum(x))
	case "circle":
		return ellipseData(n("cx"), n("cy"), n("r"), n("r"))
	case "ellipse":
		return ellipseData(n("cx"), n("cy"), n("rx"), n("ry"))
	case "line":
		return fmt.Sprintf("M%s %sL%s %s", fmtNum(n("x1")), fmtNum(n("y1")), fmtNum(n("x2")), fmtNum(n("y2")))
	case "polygon", "polyline":
		nums := strings.FieldsFunc(attrs["points"], func(r rune) bool { return r == ',' || r == ' ' || r == '\n' || r == '\t' })
		if len(nums) < 4 || len(nums)%2 != 0 {
			return ""
		}
		var b strings.Builder
		for i := 0; i < len(nums); i += 2 {
			if i == 0 {
				b.WriteString("M")
			} else {
				b.WriteString("L")
			}
			b.WriteString(nums[i] + " " + nums[i+1])
		}
		if name == "polygon" {
			b.WriteString("Z")
		}
		return b.String()
	}
	return ""
}

func ellipseData(cx, cy, rx, ry float64) string {
	if rx <= 0 || ry <= 0 {
		return ""
	}
	return fmt.Sprintf("M%s %sA%s %s 0 1 0 %s %sA%s %s 0 1 0 %s %sZ",
		fmtNum(cx-rx), fmtNum(cy),
		fmtNum(rx), fmtNum(ry), fmtNum(cx+rx), fmtNum(cy),
		fmtNum(rx), fmtNum(ry), fmtNum(cx-rx), fmtNum(cy))
}
