package element

import (
	"fmt"

	"facestudio/errs"
	"facestudio/surface"
)

// Invariant builds an invariant error that names the element, its type and
// its approximate position.
func Invariant(op string, obj *surface.Object, format string, args ...any) error {
	opts := []errs.Option{errs.WithMessage(fmt.Sprintf(format, args...))}
	if obj != nil {
		opts = append(opts,
			errs.WithElement(obj.ID(), obj.EleType()),
			errs.WithPosition(obj.Left, obj.Top))
	}
	return errs.New(op, errs.CodeInvariant, opts...)
}

// CheckBinding enforces the binding rules for t: metric-display elements
// carry exactly one binding, goal gauges a goalProperty, and charts and
// indicators a dataProperty.
func CheckBinding(op string, obj *surface.Object, t EleType, b Binding) error {
	switch {
	case t.ShowsMetric():
		if n := b.Count(); n != 1 {
			return Invariant(op, obj, "%s element needs exactly one binding, has %d", t, n)
		}
	case t == TypeGoalBar || t == TypeGoalArc:
		if b.GoalProperty == "" {
			return Invariant(op, obj, "%s element has no goalProperty", t)
		}
	case t == TypeCharts || t == TypeIndicators:
		if b.DataProperty == "" {
			return Invariant(op, obj, "%s element has no dataProperty", t)
		}
	}
	return nil
}

// RequirePart returns the part of root with the given id or an invariant
// error naming the missing part.
func RequirePart(op string, root *surface.Object, partID string) (*surface.Object, error) {
	if p := root.Part(partID); p != nil {
		return p, nil
	}
	return nil, Invariant(op, root, "missing part %q", partID)
}
