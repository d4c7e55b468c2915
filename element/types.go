// Package element defines design elements, their configuration records, the
// codec registry and the configuration document.
package element

import "facestudio/surface"

// EleType is the element-type discriminant.
type EleType string

const (
	TypeTime       EleType = "time"
	TypeDate       EleType = "date"
	TypeData       EleType = "data"
	TypeLabel      EleType = "label"
	TypeIcon       EleType = "icon"
	TypeBattery    EleType = "battery"
	TypeMoveBar    EleType = "moveBar"
	TypeGoalBar    EleType = "goalBar"
	TypeGoalArc    EleType = "goalArc"
	TypeHourHand   EleType = "hourHand"
	TypeMinuteHand EleType = "minuteHand"
	TypeSecondHand EleType = "secondHand"
	TypeTick12     EleType = "tick12"
	TypeTick60     EleType = "tick60"
	TypeRomans     EleType = "romans"
	TypeShapes     EleType = "shapes"
	TypeCharts     EleType = "charts"
	TypeIndicators EleType = "indicators"
)

// AllTypes lists every element type in a stable order.
var AllTypes = []EleType{
	TypeTime, TypeDate, TypeData, TypeLabel, TypeIcon,
	TypeBattery, TypeMoveBar, TypeGoalBar, TypeGoalArc,
	TypeHourHand, TypeMinuteHand, TypeSecondHand,
	TypeTick12, TypeTick60, TypeRomans,
	TypeShapes, TypeCharts, TypeIndicators,
}

// Known reports whether t is one of the enumerated types.
func (t EleType) Known() bool {
	for _, k := range AllTypes {
		if k == t {
			return true
		}
	}
	return false
}

// ShowsMetric reports whether the element displays a device metric and so
// needs exactly one binding.
func (t EleType) ShowsMetric() bool {
	switch t {
	case TypeData, TypeLabel, TypeIcon:
		return true
	}
	return false
}

// IsHand reports whether t is an analog hand.
func (t EleType) IsHand() bool {
	switch t {
	case TypeHourHand, TypeMinuteHand, TypeSecondHand:
		return true
	}
	return false
}

// Live is a handle to an element on the surface. It may be stale after an
// undo or redo reload; codecs always resolve elements by ID.
type Live struct {
	ID     string
	Type   EleType
	Object *surface.Object
}
