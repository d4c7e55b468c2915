package codec

import (
	"facestudio/element"
)

// Entry registers one element type.
type Entry struct {
	Type element.EleType
	// Props are the custom object fields the type stores and which must
	// survive surface serialization.
	Props []string
	New   func(env *Env) element.Codec
}

func textEntry(t element.EleType) Entry {
	e := Entry{Type: t}
	switch t {
	case element.TypeTime, element.TypeDate:
		e.Props = []string{"format"}
		e.New = func(env *Env) element.Codec {
			f := &textFamily{env: env, t: t}
			return &refreshing{codec: &codec{env: env, t: t, f: f}, refresh: f.refresh}
		}
	default:
		e.New = func(env *Env) element.Codec {
			return &codec{env: env, t: t, f: &textFamily{env: env, t: t}}
		}
	}
	return e
}

func artworkEntry(t element.EleType) Entry {
	e := Entry{Type: t}
	if t == element.TypeIndicators {
		e.Props = []string{"inactiveColor"}
	}
	e.New = func(env *Env) element.Codec {
		f := &artworkFamily{env: env, t: t, hand: handOf(t)}
		c := &codec{env: env, t: t, f: f}
		if f.hand != nil {
			return &refreshing{codec: c, refresh: f.refresh}
		}
		return c
	}
	return e
}

func simpleEntry(t element.EleType, props []string, fam func(env *Env) family) Entry {
	return Entry{
		Type:  t,
		Props: props,
		New: func(env *Env) element.Codec {
			return &codec{env: env, t: t, f: fam(env)}
		},
	}
}

// Table lists every element type with its codec constructor.
var Table = []Entry{
	textEntry(element.TypeTime),
	textEntry(element.TypeDate),
	textEntry(element.TypeData),
	textEntry(element.TypeLabel),
	textEntry(element.TypeIcon),
	simpleEntry(element.TypeBattery,
		[]string{"level", "padding", "lowColor", "mediumColor", "highColor"},
		func(env *Env) family { return &batteryFamily{env: env} }),
	simpleEntry(element.TypeMoveBar,
		[]string{"level", "separator", "activeColor", "inactiveColor"},
		func(env *Env) family { return &moveBarFamily{env: env} }),
	simpleEntry(element.TypeGoalBar,
		[]string{"progress", "padding"},
		func(env *Env) family { return &goalBarFamily{env: env} }),
	simpleEntry(element.TypeGoalArc,
		[]string{"progress"},
		func(env *Env) family { return &goalArcFamily{env: env} }),
	artworkEntry(element.TypeHourHand),
	artworkEntry(element.TypeMinuteHand),
	artworkEntry(element.TypeSecondHand),
	artworkEntry(element.TypeTick12),
	artworkEntry(element.TypeTick60),
	artworkEntry(element.TypeRomans),
	simpleEntry(element.TypeShapes, nil,
		func(env *Env) family { return &shapesFamily{env: env} }),
	simpleEntry(element.TypeCharts,
		[]string{"columns", "separator", "samples"},
		func(env *Env) family { return &chartsFamily{env: env} }),
	artworkEntry(element.TypeIndicators),
}

// Install registers every table entry with reg and returns the custom
// property names the codecs declare.
func Install(reg *element.Registry, env *Env) []string {
	var names []string
	for _, e := range Table {
		reg.Register(e.Type, e.New(env))
		names = append(names, e.Props...)
	}
	return names
}
