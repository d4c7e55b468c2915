package element

import (
	"errors"
	"log/slog"
	"slices"
	"sort"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"facestudio/errs"
	"facestudio/internal/logx"
	"facestudio/surface"
)

// DocumentVersion is the schema version written by Encode.
const DocumentVersion = 2

// Binding kinds recorded in Document.Properties.
const (
	KindData   = "dataProperty"
	KindGoal   = "goalProperty"
	KindSymbol = "metricSymbol"
)

// Canvas describes the design surface.
type Canvas struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Background string  `json:"background,omitempty"`
}

// Property records which elements use a bound metric.
type Property struct {
	Kind     string   `json:"kind"`
	Elements []string `json:"elements"`
}

// Document is the persisted configuration of a watch-face design.
type Document struct {
	Version               int                 `json:"version"`
	DesignID              string              `json:"designId"`
	Name                  string              `json:"name"`
	Elements              []Config            `json:"elements"`
	OrderIDs              []string            `json:"orderIds"`
	Properties            map[string]Property `json:"properties"`
	TextCase              string              `json:"textCase,omitempty"`
	ShowUnit              bool                `json:"showUnit"`
	ThemeBackgroundImages []string            `json:"themeBackgroundImages"`
	Canvas                *Canvas             `json:"canvas,omitempty"`
	Wallpaper             string              `json:"wallpaper,omitempty"`
}

// Marshal encodes the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// ParseDocument decodes a document and upgrades older versions in place.
// Newer versions are read as far as they are understood.
func ParseDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errs.New("document.parse", errs.CodeInvalid, errs.WithCause(err))
	}
	if d.Version > DocumentVersion {
		logx.Logger().Warn("reading document from a newer schema, unknown element types will be skipped",
			slog.Int("version", d.Version), slog.Int("supported", DocumentVersion))
	}
	d.upgrade()
	return &d, nil
}

// upgrade brings a version 0 or 1 document to the current schema.
func (d *Document) upgrade() {
	for i := range d.Elements {
		cfg := &d.Elements[i]
		if cfg.ID == "" {
			cfg.ID = uuid.NewString()
		}
		if d.Version < 2 {
			if x, ok := cfg.Extra["x"].(float64); ok && cfg.Left == 0 {
				cfg.Left = x
			}
			if y, ok := cfg.Extra["y"].(float64); ok && cfg.Top == 0 {
				cfg.Top = y
			}
			delete(cfg.Extra, "x")
			delete(cfg.Extra, "y")
		}
	}
	if len(d.OrderIDs) == 0 {
		d.OrderIDs = make([]string, 0, len(d.Elements))
		for _, cfg := range d.Elements {
			d.OrderIDs = append(d.OrderIDs, cfg.ID)
		}
	}
	if d.Properties == nil {
		d.Properties = map[string]Property{}
	}
	if d.ThemeBackgroundImages == nil {
		d.ThemeBackgroundImages = []string{}
	}
	d.Version = DocumentVersion
}

// Ordered returns the elements back to front: those named by OrderIDs first,
// then the rest in document order. Unknown ids in OrderIDs are ignored.
func (d *Document) Ordered() []Config {
	byID := make(map[string]int, len(d.Elements))
	for i, cfg := range d.Elements {
		byID[cfg.ID] = i
	}
	used := make([]bool, len(d.Elements))
	out := make([]Config, 0, len(d.Elements))
	for _, id := range d.OrderIDs {
		if i, ok := byID[id]; ok && !used[i] {
			used[i] = true
			out = append(out, d.Elements[i])
		}
	}
	for i, cfg := range d.Elements {
		if !used[i] {
			out = append(out, cfg)
		}
	}
	return out
}

// Encode builds a document from the surface. Element order follows layers
// when given, otherwise surface paint order. Guidelines and objects without
// an element tag are not part of the design; tagged objects of a type with
// no encoder are skipped with a warning.
func Encode(objs []*surface.Object, reg *Registry, layers *Layers, meta Document, logger *slog.Logger) (*Document, error) {
	logger = logx.Or(logger)
	doc := meta
	doc.Version = DocumentVersion
	doc.Elements = nil
	doc.OrderIDs = nil
	doc.Properties = map[string]Property{}
	if doc.ThemeBackgroundImages == nil {
		doc.ThemeBackgroundImages = []string{}
	}

	for _, obj := range orderObjects(objs, layers) {
		t := EleType(obj.EleType())
		enc, ok := reg.Encoder(t)
		if !ok {
			logger.Warn("skipping element with no encoder", slog.String("id", obj.ID()), slog.String("eleType", string(t)))
			continue
		}
		cfg, err := enc(obj)
		if err != nil {
			return nil, err
		}
		doc.Elements = append(doc.Elements, cfg)
		doc.OrderIDs = append(doc.OrderIDs, cfg.ID)
		addProperty(doc.Properties, KindData, cfg.DataProperty, cfg.ID)
		addProperty(doc.Properties, KindGoal, cfg.GoalProperty, cfg.ID)
		addProperty(doc.Properties, KindSymbol, cfg.MetricSymbol, cfg.ID)
	}
	if doc.Elements == nil {
		doc.Elements = []Config{}
		doc.OrderIDs = []string{}
	}
	return &doc, nil
}

func orderObjects(objs []*surface.Object, layers *Layers) []*surface.Object {
	var tagged []*surface.Object
	for _, o := range objs {
		if layered(o) {
			tagged = append(tagged, o)
		}
	}
	if layers == nil {
		return tagged
	}
	rank := make(map[string]int, layers.Len())
	for i, id := range layers.ids {
		rank[id] = i
	}
	sort.SliceStable(tagged, func(i, j int) bool {
		ri, iok := rank[tagged[i].ID()]
		rj, jok := rank[tagged[j].ID()]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return false
	})
	return tagged
}

// addProperty records a use of name. The kind of the first use wins.
func addProperty(props map[string]Property, kind, name, id string) {
	if name == "" {
		return
	}
	p, ok := props[name]
	if !ok {
		p = Property{Kind: kind}
	}
	if !slices.Contains(p.Elements, id) {
		p.Elements = append(p.Elements, id)
	}
	props[name] = p
}

// Skipped is an element a load left out.
type Skipped struct {
	ID      string
	EleType EleType
	Reason  string
}

// Failed is an element whose decode or add returned an error.
type Failed struct {
	ID      string
	EleType EleType
	Err     error
}

// LoadReport summarises a document load.
type LoadReport struct {
	Loaded  []string
	Skipped []Skipped
	Failed  []Failed
}

// Err joins the failures, or returns nil when every element loaded or was
// skipped.
func (r LoadReport) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	list := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		list = append(list, f.Err)
	}
	return errors.Join(list...)
}

// Plan decodes every element of doc in paint order. Elements of unknown type
// are skipped with a warning; decode errors are reported as failures.
func Plan(doc *Document, reg *Registry, logger *slog.Logger) ([]Params, LoadReport) {
	logger = logx.Or(logger)
	var (
		out    []Params
		report LoadReport
	)
	for _, cfg := range doc.Ordered() {
		dec, ok := reg.Decoder(cfg.EleType)
		if !ok {
			logger.Warn("skipping unknown element type", slog.String("id", cfg.ID), slog.String("eleType", string(cfg.EleType)))
			report.Skipped = append(report.Skipped, Skipped{ID: cfg.ID, EleType: cfg.EleType, Reason: "unsupported element type"})
			continue
		}
		p, err := dec(cfg)
		if err != nil {
			report.Failed = append(report.Failed, Failed{ID: cfg.ID, EleType: cfg.EleType, Err: err})
			continue
		}
		out = append(out, p)
	}
	return out, report
}
