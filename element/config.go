package element

import (
	"reflect"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

// Config is the flat, surface-independent record of one element as stored
// in a configuration document. Keys the current schema does not know are
// kept in Extra so decoders can normalise legacy names.
type Config struct {
	ID      string  `json:"id"`
	EleType EleType `json:"eleType"`

	Left    float64 `json:"left"`
	Top     float64 `json:"top"`
	OriginX string  `json:"originX,omitempty"`
	OriginY string  `json:"originY,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Angle   float64 `json:"angle,omitempty"`

	Color       string  `json:"color,omitempty"`
	BgColor     string  `json:"bgColor,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	FontFamily  string  `json:"fontFamily,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
	TextAlign   string  `json:"textAlign,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`

	Text   string `json:"text,omitempty"`
	Format string `json:"format,omitempty"`

	DataProperty string `json:"dataProperty,omitempty"`
	GoalProperty string `json:"goalProperty,omitempty"`
	MetricSymbol string `json:"metricSymbol,omitempty"`

	Progress         float64 `json:"progress,omitempty"`
	Level            float64 `json:"level,omitempty"`
	Padding          float64 `json:"padding,omitempty"`
	Separator        float64 `json:"separator,omitempty"`
	Radius           float64 `json:"radius,omitempty"`
	StartAngle       float64 `json:"startAngle,omitempty"`
	EndAngle         float64 `json:"endAngle,omitempty"`
	CounterClockwise bool    `json:"counterClockwise,omitempty"`

	LowColor      string `json:"lowColor,omitempty"`
	MediumColor   string `json:"mediumColor,omitempty"`
	HighColor     string `json:"highColor,omitempty"`
	ActiveColor   string `json:"activeColor,omitempty"`
	InactiveColor string `json:"inactiveColor,omitempty"`

	AssetURL string   `json:"assetUrl,omitempty"`
	PivotX   *float64 `json:"pivotX,omitempty"`
	PivotY   *float64 `json:"pivotY,omitempty"`

	Shape   string    `json:"shape,omitempty"`
	Columns int       `json:"columns,omitempty"`
	Samples []float64 `json:"samples,omitempty"`

	Extra map[string]any `json:"-"`
}

type configAlias Config

var (
	configKeysOnce sync.Once
	configKeys     map[string]struct{}
)

func knownConfigKeys() map[string]struct{} {
	configKeysOnce.Do(func() {
		configKeys = make(map[string]struct{})
		t := reflect.TypeOf(Config{})
		for i := 0; i < t.NumField(); i++ {
			name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
			if name != "" && name != "-" {
				configKeys[name] = struct{}{}
			}
		}
	})
	return configKeys
}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
func (c *Config) UnmarshalJSON(data []byte) error {
	var a configAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	known := knownConfigKeys()
	for k, v := range raw {
		if _, ok := known[k]; ok {
			continue
		}
		if a.Extra == nil {
			a.Extra = make(map[string]any)
		}
		a.Extra[k] = v
	}
	*c = Config(a)
	return nil
}

// Float returns a pointer to v, for the optional config fields.
func Float(v float64) *float64 {
	return &v
}
