// Package errs provides the structured error envelope used across facestudio.
package errs

import (
	"errors"
	"strconv"
	"strings"
)

// Code identifies an error category.
type Code string

const (
	// CodeNotReady indicates the surface has not been attached yet.
	CodeNotReady Code = "not_ready"
	// CodeInvariant indicates a design object violates an element invariant.
	CodeInvariant Code = "invariant"
	// CodeAsset indicates a vector or raster asset could not be fetched or parsed.
	CodeAsset Code = "asset"
	// CodeUnsupported indicates an element type with no registered codec.
	CodeUnsupported Code = "unsupported"
	// CodeInvalid indicates invalid input provided by the caller.
	CodeInvalid Code = "invalid"
	// CodeNotFound indicates a missing element.
	CodeNotFound Code = "not_found"
)

// Position is the approximate canvas position of a faulting element.
type Position struct {
	Left float64
	Top  float64
}

// E captures structured error information about a failed engine operation.
type E struct {
	Op        string
	Code      Code
	Message   string
	ElementID string
	EleType   string
	Position  *Position

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the operation and code.
func New(op string, code Code, opts ...Option) *E {
	e := &E{
		Op:   strings.TrimSpace(op),
		Code: code,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithElement records the id and type of the faulting element.
func WithElement(id, eleType string) Option {
	return func(e *E) {
		e.ElementID = strings.TrimSpace(id)
		e.EleType = strings.TrimSpace(eleType)
	}
}

// WithPosition records where the faulting element sits on the canvas.
func WithPosition(left, top float64) Option {
	return func(e *E) {
		e.Position = &Position{Left: left, Top: top}
	}
}

// WithCause sets the underlying cause.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var parts []string
	op := e.Op
	if op == "" {
		op = "unknown"
	}
	parts = append(parts, "op="+op)

	code := strings.TrimSpace(string(e.Code))
	if code == "" {
		code = "unknown"
	}
	parts = append(parts, "code="+code)

	if e.ElementID != "" {
		parts = append(parts, "id="+strconv.Quote(e.ElementID))
	}
	if e.EleType != "" {
		parts = append(parts, "type="+e.EleType)
	}
	if e.Position != nil {
		parts = append(parts, "at="+strconv.FormatFloat(e.Position.Left, 'f', -1, 64)+","+strconv.FormatFloat(e.Position.Top, 'f', -1, 64))
	}
	if e.Message != "" {
		parts = append(parts, "message="+strconv.Quote(e.Message))
	}
	if e.cause != nil {
		parts = append(parts, "cause="+strconv.Quote(e.cause.Error()))
	}
	return strings.Join(parts, " ")
}

func (e *E) Unwrap() error { return e.cause }

// Is reports a match against another envelope carrying the same code, so
// sentinel envelopes such as ErrNotReady work with errors.Is.
func (e *E) Is(target error) bool {
	var t *E
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return t.Op == "" && t.Code == e.Code
}

// Sentinels for errors.Is comparisons by code.
var (
	ErrNotReady    = &E{Code: CodeNotReady}
	ErrInvariant   = &E{Code: CodeInvariant}
	ErrAsset       = &E{Code: CodeAsset}
	ErrUnsupported = &E{Code: CodeUnsupported}
	ErrInvalid     = &E{Code: CodeInvalid}
	ErrNotFound    = &E{Code: CodeNotFound}
)

// CodeOf returns the code carried by err, or "" when err is not an envelope.
func CodeOf(err error) Code {
	var e *E
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
