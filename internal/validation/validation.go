// Package validation checks decoded JSON payloads against declarative
// schemas. Every violation is collected before returning, and the cleaned
// payload has numeric strings coerced into integers.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/geocoder89/libraryhub/internal/ids"
	"github.com/go-playground/validator/v10"
)

type Kind int

const (
	String Kind = iota
	Integer
	ObjectID
)

// Field describes one payload key. Tag holds go-playground/validator rules
// applied to the coerced value (for example "min=2,max=50").
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Tag      string
}

type Schema struct {
	Name   string
	Fields []Field
}

// Error carries every human-readable violation found in a payload.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// NewError builds an Error from one or more messages.
func NewError(messages ...string) *Error {
	return &Error{Messages: messages}
}

// AsError reports whether err is (or wraps) a validation Error.
func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return ids.Valid(fl.Field().String())
	})

	return &Validator{v: v}
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Default returns a process-wide Validator. validator.Validate caches struct
// and tag metadata, so one instance is shared.
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

// Validate runs schema against payload with the default Validator.
func Validate(schema Schema, payload map[string]any) (map[string]any, error) {
	return Default().Validate(schema, payload)
}

// Validate returns the cleaned payload or an *Error listing every violation.
func (val *Validator) Validate(schema Schema, payload map[string]any) (map[string]any, error) {
	cleaned := make(map[string]any, len(schema.Fields))
	var messages []string

	known := make(map[string]struct{}, len(schema.Fields))

	for _, f := range schema.Fields {
		known[f.Name] = struct{}{}

		raw, present := payload[f.Name]
		if !present {
			if f.Required {
				messages = append(messages, fmt.Sprintf("%q is required", f.Name))
			}
			continue
		}

		value, msg := coerce(f, raw)
		if msg != "" {
			messages = append(messages, msg)
			continue
		}

		if f.Tag != "" {
			if err := val.v.Var(value, f.Tag); err != nil {
				messages = append(messages, describe(f, err)...)
				continue
			}
		}

		cleaned[f.Name] = value
	}

	var unknown []string
	for key := range payload {
		if _, ok := known[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)

	for _, key := range unknown {
		messages = append(messages, fmt.Sprintf("%q is not allowed", key))
	}

	if len(messages) > 0 {
		return nil, &Error{Messages: messages}
	}

	return cleaned, nil
}

// Decode reads a JSON object body. An empty body decodes to an empty object.
func Decode(r io.Reader) (map[string]any, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, NewError("request body must be valid JSON")
	}

	if dec.More() {
		return nil, NewError("request body must contain a single JSON object")
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, NewError("request body must be a JSON object")
	}

	return obj, nil
}

func coerce(f Field, raw any) (any, string) {
	switch f.Kind {
	case String, ObjectID:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Sprintf("%q must be a string", f.Name)
		}
		if s == "" {
			return nil, fmt.Sprintf("%q is not allowed to be empty", f.Name)
		}
		return s, ""

	case Integer:
		var num float64

		switch v := raw.(type) {
		case json.Number:
			if i, err := v.Int64(); err == nil {
				return i, ""
			}
			parsed, err := v.Float64()
			if err != nil {
				return nil, fmt.Sprintf("%q must be a number", f.Name)
			}
			num = parsed
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || strings.TrimSpace(v) == "" {
				return nil, fmt.Sprintf("%q must be a number", f.Name)
			}
			num = parsed
		case float64:
			num = v
		case int:
			return int64(v), ""
		case int64:
			return v, ""
		default:
			return nil, fmt.Sprintf("%q must be a number", f.Name)
		}

		if math.IsNaN(num) || math.IsInf(num, 0) || math.Abs(num) > 1<<53 {
			return nil, fmt.Sprintf("%q must be a safe number", f.Name)
		}
		if num != math.Trunc(num) {
			return nil, fmt.Sprintf("%q must be an integer", f.Name)
		}
		return int64(num), ""
	}

	return raw, ""
}

func describe(f Field, err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{fmt.Sprintf("%q is invalid", f.Name)}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, message(f, fe.Tag(), fe.Param()))
	}
	return out
}

func message(f Field, rule, param string) string {
	switch rule {
	case "min":
		if f.Kind == Integer {
			return fmt.Sprintf("%q must be greater than or equal to %s", f.Name, param)
		}
		return fmt.Sprintf("%q length must be at least %s characters long", f.Name, param)
	case "max":
		if f.Kind == Integer {
			return fmt.Sprintf("%q must be less than or equal to %s", f.Name, param)
		}
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", f.Name, param)
	case "email":
		return fmt.Sprintf("%q must be a valid email", f.Name)
	case "objectid":
		return fmt.Sprintf("%q must be a valid 24-character hex identifier", f.Name)
	default:
		if param != "" {
			return fmt.Sprintf("%q failed %s validation (%s)", f.Name, rule, param)
		}
		return fmt.Sprintf("%q failed %s validation", f.Name, rule)
	}
}
