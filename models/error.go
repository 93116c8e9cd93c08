package models

import (
	"encoding/json"
	"strings"
)

// ErrorPayload is the structured error the backend sends inside the response envelope.
type ErrorPayload struct {
	Code            string                  `json:"code"`
	Message         string                  `json:"message"`
	ValidationError *ValidationErrorPayload `json:"validationError,omitempty"`
}

// ValidationErrorPayload groups field level failures by the part of the request they refer to.
type ValidationErrorPayload struct {
	Body   []DetailedInfo `json:"body"`
	Params []DetailedInfo `json:"params,omitempty"`
	Query  []DetailedInfo `json:"query,omitempty"`
}

// DetailedInfo describes one failed validation rule. Every field is optional on the
// wire and resolves to a static default, so decoding never fails on a partial object.
type DetailedInfo struct {
	Message string   `json:"message"`
	Path    []string `json:"path"`
	Type    string   `json:"type"`
	Context Context  `json:"context"`
}

// Context carries the rule parameters of a DetailedInfo.
type Context struct {
	Limit float64 `json:"limit"`
	Value float64 `json:"value"`
	Label string  `json:"label"`
	Key   string  `json:"key"`
}

// ContextStub is the value used when the server omits the context object.
var ContextStub = Context{}

func (c *Context) UnmarshalJSON(data []byte) error {
	var raw struct {
		Limit *float64 `json:"limit"`
		Value *float64 `json:"value"`
		Label *string  `json:"label"`
		Key   *string  `json:"key"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = ContextStub
	if raw.Limit != nil {
		c.Limit = *raw.Limit
	}
	if raw.Value != nil {
		c.Value = *raw.Value
	}
	if raw.Label != nil {
		c.Label = *raw.Label
	}
	if raw.Key != nil {
		c.Key = *raw.Key
	}
	return nil
}

func (d *DetailedInfo) UnmarshalJSON(data []byte) error {
	var raw struct {
		Message *string  `json:"message"`
		Path    []string `json:"path"`
		Type    *string  `json:"type"`
		Context *Context `json:"context"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = DetailedInfo{
		Path:    []string{},
		Context: ContextStub,
	}
	if raw.Message != nil {
		d.Message = *raw.Message
	}
	if raw.Path != nil {
		d.Path = raw.Path
	}
	if raw.Type != nil {
		d.Type = *raw.Type
	}
	if raw.Context != nil {
		d.Context = *raw.Context
	}
	return nil
}

// FieldName joins the path segments with "." ("" for an empty path).
func (d DetailedInfo) FieldName() string {
	return strings.Join(d.Path, ".")
}

// Fields flattens body, params and query failures, in that order.
func (p ErrorPayload) Fields() []Field {
	fields := []Field{}
	if p.ValidationError == nil {
		return fields
	}

	groups := [][]DetailedInfo{
		p.ValidationError.Body,
		p.ValidationError.Params,
		p.ValidationError.Query,
	}
	for _, group := range groups {
		for _, info := range group {
			fields = append(fields, Field{
				Field:   info.FieldName(),
				Message: info.Message,
			})
		}
	}
	return fields
}

// ValidationError represents a single field validation error found before a request is sent
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}
	return v.Errors[0].Message
}
