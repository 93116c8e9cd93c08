package models

import (
	"net/http"
	"net/url"
)

// Request describes one call to the backend. Path is resolved against the client's base URL.
type Request struct {
	Method  string      `json:"method" validate:"required,oneof=GET POST PUT PATCH DELETE HEAD"`
	Path    string      `json:"path" validate:"required"`
	Query   url.Values  `json:"query,omitempty"`
	Body    any         `json:"body,omitempty"`
	Headers http.Header `json:"headers,omitempty"`
}

// UploadRequest sends Data as the single multipart field FieldName.
// An empty MimeType is sniffed from the content.
type UploadRequest struct {
	Method    string      `json:"method" validate:"required,oneof=POST PUT PATCH"`
	Path      string      `json:"path" validate:"required"`
	FieldName string      `json:"fieldName" validate:"required"`
	FileName  string      `json:"fileName" validate:"required"`
	MimeType  string      `json:"mimeType"`
	Data      []byte      `json:"-" validate:"required"`
	Headers   http.Header `json:"headers,omitempty"`
}
