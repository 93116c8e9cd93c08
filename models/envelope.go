package models

import "encoding/json"

// ResponseEnvelope is the outer object of every response body. A null and an
// absent key both leave the pointer nil.
type ResponseEnvelope[T any] struct {
	Data  *T            `json:"data"`
	Error *ErrorPayload `json:"error"`
}

func (e ResponseEnvelope[T]) IsEmpty() bool {
	return e.Data == nil && e.Error == nil
}

// DecodeEnvelope decodes body as one JSON object. Anything after the object
// other than whitespace is a decode error.
func DecodeEnvelope[T any](body []byte) (ResponseEnvelope[T], error) {
	var env ResponseEnvelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return ResponseEnvelope[T]{}, err
	}
	return env, nil
}
