package service

import (
	"errors"

	"github.com/apppanel/apiclient-core/models"
)

// ErrorMapper turns transport failures, decode failures and server error
// payloads into the AppError taxonomy. It holds no state.
type ErrorMapper struct{}

// FromPayload builds an API error. Validation failures from body, params and
// query are flattened into fields named by their dotted path.
func (ErrorMapper) FromPayload(payload models.ErrorPayload) *models.AppError {
	return models.APIError(
		models.GeneralError{
			Code:    payload.Code,
			Message: payload.Message,
		},
		payload.Fields(),
	)
}

func (ErrorMapper) FromTransport(err error) *models.AppError {
	return models.NetworkError(err)
}

func (ErrorMapper) FromDecode(err error) *models.AppError {
	return models.UndefinedError(err)
}

// Empty is the error for an envelope that decoded with neither data nor error.
func (ErrorMapper) Empty() *models.AppError {
	return models.UndefinedError(errors.New(models.EmptyResponseMessage))
}

// Resolve prefers a decoded error payload over a transport error.
func (m ErrorMapper) Resolve(transportErr error, payload *models.ErrorPayload) *models.AppError {
	if payload != nil {
		return m.FromPayload(*payload)
	}
	return m.FromTransport(transportErr)
}
