package service

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidConfig      = errors.New("invalid client config")
	ErrUnacceptableStatus = errors.New("response status code was unacceptable")
)
