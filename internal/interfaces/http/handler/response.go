package handler

import "github.com/sewline/backend/internal/interfaces/http/dto"

// The types below exist for the OpenAPI annotations on the handlers;
// swag needs concrete generic instantiations to render the response
// schemas. Runtime responses are built from the dto package directly.

// APIResponse is the standard envelope with a typed data field.
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the envelope for failed requests.
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// SuccessResponse is the envelope for operations with no payload.
// @Description Simple success response without data
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}
