package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ResponseMapper converts remote API responses to MCP tool responses.
type ResponseMapper interface {
	// MapToToolResponse converts a decoded API response to MCP format.
	MapToToolResponse(apiResponse interface{}) (*ToolResponse, error)

	// MapError converts a failed remote call into a JSON-RPC error whose
	// message carries the tool operation name.
	MapError(op string, err error) *Error
}

// DefaultResponseMapper is the default implementation of ResponseMapper.
type DefaultResponseMapper struct{}

// NewResponseMapper creates a new instance of DefaultResponseMapper.
func NewResponseMapper() ResponseMapper {
	return &DefaultResponseMapper{}
}

// MapToToolResponse converts an API response to MCP format.
// The apiResponse parameter should be the projected summary map built by a
// tool handler, including the raw passthrough field.
func (m *DefaultResponseMapper) MapToToolResponse(apiResponse interface{}) (*ToolResponse, error) {
	if apiResponse == nil {
		return &ToolResponse{
			Content: []ContentBlock{
				{
					Type: "text",
					Text: "{}",
				},
			},
		}, nil
	}

	jsonBytes, err := json.MarshalIndent(apiResponse, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal API response: %w", err)
	}

	return &ToolResponse{
		Content: []ContentBlock{
			{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}

// MapError converts a failed remote call into a JSON-RPC error.
// The message always contains the tool operation name; status codes from
// TransportError select the JSON-RPC error code.
func (m *DefaultResponseMapper) MapError(op string, err error) *Error {
	if err == nil {
		return nil
	}

	// Already-mapped errors (invalid params, unknown tool) pass through.
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		mapped := mapTransportError(transportErr)
		mapped.Message = fmt.Sprintf("%s failed: %s", op, mapped.Message)
		return mapped
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &Error{
			Code:    NetworkError,
			Message: fmt.Sprintf("%s failed: %s", op, err.Error()),
		}
	}

	return &Error{
		Code:    InternalError,
		Message: fmt.Sprintf("%s failed: %s", op, err.Error()),
	}
}

// mapTransportError maps HTTP status codes to JSON-RPC error codes.
func mapTransportError(transportErr *TransportError) *Error {
	var code int
	var message string

	switch transportErr.StatusCode {
	case http.StatusUnauthorized:
		code = AuthenticationError
		message = "authentication failed"
	case http.StatusForbidden:
		code = AuthenticationError
		message = "access forbidden - insufficient permissions"
	case http.StatusNotFound:
		code = APIError
		message = "resource not found"
	case http.StatusBadRequest:
		code = InvalidParams
		message = "bad request - invalid parameters"
	case http.StatusConflict:
		code = APIError
		message = "conflict - resource already exists or version mismatch"
	case http.StatusTooManyRequests:
		code = RateLimitError
		message = "rate limit exceeded"
	case http.StatusServiceUnavailable:
		code = NetworkError
		message = "service unavailable"
	case http.StatusGatewayTimeout:
		code = NetworkError
		message = "gateway timeout"
	default:
		code = APIError
		if transportErr.StatusCode >= 500 {
			message = fmt.Sprintf("server error (status %d)", transportErr.StatusCode)
		} else {
			message = fmt.Sprintf("client error (status %d)", transportErr.StatusCode)
		}
	}

	errorData := map[string]interface{}{
		"statusCode": transportErr.StatusCode,
	}
	if transportErr.Body != "" {
		errorData["body"] = transportErr.Body
	}

	return &Error{
		Code:    code,
		Message: message,
		Data:    errorData,
	}
}
