// Package httpdto holds the request and response shapes of the keepsake
// HTTP API.
package httpdto

// Response is the envelope every keepsake endpoint replies with. Success
// responses carry Data; failures carry a human-readable Error plus a
// stable Code the client can branch on.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{
		Success: true,
		Data:    data,
	}
}

func NewErrorResponse(err string, code string) Response[any] {
	return Response[any]{
		Success: false,
		Error:   err,
		Code:    code,
	}
}
