package serverutils

// ApiResponse is the standard success envelope.
type ApiResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// ApiError is the standard error envelope. Kind is a stable machine-readable
// code; Message is safe for end users.
type ApiError struct {
	Success bool   `json:"success"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

func SuccessResponse[T any](message string, data T) ApiResponse[T] {
	return ApiResponse[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(kind, message string) ApiError {
	return ApiError{
		Success: false,
		Kind:    kind,
		Message: message,
	}
}
