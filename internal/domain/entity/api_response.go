package entity

// ErrorResponse is the JSON envelope of every failed request
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"` // development mode only
}

// CreateFailureResponse is returned when SignIt rejects a new signature request
type CreateFailureResponse struct {
	Success bool `json:"success"`
	Error   any  `json:"error"`
}

// MessageResponse is a bare acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

func NewErrorResponse(message string, details any) *ErrorResponse {
	return &ErrorResponse{
		Status:  "error",
		Message: message,
		Details: details,
	}
}

func NewMessageResponse(message string) *MessageResponse {
	return &MessageResponse{Message: message}
}
