package models

// Response is the JSON envelope returned by every public endpoint.
// Data is set on success, Error on failure.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK wraps data in a success envelope
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Fail builds an error envelope
func Fail(message string) Response {
	return Response{Success: false, Error: message}
}
