package errors

// ErrorInfo contains detailed error information
type ErrorInfo struct {
	Code    string `json:"code"`              // Business error code, e.g., "LIVE_LOCATION_NOT_FOUND"
	Message string `json:"message"`           // User-friendly error message
	Details any    `json:"details,omitempty"` // Detailed error information (optional)
}

// ErrorResponse is the failure envelope returned by every endpoint.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"` // Itemized validation failures.
	Code    string   `json:"code,omitempty"`
}
