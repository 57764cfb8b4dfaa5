package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorCode is the machine-readable code of the error envelope.
type ErrorCode string

const (
	CodeMissingToken            ErrorCode = "MISSING_TOKEN"
	CodeInvalidToken            ErrorCode = "INVALID_TOKEN"
	CodeInsufficientPermissions ErrorCode = "INSUFFICIENT_PERMISSIONS"
	CodeInternalError           ErrorCode = "INTERNAL_ERROR"
	CodeInvalidCredentials      ErrorCode = "INVALID_CREDENTIALS"
	CodeValidationError         ErrorCode = "VALIDATION_ERROR"
	CodeBadRequest              ErrorCode = "BAD_REQUEST"
	CodeNotFound                ErrorCode = "NOT_FOUND"
	CodeConflict                ErrorCode = "CONFLICT"
	CodeRateLimited             ErrorCode = "RATE_LIMITED"
	CodeBadGateway              ErrorCode = "BAD_GATEWAY"
)

var errorStatus = map[ErrorCode]int{
	CodeMissingToken:            http.StatusUnauthorized,
	CodeInvalidToken:            http.StatusUnauthorized,
	CodeInsufficientPermissions: http.StatusForbidden,
	CodeInternalError:           http.StatusInternalServerError,
	CodeInvalidCredentials:      http.StatusUnauthorized,
	CodeValidationError:         http.StatusBadRequest,
	CodeBadRequest:              http.StatusBadRequest,
	CodeNotFound:                http.StatusNotFound,
	CodeConflict:                http.StatusConflict,
	CodeRateLimited:             http.StatusTooManyRequests,
	CodeBadGateway:              http.StatusBadGateway,
}

var errorMessages = map[ErrorCode]string{
	CodeMissingToken:            "Authentication token is missing",
	CodeInvalidToken:            "Authentication token is invalid",
	CodeInsufficientPermissions: "You do not have the permissions required for this action",
	CodeInternalError:           "An internal error occurred",
	CodeInvalidCredentials:      "Invalid email or password",
	CodeValidationError:         "Validation failed",
	CodeBadRequest:              "Bad request",
	CodeNotFound:                "Resource not found",
	CodeConflict:                "Resource conflict",
	CodeRateLimited:             "Too many requests",
	CodeBadGateway:              "An upstream service failed",
}

// Status returns the HTTP status for the code. Unknown codes map to 500.
func (c ErrorCode) Status() int {
	if status, ok := errorStatus[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Message returns the human-readable message for the code.
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return errorMessages[CodeInternalError]
}

// ErrorResponse is the uniform error envelope
type ErrorResponse struct {
	Error              string                 `json:"error"`
	Code               ErrorCode              `json:"code"`
	Message            string                 `json:"message,omitempty"`
	RequiredPermission string                 `json:"requiredPermission,omitempty"`
	Details            map[string]interface{} `json:"details,omitempty"`
}

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response with optional data
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: data})
}

// WriteCreated writes a 201 Created response with optional data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Success: true, Data: data})
}

// WriteMessage writes a 200 OK response carrying only a message
func WriteMessage(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: message})
}

// WriteNoContent writes a 204 No Content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError writes the error envelope for code. message is the optional detail.
func WriteError(w http.ResponseWriter, code ErrorCode, message string, details map[string]interface{}) error {
	return WriteJSON(w, code.Status(), ErrorResponse{
		Error:   code.Message(),
		Code:    code,
		Message: message,
		Details: details,
	})
}

// WriteMissingToken writes a 401 MISSING_TOKEN response
func WriteMissingToken(w http.ResponseWriter) error {
	return WriteError(w, CodeMissingToken, "", nil)
}

// WriteInvalidToken writes a 401 INVALID_TOKEN response
func WriteInvalidToken(w http.ResponseWriter) error {
	return WriteError(w, CodeInvalidToken, "", nil)
}

// WriteInsufficientPermissions writes a 403 response naming the required permission
func WriteInsufficientPermissions(w http.ResponseWriter, message, requiredPermission string) error {
	return WriteJSON(w, http.StatusForbidden, ErrorResponse{
		Error:              CodeInsufficientPermissions.Message(),
		Code:               CodeInsufficientPermissions,
		Message:            message,
		RequiredPermission: requiredPermission,
	})
}

// WriteUnauthorized writes a 401 INVALID_CREDENTIALS response
func WriteUnauthorized(w http.ResponseWriter, message string) error {
	return WriteError(w, CodeInvalidCredentials, message, nil)
}

// WriteBadRequest writes a 400 Bad Request response with error details
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]interface{}) error {
	return WriteError(w, CodeBadRequest, message, details)
}

// WriteNotFound writes a 404 Not Found response
func WriteNotFound(w http.ResponseWriter, message string) error {
	return WriteError(w, CodeNotFound, message, nil)
}

// WriteConflict writes a 409 Conflict response
func WriteConflict(w http.ResponseWriter, message string, details map[string]interface{}) error {
	return WriteError(w, CodeConflict, message, details)
}

// WriteTooManyRequests writes a 429 Too Many Requests response
func WriteTooManyRequests(w http.ResponseWriter, message string) error {
	return WriteError(w, CodeRateLimited, message, nil)
}

// WriteInternalServerError writes a 500 Internal Server Error response
func WriteInternalServerError(w http.ResponseWriter, message string) error {
	return WriteError(w, CodeInternalError, message, nil)
}
