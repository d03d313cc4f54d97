package framework

import "net/http"

// APIResult is either a success payload or a failure carrying a public
// message and a private cause. The cause is logged, never serialized.
type APIResult struct {
	statusCode int
	payload    interface{}
	message    string
	cause      error
}

type ErrorBody struct {
	Error string `json:"error"`
}

type MessageBody struct {
	Message string `json:"message"`
}

func OK(payload interface{}) APIResult {
	return APIResult{statusCode: http.StatusOK, payload: payload}
}

func Fail(message string, cause error) APIResult {
	return FailWithStatus(http.StatusInternalServerError, message, cause)
}

func FailWithStatus(statusCode int, message string, cause error) APIResult {
	return APIResult{statusCode: statusCode, message: message, cause: cause}
}

func (r APIResult) IsOK() bool {
	return r.statusCode > 0 && r.statusCode < http.StatusBadRequest
}

func (r APIResult) StatusCode() int {
	if r.statusCode == 0 {
		return http.StatusInternalServerError
	}
	return r.statusCode
}

func (r APIResult) Body() interface{} {
	if r.IsOK() {
		return r.payload
	}
	message := r.message
	if message == "" {
		message = http.StatusText(r.StatusCode())
	}
	return ErrorBody{Error: message}
}

func (r APIResult) Cause() error {
	return r.cause
}
