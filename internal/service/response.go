package service

// Response is the envelope every engine operation resolves to. Data carries
// the operation-specific payload when Success is true.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    ErrCode     `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrCode classifies failures so callers can branch without parsing messages.
type ErrCode string

const (
	// CodeNotFound means the addressed entity does not exist. It is distinct
	// from CodeInternal so a mistyped bill number is never mistaken for a
	// failing repair.
	CodeNotFound ErrCode = "NOT_FOUND"
	// CodeConflict means another repair pass holds the scope.
	CodeConflict ErrCode = "CONFLICT"
	// CodeInternal is any other failure.
	CodeInternal ErrCode = "INTERNAL"
)

func ResponseSuccess(message string, data interface{}) *Response {
	return &Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ResponseError(code ErrCode, err error) *Response {
	return &Response{
		Success: false,
		Error:   err.Error(),
		Code:    code,
	}
}
