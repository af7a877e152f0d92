package jsonrpc

// Error codes defined by the JSON-RPC 2.0 specification.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInternalError  = -32603
)

// Canned messages for the protocol error classes. Declared application
// failures carry their own message instead.
const (
	msgParseError     = "Parse error."
	msgInvalidRequest = "Invalid Request."
	msgMethodNotFound = "Method not found."
	msgInternalError  = "Internal error."
)

// Error is a declared application failure: an error carrying an explicit
// JSON-RPC code and message. Operations return *Error (directly or wrapped)
// to control the code and message of the error response. Any other error is
// classified as an internal error and reported with a generic message only.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates a declared application failure.
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func errorResponse(code int, message string, id interface{}) *Response {
	return &Response{ID: id, Err: &Error{Code: code, Message: message}}
}
