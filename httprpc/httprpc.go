// Package httprpc binds a jsonrpc.Dispatcher to HTTP following the JSON-RPC
// over HTTP convention (https://www.simple-is-better.org/json-rpc/transport_http.html):
// POST only, application/json bodies, one response per request.
//
// Processors can be chained in front of dispatch for cross-cutting concerns:
//
//	h := httprpc.NewHandler(&jsonrpc.Dispatcher{}, &EchoService{}, loggingProcessor)
//	http.Handle("/rpc", h)
//
// Processor errors produce plain HTTP error responses, not JSON-RPC errors;
// protocol-level failures always come back as a JSON-RPC error envelope with
// HTTP status 200.
package httprpc

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/mhollis/dispatchrpc/jsonrpc"
)

// DefaultMaxBodyBytes caps request bodies when Handler.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 1 << 20

// Processor is middleware that runs before dispatch.
//
// Protocol:
//   - Processors MUST call next, unless they intend to short-circuit the
//     request.
//   - Processors MUST NOT write the response body themselves; return a
//     StatusError to short-circuit with an HTTP error.
type Processor interface {
	Process(w http.ResponseWriter, r *http.Request, next func(w http.ResponseWriter, r *http.Request) error) error
}

// ProcessorFunc adapts a function to a Processor.
type ProcessorFunc func(w http.ResponseWriter, r *http.Request, next func(w http.ResponseWriter, r *http.Request) error) error

func (f ProcessorFunc) Process(w http.ResponseWriter, r *http.Request, next func(w http.ResponseWriter, r *http.Request) error) error {
	return f(w, r, next)
}

// StatusError is a processor or transport failure that maps directly to an
// HTTP status code.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

// Error creates a StatusError.
func Error(status int, message string) error {
	return &StatusError{Status: status, Message: message}
}

// Handler serves JSON-RPC over HTTP by dispatching request bodies against
// Target. The zero MaxBodyBytes means DefaultMaxBodyBytes.
type Handler struct {
	Dispatcher   *jsonrpc.Dispatcher
	Target       interface{}
	MaxBodyBytes int64
	Processors   []Processor
}

// NewHandler constructs a Handler.
func NewHandler(d *jsonrpc.Dispatcher, target interface{}, processors ...Processor) *Handler {
	return &Handler{Dispatcher: d, Target: target, Processors: processors}
}

// ServeHTTP implements http.Handler. It runs the processor chain and then
// dispatches the body. Transport violations (wrong method, wrong
// content type, oversized body) are HTTP errors; everything past the
// transport boundary is a JSON-RPC response.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Dispatcher == nil {
		http.Error(w, "httprpc: nil Dispatcher", http.StatusInternalServerError)
		return
	}

	var run func(i int, w2 http.ResponseWriter, r2 *http.Request) error
	run = func(i int, w2 http.ResponseWriter, r2 *http.Request) error {
		if i < len(h.Processors) {
			if h.Processors[i] == nil {
				return errors.New("httprpc: nil processor")
			}
			return h.Processors[i].Process(w2, r2, func(w3 http.ResponseWriter, r3 *http.Request) error {
				return run(i+1, w3, r3)
			})
		}
		return h.dispatch(w2, r2)
	}

	if err := run(0, w, r); err != nil {
		status := http.StatusInternalServerError
		var se *StatusError
		if errors.As(err, &se) && se.Status >= 100 {
			status = se.Status
		}
		http.Error(w, err.Error(), status)
	}
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodPost {
		return Error(http.StatusMethodNotAllowed, "JSON-RPC requires POST method")
	}

	contentType := r.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
		return Error(http.StatusUnsupportedMediaType, "Content-Type must be application/json")
	}

	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return Error(http.StatusRequestEntityTooLarge, "request body too large")
		}
		return Error(http.StatusBadRequest, "failed to read request body")
	}

	out := h.Dispatcher.HandleRequest(body, h.Target)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(out)
	return err
}
