package jsonrpc

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Logger receives failures the dispatcher classified as internal errors.
// Reporting is best-effort: the dispatcher tolerates a panicking logger, and
// logging never changes the response.
type Logger interface {
	LogError(method string, err error)
}

// Protector is implemented by handlers that designate a companion object
// whose exported method names must never be dispatchable, without
// enumerating them. The companion's identity may vary per call, so its name
// set is consulted per request.
type Protector interface {
	ProtectedHandler() interface{}
}

// Dispatcher validates, resolves, invokes and classifies single JSON-RPC 2.0
// requests against a caller-supplied handler. The zero value dispatches JSON
// with no failure logging. A Dispatcher holds no per-call state and is safe
// for concurrent use as long as the handlers it is given are.
type Dispatcher struct {
	// Codec decodes requests and encodes responses. Nil means JSONCodec.
	Codec Codec
	// Logger, when set, receives failures classified as internal errors.
	Logger Logger
}

func (d *Dispatcher) codec() Codec {
	if d.Codec != nil {
		return d.Codec
	}
	return JSONCodec{}
}

// HandleRequest runs the full pipeline over one raw payload: decode,
// validate, resolve, invoke, classify, encode. It always returns a
// well-formed encoded response; no failure escapes the dispatch boundary.
func (d *Dispatcher) HandleRequest(data []byte, handler interface{}) []byte {
	resp := d.Dispatch(data, handler)
	out, err := EncodeResponse(d.codec(), resp)
	if err != nil {
		// The result value could not be encoded. Downgrade to an internal
		// error so the caller still gets a response.
		d.report("", err)
		fallback := errorResponse(CodeInternalError, msgInternalError, responseID(resp))
		out, _ = EncodeResponse(d.codec(), fallback)
	}
	return out
}

// Dispatch is HandleRequest without the final encode, for embedders that
// want the structured response.
func (d *Dispatcher) Dispatch(data []byte, handler interface{}) Responder {
	var decoded interface{}
	if err := d.codec().Decode(data, &decoded); err != nil {
		return errorResponse(CodeParseError, msgParseError, nil)
	}

	// The decoded value must behave as a non-empty object. This also
	// catches a null payload.
	obj, ok := decoded.(map[string]interface{})
	if !ok || len(obj) == 0 {
		return errorResponse(CodeInvalidRequest, msgInvalidRequest, nil)
	}

	if version, _ := obj["jsonrpc"].(string); version != Version {
		return errorResponse(CodeInvalidRequest, msgInvalidRequest, nil)
	}

	// Missing method or id is not a validation failure here: the id stays
	// null and carries into every subsequent response, and an absent method
	// simply never resolves.
	req := &Request{Version: Version, ID: obj["id"], Object: obj}
	req.Method, _ = obj["method"].(string)
	req.Params, _ = obj["params"].([]interface{})

	op := resolve(req.Method, handler)
	if op == nil {
		return errorResponse(CodeMethodNotFound, msgMethodNotFound, req.ID)
	}

	return d.invoke(op, handler, req)
}

// operation holds the reflection data for one dispatchable method.
type operation struct {
	method reflect.Method
	params []reflect.Type
}

var (
	requestType = reflect.TypeOf((*Request)(nil))
	errorType   = reflect.TypeOf((*error)(nil)).Elem()

	opTables sync.Map // reflect.Type -> map[string]*operation
)

// reservedNames are the Dispatcher's own exported method names. They are
// never dispatchable, even when a handler defines an operation with the same
// name.
var reservedNames = func() map[string]bool {
	names := make(map[string]bool)
	t := reflect.TypeOf(&Dispatcher{})
	for i := 0; i < t.NumMethod(); i++ {
		names[t.Method(i).Name] = true
	}
	return names
}()

// resolve looks the operation name up among the handler's dispatchable
// methods, then rejects it if the name is in the guard set. Guard precedence
// is unconditional: a guarded name is never invocable even when the handler
// defines it.
func resolve(name string, handler interface{}) *operation {
	if handler == nil {
		return nil
	}
	op := operations(reflect.TypeOf(handler))[name]
	if op == nil || guarded(name, handler) {
		return nil
	}
	return op
}

// operations scans a handler type for dispatchable methods. A method is
// dispatchable when it is exported, takes *Request as its final parameter,
// and returns (result, error). The scan is cached per type; guard membership
// is still evaluated per call.
func operations(t reflect.Type) map[string]*operation {
	if cached, ok := opTables.Load(t); ok {
		return cached.(map[string]*operation)
	}

	table := make(map[string]*operation)
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() {
			continue
		}
		if op := parseOperation(m); op != nil {
			table[m.Name] = op
		}
	}

	cached, _ := opTables.LoadOrStore(t, table)
	return cached.(map[string]*operation)
}

// parseOperation extracts signature information via reflection.
// Valid signature: func(params..., req *Request) (result, error)
// Returns nil for anything else.
func parseOperation(m reflect.Method) *operation {
	ft := m.Func.Type()

	if ft.IsVariadic() {
		return nil
	}
	if ft.NumIn() < 2 || ft.In(ft.NumIn()-1) != requestType {
		return nil
	}
	if ft.NumOut() != 2 || ft.Out(1) != errorType {
		return nil
	}

	params := make([]reflect.Type, 0, ft.NumIn()-2)
	for i := 1; i < ft.NumIn()-1; i++ {
		params = append(params, ft.In(i))
	}
	return &operation{method: m, params: params}
}

// guarded reports whether name is in the guard set: the dispatcher's
// reserved names plus every exported method name of the handler's protected
// companion, if it designates one.
func guarded(name string, handler interface{}) bool {
	if reservedNames[name] {
		return true
	}
	p, ok := handler.(Protector)
	if !ok {
		return false
	}
	companion := p.ProtectedHandler()
	if companion == nil {
		return false
	}
	_, found := reflect.TypeOf(companion).MethodByName(name)
	return found
}

// invoke binds the request's positional arguments to the operation's
// declared parameters, calls it, and classifies the outcome. Argument count
// or binding mismatches are invalid requests; declared application failures
// keep their own code and message; anything else, including a panic, is an
// internal error.
func (d *Dispatcher) invoke(op *operation, handler interface{}, req *Request) (resp Responder) {
	defer func() {
		if r := recover(); r != nil {
			d.report(req.Method, fmt.Errorf("panic: %v", r))
			resp = errorResponse(CodeInternalError, msgInternalError, req.ID)
		}
	}()

	if len(req.Params) != len(op.params) {
		return errorResponse(CodeInvalidRequest, msgInvalidRequest, req.ID)
	}

	args := make([]reflect.Value, 0, len(op.params)+2)
	args = append(args, reflect.ValueOf(handler))
	for i, paramType := range op.params {
		arg := reflect.New(paramType)
		if err := d.bind(req.Params[i], arg.Interface()); err != nil {
			return errorResponse(CodeInvalidRequest, msgInvalidRequest, req.ID)
		}
		args = append(args, arg.Elem())
	}
	args = append(args, reflect.ValueOf(req))

	results := op.method.Func.Call(args)

	if !results[1].IsNil() {
		err := results[1].Interface().(error)
		var declared *Error
		if errors.As(err, &declared) {
			return &Response{ID: req.ID, Err: declared}
		}
		d.report(req.Method, err)
		return errorResponse(CodeInternalError, msgInternalError, req.ID)
	}

	// A result that is already a response passes through. An unset id is
	// backfilled with the request's so the caller can still correlate.
	if prebuilt, ok := results[0].Interface().(Responder); ok {
		if base := prebuilt.Response(); base != nil {
			if base.ID == nil {
				base.ID = req.ID
			}
			return prebuilt
		}
	}
	return &Response{ID: req.ID, Result: results[0].Interface()}
}

// bind converts one decoded argument into the declared parameter type by
// round-tripping it through the codec, reusing the codec's conversion rules
// instead of hand-rolled reflection over kinds.
func (d *Dispatcher) bind(value interface{}, target interface{}) error {
	data, err := d.codec().Encode(value)
	if err != nil {
		return err
	}
	return d.codec().Decode(data, target)
}

// report forwards an internal failure to the optional logger. Best-effort: a
// panicking logger must not affect the response.
func (d *Dispatcher) report(method string, err error) {
	if d.Logger == nil {
		return
	}
	defer func() { _ = recover() }()
	d.Logger.LogError(method, err)
}

func responseID(v Responder) interface{} {
	if base := v.Response(); base != nil {
		return base.ID
	}
	return nil
}
