// Package jsonrpc implements single-request JSON-RPC 2.0 dispatch: decoding
// a raw payload, validating it against the protocol envelope, invoking the
// named operation on a caller-supplied handler, and encoding the outcome.
//
// This package implements the request/response form of the JSON-RPC 2.0
// specification (https://www.jsonrpc.org/specification). Batch requests and
// notifications are not supported.
//
// # Basic Usage
//
// Create a dispatcher and hand it raw payloads together with a handler:
//
//	d := &jsonrpc.Dispatcher{}
//	out := d.HandleRequest(body, &EchoService{})
//
// Every exported method on the handler with a dispatchable signature is an
// operation; no registration step exists. The dispatchable set is whatever
// the handler instance exposes at call time.
//
// # Operation Signatures
//
// Operations must have this signature:
//
//	func(params..., req *jsonrpc.Request) (result, error)
//
// Positional wire params bind to the declared parameters in order through
// the codec. A count or type mismatch yields an Invalid Request error
// (-32600) without invoking the operation. The trailing *Request carries the
// identifier, the version tag and the full decoded envelope, so operations
// can read extension fields the dispatcher knows nothing about:
//
//	func (s *EchoService) Echo(message string, req *jsonrpc.Request) (interface{}, error) {
//	    return message, nil
//	}
//
// # Guarded Names
//
// The Dispatcher's own method names (HandleRequest, Dispatch) are never
// dispatchable, even if the handler defines operations with those names. A
// handler can widen the guard set by implementing Protector; the designated
// companion's exported method names become undispatchable too.
//
// # Error Handling
//
// Return *Error for failures that should carry their own code and message:
//
//	return nil, jsonrpc.NewError(1, "insufficient funds")
//
// Any other error, and any panic, becomes an Internal error (-32603) with a
// generic message; the original failure goes only to the optional Logger
// collaborator. HandleRequest never fails: every exit path produces a
// well-formed response.
//
// # Codecs
//
// The wire format is pluggable. JSONCodec is the default; CBORCodec encodes
// the identical envelope in CBOR for embedders whose transport is binary.
//
// # Response Extension
//
// Operations may return an already-built response (any Responder, typically
// a struct embedding Response) to extend the envelope with extra top-level
// fields. Implement FieldOmitter to keep internal fields off the wire.
package jsonrpc
