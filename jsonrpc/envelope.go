package jsonrpc

import (
	"reflect"
	"strings"
)

// Version is the protocol version tag carried by every envelope.
const Version = "2.0"

// Request is one decoded call. It is constructed once per payload, handed to
// the resolved operation as its trailing parameter, and discarded after
// dispatch. Object holds the full decoded envelope so operations can read
// extension fields without the dispatcher knowing about them in advance.
type Request struct {
	Version string
	Method  string
	Params  []interface{}
	ID      interface{}
	Object  map[string]interface{}
}

// Response is the outcome of one dispatch. Exactly one of Result and Err is
// encoded into the envelope; Err wins when both are set.
type Response struct {
	ID     interface{}
	Result interface{}
	Err    *Error
}

// Responder marks a value as an already-built response. Operations may return
// a Responder (typically a type embedding Response) to control the envelope
// themselves; the dispatcher passes it through instead of wrapping it as a
// plain result.
type Responder interface {
	Response() *Response
}

// Response implements Responder.
func (r *Response) Response() *Response { return r }

// FieldOmitter lets a richer Responder type name envelope fields the encoder
// must skip. Names are matched against the encoded field name (the json tag
// when present, otherwise the lowercased Go name).
type FieldOmitter interface {
	OmitFields() []string
}

// Envelope builds the wire-shape map for a response value: the version tag,
// the identifier, exactly one of result/error, and any extra exported fields
// a richer Responder type declares, minus its omitted fields. Result values
// that are themselves Responders are resolved the same way, so nested
// responses encode consistently.
func Envelope(v Responder) map[string]interface{} {
	base := v.Response()
	env := map[string]interface{}{"jsonrpc": Version, "id": base.ID}
	if base.Err != nil {
		errObj := map[string]interface{}{
			"code":    base.Err.Code,
			"message": base.Err.Message,
		}
		if base.Err.Data != nil {
			errObj["data"] = base.Err.Data
		}
		env["error"] = errObj
	} else if nested, ok := base.Result.(Responder); ok && nested.Response() != nil {
		env["result"] = Envelope(nested)
	} else {
		env["result"] = base.Result
	}

	extendEnvelope(env, v)
	return env
}

// EncodeResponse encodes a response value through the codec.
func EncodeResponse(codec Codec, v Responder) ([]byte, error) {
	return codec.Encode(Envelope(v))
}

// ParseResponse decodes an encoded envelope back into a Response. Extra
// envelope fields are dropped; the identifier and the result or error
// survive. Useful to consumers acting as clients of the protocol.
func ParseResponse(codec Codec, data []byte) (*Response, error) {
	var env struct {
		JSONRPC string      `json:"jsonrpc"`
		ID      interface{} `json:"id"`
		Result  interface{} `json:"result"`
		Error   *Error      `json:"error"`
	}
	if err := codec.Decode(data, &env); err != nil {
		return nil, err
	}
	return &Response{ID: env.ID, Result: env.Result, Err: env.Error}, nil
}

// extendEnvelope copies the extra exported fields of a richer Responder type
// into the envelope, skipping embedded fields and any names the type omits.
func extendEnvelope(env map[string]interface{}, v Responder) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return
	}
	rt := rv.Type()
	if rt == reflect.TypeOf(Response{}) {
		return
	}

	omitted := map[string]bool{}
	if o, ok := v.(FieldOmitter); ok {
		for _, name := range o.OmitFields() {
			omitted[name] = true
		}
	}

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name := envelopeFieldName(field)
		if name == "" || omitted[name] {
			continue
		}
		env[name] = rv.Field(i).Interface()
	}
}

func envelopeFieldName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		name := strings.Split(tag, ",")[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return strings.ToLower(f.Name)
}
