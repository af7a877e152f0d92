package jsonrpc

import (
	"encoding/json"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Codec converts between wire bytes and in-memory values. The dispatcher and
// the envelope builder are codec-agnostic: responses are generic maps by the
// time they reach Encode, and decoded requests are inspected as generic maps
// regardless of the wire format.
type Codec interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, v interface{}) error
}

// JSONCodec is the protocol's standard textual envelope.
type JSONCodec struct{}

func (JSONCodec) Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// CBORCodec is a binary rendition of the same envelope, for embedders whose
// transport already speaks CBOR. Field names and shapes match the JSON
// envelope exactly.
type CBORCodec struct{}

// Maps must decode to map[string]interface{} so the dispatcher's shape
// checks behave identically across codecs.
var cborDecMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

func (CBORCodec) Encode(v interface{}) ([]byte, error) {
	return cbor.Marshal(v)
}

func (CBORCodec) Decode(data []byte, v interface{}) error {
	return cborDecMode.Unmarshal(data, v)
}
