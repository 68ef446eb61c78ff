package rpcpeer

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec registers under grpc's default codec name ("proto") so
// every client/server in this package gets it without callers having
// to opt in via CallContentSubtype. grpc's encoding.Codec interface
// only requires Marshal/Unmarshal/Name — it does not require the
// payload to implement proto.Message, so plain JSON-tagged structs
// work unmodified. See DESIGN.md's rpcpeer entry for why this
// replaces protoc-generated protobuf here.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
func (jsonCodec) Name() string { return "proto" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
