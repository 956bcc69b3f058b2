package grpcx

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// JSONCodecName is the content-subtype under which JSONCodec is registered
// (wire content-type application/grpc+json).
const JSONCodecName = "json"

// JSONCodec carries plain Go structs over gRPC without generated protobuf types.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSONCodec) Name() string {
	return JSONCodecName
}

func init() {
	encoding.RegisterCodec(JSONCodec{})
}

// CallJSON selects the JSON codec for a call.
func CallJSON() grpc.CallOption {
	return grpc.CallContentSubtype(JSONCodecName)
}
