package frame

import (
	"fmt"
)

// EncodeRequest assembles a full request frame: header followed by body,
// applying compression if requested (§4.4). STARTUP is never compressed
// regardless of the negotiated algorithm, even if the caller asks for it.
func EncodeRequest(req Request, streamID StreamID, compressor Compressor, tracing bool) ([]byte, error) {
	var body Buffer
	req.WriteTo(&body)
	if err := body.Error(); err != nil {
		return nil, fmt.Errorf("%w: encoding %s body: %v", ErrProtocol, req.OpCode(), err)
	}
	bodyBytes := body.Bytes()

	var flags Flags
	if tracing {
		flags |= FlagTracing
	}

	compress := compressor != nil && req.OpCode() != OpStartup
	if compress {
		encoded, err := compressor.Encode(bodyBytes)
		if err != nil {
			return nil, err
		}
		bodyBytes = encoded
		flags |= FlagCompression
	}

	h := Header{
		Version:  CQLv4,
		Flags:    flags,
		StreamID: streamID,
		OpCode:   req.OpCode(),
		Length:   uint32(len(bodyBytes)),
	}

	var out Buffer
	h.WriteTo(&out)
	out.Write(bodyBytes)
	return out.Bytes(), nil
}

// DecodedBody is the result of stripping a response frame's optional
// tracing id and warning list, leaving the opcode-specific remainder.
type DecodedBody struct {
	Tracing  *UUID
	Warnings StringList
	Payload  []byte
}

// DecodeResponseBody validates the header and unwraps compression,
// tracing, and warning flags from an already-read body, per §4.4
// "Decode (response)".
func DecodeResponseBody(h Header, body []byte, compressor Compressor) (DecodedBody, error) {
	if h.Version != CQLv4Response {
		return DecodedBody{}, fmt.Errorf("%w: unexpected protocol version 0x%02x", ErrProtocol, h.Version)
	}

	if h.Flags.Has(FlagCompression) {
		if compressor == nil {
			return DecodedBody{}, fmt.Errorf("%w: response has compression flag set but no compressor is negotiated", ErrProtocol)
		}
		decoded, err := compressor.Decode(body)
		if err != nil {
			return DecodedBody{}, err
		}
		body = decoded
	}

	var buf Buffer
	buf.Write(body)

	var d DecodedBody
	if h.Flags.Has(FlagTracing) {
		p := buf.ReadN(16)
		if buf.Error() != nil {
			return DecodedBody{}, fmt.Errorf("%w: reading tracing id: %v", ErrProtocol, buf.Error())
		}
		u, err := UUIDFromBytes(p)
		if err != nil {
			return DecodedBody{}, fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		d.Tracing = &u
	}

	if h.Flags.Has(FlagWarning) {
		d.Warnings = buf.ReadStringList()
		if buf.Error() != nil {
			return DecodedBody{}, fmt.Errorf("%w: reading warnings: %v", ErrProtocol, buf.Error())
		}
	}

	d.Payload = buf.Bytes()
	return d, nil
}

// ErrProtocol covers request bodies that fail to encode, unexpected
// protocol versions, bad compression/tracing/warning sections, unknown
// response opcodes and implausible frame lengths (§7).
var ErrProtocol = fmt.Errorf("frame: protocol error")
