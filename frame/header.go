package frame

import "fmt"

// HeaderSize is the fixed size of a frame header in bytes: version(1) +
// flags(1) + stream(2) + opcode(1) + length(4).
const HeaderSize = 9

// Protocol version bytes. Requests are sent with CQLv4; responses arrive
// with the direction bit set.
const (
	CQLv4         = 0x04
	CQLv4Response = 0x84
)

// StreamID is the 16-bit correlation token echoed between request and
// response. Per the Open Question in §9, client-generated ids are
// restricted to the positive 15-bit range [0, 32767]; -1 is reserved for
// server-initiated frames (EVENT).
type StreamID int16

const ServerInitiatedStream StreamID = -1

// Flags is the frame header's flag bitset.
type Flags byte

const (
	FlagCompression Flags = 0x01
	FlagTracing     Flags = 0x02
	FlagCustomPayload Flags = 0x04
	FlagWarning     Flags = 0x08
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// OpCode identifies a frame's semantic kind.
type OpCode byte

const (
	OpError         OpCode = 0x00
	OpStartup       OpCode = 0x01
	OpReady         OpCode = 0x02
	OpAuthenticate  OpCode = 0x03
	OpOptions       OpCode = 0x05
	OpSupported     OpCode = 0x06
	OpQuery         OpCode = 0x07
	OpResult        OpCode = 0x08
	OpPrepare       OpCode = 0x09
	OpExecute       OpCode = 0x0A
	OpRegister      OpCode = 0x0B
	OpEvent         OpCode = 0x0C
	OpBatch         OpCode = 0x0D
	OpAuthChallenge OpCode = 0x0E
	OpAuthResponse  OpCode = 0x0F
	OpAuthSuccess   OpCode = 0x10
)

func (op OpCode) String() string {
	switch op {
	case OpError:
		return "ERROR"
	case OpStartup:
		return "STARTUP"
	case OpReady:
		return "READY"
	case OpAuthenticate:
		return "AUTHENTICATE"
	case OpOptions:
		return "OPTIONS"
	case OpSupported:
		return "SUPPORTED"
	case OpQuery:
		return "QUERY"
	case OpResult:
		return "RESULT"
	case OpPrepare:
		return "PREPARE"
	case OpExecute:
		return "EXECUTE"
	case OpRegister:
		return "REGISTER"
	case OpEvent:
		return "EVENT"
	case OpBatch:
		return "BATCH"
	case OpAuthChallenge:
		return "AUTH_CHALLENGE"
	case OpAuthResponse:
		return "AUTH_RESPONSE"
	case OpAuthSuccess:
		return "AUTH_SUCCESS"
	default:
		return fmt.Sprintf("OpCode(0x%02x)", byte(op))
	}
}

// Header is a frame's fixed 9-byte preamble.
type Header struct {
	Version  byte
	Flags    Flags
	StreamID StreamID
	OpCode   OpCode
	Length   uint32
}

// WriteTo serializes the header. Length is written as-is; EncodeRequest
// sets it from the finished body before calling WriteTo.
func (h Header) WriteTo(b *Buffer) {
	b.WriteByte(h.Version)
	b.WriteByte(byte(h.Flags))
	b.WriteShort(Short(h.StreamID))
	b.WriteByte(byte(h.OpCode))
	b.WriteInt(Int(h.Length))
}

// ParseHeader reads a 9-byte header. The caller must have already filled b
// with exactly HeaderSize bytes (see transport's connReader.recv).
func ParseHeader(b *Buffer) Header {
	var h Header
	h.Version = b.ReadN(1)[0]
	if b.Error() != nil {
		return h
	}
	h.Flags = Flags(b.ReadN(1)[0])
	h.StreamID = StreamID(b.ReadShort())
	h.OpCode = OpCode(b.ReadN(1)[0])
	h.Length = uint32(b.ReadInt())
	return h
}
