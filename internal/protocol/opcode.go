// Package protocol implements the binary store protocol: the opcode space,
// the four message shapes, and the length-prefixed framing that carries them
// over a stream.
//
// The format is positional and little-endian, not self-describing. Strings
// are encoded as a uint32 byte length followed by UTF-8 bytes. Field order is
// fixed; both sides must agree on it exactly.
package protocol

import "fmt"

// Opcode tags a frame with its message shape and intent.
//
// Values are stable and append-only: never renumber or reuse an opcode once
// assigned, deployed clients depend on them.
type Opcode uint32

const (
	OpRequestItems  Opcode = 0 // client -> server: send me the catalog (empty text)
	OpReceiveItems  Opcode = 1 // server -> client: catalog payload
	OpBuyItem       Opcode = 2 // client -> server: purchase request
	OpGetPoints     Opcode = 3 // server -> client: points payload
	OpRequestPoints Opcode = 4 // client -> server: send me my points (empty text)
	OpError         Opcode = 5 // server -> client: human-readable rejection text
)

func (o Opcode) String() string {
	switch o {
	case OpRequestItems:
		return "REQUEST_ITEMS"
	case OpReceiveItems:
		return "RECEIVE_ITEMS"
	case OpBuyItem:
		return "BUY_ITEM"
	case OpGetPoints:
		return "GET_POINTS"
	case OpRequestPoints:
		return "REQUEST_POINTS"
	case OpError:
		return "ERROR"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint32(o))
	}
}
