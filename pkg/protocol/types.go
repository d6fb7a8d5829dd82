package protocol

import (
	"net/netip"
	"time"
)

// Ed25519 transaction signature as carried on the wire (raw, no length prefix)
type Signature [SignatureLen]byte

// Observed fact forwarded to the collector.
// Implemented only by UserTx and Fee; values are immutable once constructed.
type Event interface {
	variant() uint32
}

// A user transaction was received from the remote peer
type UserTx struct {
	IP        netip.Addr
	Signature Signature
}

// A transaction was executed and paid a fee
type Fee struct {
	Signature Signature
	CULimit   uint64
	CUUsed    uint64
	Fee       uint64
}

func (UserTx) variant() uint32 { return variantUserTx }
func (Fee) variant() uint32    { return variantFee }

// JSON text form of an event (ingest files, receiver stdout)
type JEvent struct {
	Type      string `json:"type"`
	IP        string `json:"ip,omitempty"`
	Signature string `json:"signature"`
	CULimit   uint64 `json:"cuLimit,omitempty"`
	CUUsed    uint64 `json:"cuUsed,omitempty"`
	Fee       uint64 `json:"fee,omitempty"`
}

// Event as seen by a collector, with where and when it arrived
type Received struct {
	Event    Event
	Remote   string // peer address of the forwarding connection
	Received time.Time
}

type JReceived struct {
	JEvent
	Remote   string    `json:"remote,omitempty"`
	Received time.Time `json:"received"`
}
