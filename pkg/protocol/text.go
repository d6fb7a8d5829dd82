package protocol

import (
	"encoding/json"
	"fmt"
	"net/netip"

	"github.com/mr-tron/base58"
)

// Base58 form, as shown by block explorers and RPC responses
func (sig Signature) String() (text string) {
	text = base58.Encode(sig[:])
	return
}

// Parses base58 text into a signature
func ParseSignature(text string) (sig Signature, err error) {
	raw, err := base58.Decode(text)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidSig, err)
		return
	}
	if len(raw) != SignatureLen {
		err = fmt.Errorf("%w: decoded length %d, expected %d", ErrInvalidSig, len(raw), SignatureLen)
		return
	}
	copy(sig[:], raw)
	return
}

// Converts event to its JSON text form
func ToJSON(event Event) (jEvent JEvent, err error) {
	event, err = Normalize(event)
	if err != nil {
		return
	}

	switch ev := event.(type) {
	case UserTx:
		jEvent = JEvent{
			Type:      TypeUserTx,
			IP:        ev.IP.String(),
			Signature: ev.Signature.String(),
		}
	case Fee:
		jEvent = JEvent{
			Type:      TypeFee,
			Signature: ev.Signature.String(),
			CULimit:   ev.CULimit,
			CUUsed:    ev.CUUsed,
			Fee:       ev.Fee,
		}
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownEvent, event)
	}
	return
}

// Converts JSON text form back into an event
func (jEvent JEvent) Event() (event Event, err error) {
	sig, err := ParseSignature(jEvent.Signature)
	if err != nil {
		return
	}

	switch jEvent.Type {
	case TypeUserTx:
		var ip netip.Addr
		ip, err = netip.ParseAddr(jEvent.IP)
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidIP, err)
			return
		}
		// Zones cannot be represented on the wire
		event = UserTx{IP: ip.WithZone(""), Signature: sig}
	case TypeFee:
		event = Fee{
			Signature: sig,
			CULimit:   jEvent.CULimit,
			CUUsed:    jEvent.CUUsed,
			Fee:       jEvent.Fee,
		}
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownEvent, jEvent.Type)
	}
	return
}

// Parses a single JSON document (one line of an ingest stream) into an event
func ParseJSON(line []byte) (event Event, err error) {
	var jEvent JEvent
	err = json.Unmarshal(line, &jEvent)
	if err != nil {
		err = fmt.Errorf("invalid event json: %w", err)
		return
	}
	event, err = jEvent.Event()
	return
}

// Single line human readable form
func Format(event Event) (text string) {
	if value, err := Normalize(event); err == nil {
		event = value
	}

	switch ev := event.(type) {
	case UserTx:
		text = fmt.Sprintf("usertx ip=%s sig=%s", ev.IP, ev.Signature)
	case Fee:
		text = fmt.Sprintf("fee sig=%s cu_limit=%d cu_used=%d fee=%d", ev.Signature, ev.CULimit, ev.CUUsed, ev.Fee)
	default:
		text = fmt.Sprintf("unknown(%T)", event)
	}
	return
}

// Converts a received event to its JSON text form
func (rec Received) ToJSON() (jRecord JReceived, err error) {
	jRecord.JEvent, err = ToJSON(rec.Event)
	if err != nil {
		return
	}
	jRecord.Remote = rec.Remote
	jRecord.Received = rec.Received
	return
}
