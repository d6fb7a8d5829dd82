package protocol

import (
	"encoding/binary"
	"fmt"
)

// Serializes a single event into its wire form.
// Records are written back to back with no framing; every field is self-delimiting.
func Encode(event Event) (record []byte, err error) {
	record, err = AppendEncoded(make([]byte, 0, MaxRecordLen), event)
	return
}

// Appends the wire form of event to dst.
// dst is returned unchanged on error.
func AppendEncoded(dst []byte, event Event) (out []byte, err error) {
	out = dst

	event, err = Normalize(event)
	if err != nil {
		return
	}

	switch ev := event.(type) {
	case UserTx:
		if !ev.IP.IsValid() {
			err = ErrInvalidIP
			return
		}
		out = appendVarint(out, uint64(variantUserTx))
		if ev.IP.Is4() {
			octets := ev.IP.As4()
			out = appendVarint(out, uint64(ipVariantV4))
			out = append(out, octets[:]...)
		} else {
			// IPv4-mapped IPv6 stays IPv6, matching what the peer sent
			octets := ev.IP.As16()
			out = appendVarint(out, uint64(ipVariantV6))
			out = append(out, octets[:]...)
		}
		out = append(out, ev.Signature[:]...)
	case Fee:
		out = appendVarint(out, uint64(variantFee))
		out = append(out, ev.Signature[:]...)
		out = appendVarint(out, ev.CULimit)
		out = appendVarint(out, ev.CUUsed)
		out = appendVarint(out, ev.Fee)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownEvent, event)
		out = dst
		return
	}
	return
}

// Returns the value form of event. Pointers to UserTx and Fee are followed; nil and foreign types are rejected.
func Normalize(event Event) (value Event, err error) {
	switch ev := event.(type) {
	case UserTx, Fee:
		value = ev
	case *UserTx:
		if ev != nil {
			value = *ev
			return
		}
		err = fmt.Errorf("%w: nil %T", ErrUnknownEvent, event)
	case *Fee:
		if ev != nil {
			value = *ev
			return
		}
		err = fmt.Errorf("%w: nil %T", ErrUnknownEvent, event)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownEvent, event)
	}
	return
}

// Little-endian variable length integer: one byte below 251, otherwise a width marker followed by the value
func appendVarint(dst []byte, value uint64) (out []byte) {
	switch {
	case value <= uint64(singleByteMax):
		out = append(dst, byte(value))
	case value <= 0xFFFF:
		out = append(dst, markerU16)
		out = binary.LittleEndian.AppendUint16(out, uint16(value))
	case value <= 0xFFFFFFFF:
		out = append(dst, markerU32)
		out = binary.LittleEndian.AppendUint32(out, uint32(value))
	default:
		out = append(dst, markerU64)
		out = binary.LittleEndian.AppendUint64(out, value)
	}
	return
}
