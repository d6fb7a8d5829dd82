package protocol

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"net/netip"
)

// Reads back-to-back records from a byte stream
type Decoder struct {
	reader *bufio.Reader
	read   uint64 // bytes consumed so far
}

func NewDecoder(r io.Reader) (decoder *Decoder) {
	decoder = &Decoder{reader: bufio.NewReader(r)}
	return
}

// Total bytes consumed from the underlying reader
func (decoder *Decoder) Offset() (offset uint64) {
	offset = decoder.read
	return
}

// Reads the next record.
// Returns io.EOF only on a clean record boundary; a record cut short yields io.ErrUnexpectedEOF.
func (decoder *Decoder) Decode() (event Event, err error) {
	start := decoder.read
	defer func() {
		if err == io.EOF && decoder.read > start {
			err = io.ErrUnexpectedEOF
		}
		if err != nil {
			event = nil
		}
	}()

	tag, err := decoder.varint(math.MaxUint32)
	if err != nil {
		return
	}

	switch uint32(tag) {
	case variantUserTx:
		event, err = decoder.userTx()
	case variantFee:
		event, err = decoder.fee()
	default:
		err = fmt.Errorf("%w %d for event", ErrUnknownVariant, tag)
	}
	return
}

// Decodes exactly one record from the front of data, reporting how many bytes it used
func Decode(data []byte) (event Event, n int, err error) {
	decoder := NewDecoder(bytes.NewReader(data))
	event, err = decoder.Decode()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return
	}
	n = int(decoder.read)
	return
}

func (decoder *Decoder) userTx() (event UserTx, err error) {
	ipTag, err := decoder.varint(math.MaxUint32)
	if err != nil {
		return
	}

	switch uint32(ipTag) {
	case ipVariantV4:
		var octets [4]byte
		if err = decoder.full(octets[:]); err != nil {
			return
		}
		event.IP = netip.AddrFrom4(octets)
	case ipVariantV6:
		var octets [16]byte
		if err = decoder.full(octets[:]); err != nil {
			return
		}
		event.IP = netip.AddrFrom16(octets)
	default:
		err = fmt.Errorf("%w %d for ip address", ErrUnknownVariant, ipTag)
		return
	}

	err = decoder.full(event.Signature[:])
	return
}

func (decoder *Decoder) fee() (event Fee, err error) {
	if err = decoder.full(event.Signature[:]); err != nil {
		return
	}
	if event.CULimit, err = decoder.varint(math.MaxUint64); err != nil {
		return
	}
	if event.CUUsed, err = decoder.varint(math.MaxUint64); err != nil {
		return
	}
	event.Fee, err = decoder.varint(math.MaxUint64)
	return
}

// Reads one varint, rejecting widths larger than limit allows
func (decoder *Decoder) varint(limit uint64) (value uint64, err error) {
	marker, err := decoder.reader.ReadByte()
	if err != nil {
		return
	}
	decoder.read++

	var buf [8]byte
	switch {
	case marker <= singleByteMax:
		value = uint64(marker)
	case marker == markerU16:
		if err = decoder.full(buf[:2]); err != nil {
			return
		}
		value = uint64(binary.LittleEndian.Uint16(buf[:2]))
	case marker == markerU32:
		if err = decoder.full(buf[:4]); err != nil {
			return
		}
		value = uint64(binary.LittleEndian.Uint32(buf[:4]))
	case marker == markerU64 && limit > math.MaxUint32:
		if err = decoder.full(buf[:8]); err != nil {
			return
		}
		value = binary.LittleEndian.Uint64(buf[:8])
	default:
		// markerU128 never fits any field in this protocol
		err = fmt.Errorf("%w 0x%02x", ErrInvalidVarint, marker)
		return
	}

	if value > limit {
		err = fmt.Errorf("%w: value %d exceeds field width", ErrInvalidVarint, value)
	}
	return
}

func (decoder *Decoder) full(dst []byte) (err error) {
	n, err := io.ReadFull(decoder.reader, dst)
	decoder.read += uint64(n)
	return
}
