package protocol

import "errors"

const (
	SignatureLen int = 64

	// Enum variant indexes, encoded as varint u32
	variantUserTx uint32 = 0
	variantFee    uint32 = 1

	// IP address variant indexes
	ipVariantV4 uint32 = 0
	ipVariantV6 uint32 = 1

	// Varint width markers. Values below singleByteMax are stored as-is in one byte.
	singleByteMax byte = 250
	markerU16     byte = 251
	markerU32     byte = 252
	markerU64     byte = 253
	markerU128    byte = 254

	// Largest possible record: Fee = tag + signature + 3 * (marker + u64)
	MaxRecordLen int = 1 + SignatureLen + 3*9

	// JSON type names
	TypeUserTx string = "userTx"
	TypeFee    string = "fee"
)

var (
	ErrUnknownEvent   = errors.New("unknown event type")
	ErrInvalidIP      = errors.New("event ip address is not a valid IPv4 or IPv6 address")
	ErrUnknownVariant = errors.New("unknown enum variant")
	ErrInvalidVarint  = errors.New("invalid varint marker")
	ErrInvalidSig     = errors.New("invalid signature")
)
