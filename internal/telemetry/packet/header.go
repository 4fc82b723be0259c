package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	HeaderSize = 29 // Fixed header length shared by every packet kind
	MaxCars    = 22 // Per-car arrays are always sized for a full grid

	Format2024 = 2024
	Format2025 = 2025
)

var (
	// ErrIncompleteHeader is returned for datagrams shorter than HeaderSize.
	ErrIncompleteHeader = errors.New("incomplete packet header")
	// ErrUnknownKind is returned when the packet id is outside the protocol's range.
	ErrUnknownKind = errors.New("unknown packet kind")
	// ErrUnsupportedFormat is returned for packet formats without a layout.
	ErrUnsupportedFormat = errors.New("unsupported packet format")
	// ErrUnsupportedKind is returned for known kinds that are not decoded.
	ErrUnsupportedKind = errors.New("packet kind not decoded")
	// ErrShortBody is returned when a single-record body is truncated.
	ErrShortBody = errors.New("packet body too short")
)

// Header is the common prefix of every telemetry datagram.
type Header struct {
	PacketFormat            uint16
	GameYear                uint8
	GameMajorVersion        uint8
	GameMinorVersion        uint8
	PacketVersion           uint8
	PacketID                uint8
	SessionUID              uint64
	SessionTime             float32
	FrameIdentifier         uint32
	OverallFrameIdentifier  uint32
	PlayerCarIndex          uint8
	SecondaryPlayerCarIndex uint8
}

// Kind returns the packet kind named by the header.
func (h Header) Kind() Kind {
	return Kind(h.PacketID)
}

// DecodeHeader reads the header at the start of buf and returns it together
// with the number of bytes consumed, so the caller can locate the body.
func DecodeHeader(buf []byte) (Header, int, error) {
	if len(buf) < HeaderSize {
		return Header{}, 0, fmt.Errorf("%w: got %d bytes, need %d", ErrIncompleteHeader, len(buf), HeaderSize)
	}
	var h Header
	if _, err := binary.Decode(buf[:HeaderSize], binary.LittleEndian, &h); err != nil {
		return Header{}, 0, fmt.Errorf("decode header: %w", err)
	}
	return h, HeaderSize, nil
}

// AppendHeader encodes h in wire order onto dst.
func AppendHeader(dst []byte, h Header) []byte {
	out, err := binary.Append(dst, binary.LittleEndian, h)
	if err != nil {
		// Header is a fixed-size struct, encoding cannot fail.
		panic(err)
	}
	return out
}
