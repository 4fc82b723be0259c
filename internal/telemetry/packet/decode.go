package packet

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// layout describes how one packet kind's body is laid out for one format.
type layout struct {
	recordSize int
	prefix     int  // bytes before the first record (car count)
	single     bool // one record, not a per-car array
	decode     func(rec []byte) (Body, error)
}

// wireLayout builds a layout for wire record type W converted to body B.
func wireLayout[W any, B Body](prefix int, single bool, conv func(*W) B) layout {
	var zero W
	return layout{
		recordSize: binary.Size(zero),
		prefix:     prefix,
		single:     single,
		decode: func(rec []byte) (Body, error) {
			var w W
			if _, err := binary.Decode(rec, binary.LittleEndian, &w); err != nil {
				return nil, err
			}
			return conv(&w), nil
		},
	}
}

func same[B Body](b B) B { return b }

var (
	motionLayout    = wireLayout(0, false, same[*Motion])
	lapLayout       = wireLayout(0, false, same[*LapData])
	telemetryLayout = wireLayout(0, false, same[*CarTelemetry])
	statusLayout    = wireLayout(0, false, same[*CarStatus])
	setupLayout     = wireLayout(0, false, same[*CarSetup])
	sessionLayout   = wireLayout(0, true, same[*Session])
	motionExLayout  = wireLayout(0, true, same[*MotionEx])
	eventLayout     = wireLayout(0, true, (*eventWire).body)
)

// layouts is indexed by packet format, then kind.
var layouts = map[uint16]map[Kind]layout{
	Format2024: {
		KindMotion:              motionLayout,
		KindSession:             sessionLayout,
		KindLapData:             lapLayout,
		KindEvent:               eventLayout,
		KindParticipants:        wireLayout(1, false, (*participant2024).body),
		KindCarSetups:           setupLayout,
		KindCarTelemetry:        telemetryLayout,
		KindCarStatus:           statusLayout,
		KindFinalClassification: wireLayout(1, false, (*finalClassification2024).body),
		KindCarDamage:           wireLayout(0, false, (*carDamage2024).body),
		KindMotionEx:            motionExLayout,
	},
	Format2025: {
		KindMotion:              motionLayout,
		KindSession:             sessionLayout,
		KindLapData:             lapLayout,
		KindEvent:               eventLayout,
		KindParticipants:        wireLayout(1, false, (*participant2025).body),
		KindCarSetups:           setupLayout,
		KindCarTelemetry:        telemetryLayout,
		KindCarStatus:           statusLayout,
		KindFinalClassification: wireLayout(1, false, same[*FinalClassification]),
		KindCarDamage:           wireLayout(0, false, same[*CarDamage]),
		KindMotionEx:            motionExLayout,
	},
}

func lookupLayout(h Header) (layout, error) {
	byKind, ok := layouts[h.PacketFormat]
	if !ok {
		return layout{}, fmt.Errorf("%w: %d", ErrUnsupportedFormat, h.PacketFormat)
	}
	k := h.Kind()
	if !k.Valid() {
		return layout{}, fmt.Errorf("%w: %d", ErrUnknownKind, h.PacketID)
	}
	l, ok := byKind[k]
	if !ok {
		return layout{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, k)
	}
	return l, nil
}

// Supported checks that h names a known kind with a body layout for its
// format, without decoding anything.
func Supported(h Header) error {
	_, err := lookupLayout(h)
	return err
}

// RecordSize returns the wire size of one record of kind k in format.
func RecordSize(format uint16, k Kind) (int, bool) {
	l, ok := layouts[format][k]
	return l.recordSize, ok
}

// decodeRecords walks body according to l. Per-car bodies yield
// min(MaxCars, floor(remaining/recordSize)) records; a truncated tail is
// ignored. Single-record bodies must hold one full record.
func decodeRecords(l layout, body []byte) ([]Body, error) {
	if len(body) < l.prefix {
		return nil, nil
	}
	body = body[l.prefix:]
	n := len(body) / l.recordSize
	if l.single {
		if n < 1 {
			return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrShortBody, len(body), l.recordSize)
		}
		n = 1
	} else if n > MaxCars {
		n = MaxCars
	}

	out := make([]Body, 0, n)
	for i := range n {
		off := i * l.recordSize
		b, err := l.decode(body[off : off+l.recordSize])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// CarSample is one decoded record tagged with its packet's identity.
type CarSample struct {
	Kind        Kind
	Received    time.Time
	SessionUID  uint64
	SessionTime float32
	FrameID     uint32
	CarIndex    uint8
	Body        Body
}

// DecodeBody decodes the body that follows h. Per-car records take their
// position as car index; single-record kinds are attributed to the player car.
func DecodeBody(h Header, body []byte, received time.Time) ([]CarSample, error) {
	l, err := lookupLayout(h)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(l, body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", h.Kind(), err)
	}
	samples := make([]CarSample, len(recs))
	for i, b := range recs {
		car := uint8(i)
		if l.single {
			car = h.PlayerCarIndex
		}
		samples[i] = CarSample{
			Kind:        h.Kind(),
			Received:    received,
			SessionUID:  h.SessionUID,
			SessionTime: h.SessionTime,
			FrameID:     h.FrameIdentifier,
			CarIndex:    car,
			Body:        b,
		}
	}
	return samples, nil
}

// Decode reads a whole datagram.
func Decode(buf []byte, received time.Time) (Header, []CarSample, error) {
	h, n, err := DecodeHeader(buf)
	if err != nil {
		return Header{}, nil, err
	}
	samples, err := DecodeBody(h, buf[n:], received)
	return h, samples, err
}

// decodeText trims a fixed-width text field at its first NUL and replaces
// invalid UTF-8 with U+FFFD.
func decodeText(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
