package packet

import "encoding/binary"

// Encode builds a datagram from a header, an optional body prefix (the car
// count byte of Participants and FinalClassification) and wire records. It
// is the inverse of Decode for body types whose layout matches the wire.
func Encode(h Header, prefix []byte, records ...any) ([]byte, error) {
	buf := AppendHeader(make([]byte, 0, HeaderSize+len(prefix)), h)
	buf = append(buf, prefix...)
	for _, r := range records {
		var err error
		if buf, err = binary.Append(buf, binary.LittleEndian, r); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
