/*
Package packet decodes F1 24 / F1 25 UDP telemetry datagrams.

Datagram structure (little-endian throughout):

	├── Header (29 bytes)
	│   └── format u16, year u8, major u8, minor u8, version u8, packet id u8,
	│       session uid u64, session time f32, frame u32, overall frame u32,
	│       player car u8, secondary player car u8
	└── Body (packet id dependent)
	    ├── per-car kinds: up to 22 fixed-size records, car index = record position
	    │   (Participants and FinalClassification carry a leading u8 car count)
	    └── single-record kinds: Session, MotionEx, Event

Each body kind is described by a Go struct whose fields have the exact wire
widths. Protocol bytes we do not surface are blank (_) fields so the struct
size equals the wire record size. One generic routine, decodeRecords, walks a
body and decodes each record with encoding/binary.

Layouts differ between packet formats for CarDamage (tyre blisters added in
2025), FinalClassification (result reason added in 2025) and Participants
(name shortened to 32 bytes and livery colours added in 2025). Format-specific
wire structs convert to a single body type so callers never branch on format.
*/
package packet
