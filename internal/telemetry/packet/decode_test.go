package packet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeader(kind Kind, format uint16) Header {
	return Header{
		PacketFormat:     format,
		GameYear:         25,
		GameMajorVersion: 1,
		PacketVersion:    1,
		PacketID:         uint8(kind),
		SessionUID:       0xF00DCAFEDEADBEEF,
		SessionTime:      123.5,
		FrameIdentifier:  4242,
		PlayerCarIndex:   3,
	}
}

func TestRecordSizes(t *testing.T) {
	tests := []struct {
		format uint16
		kind   Kind
		want   int
	}{
		{Format2025, KindMotion, 60},
		{Format2025, KindLapData, 57},
		{Format2025, KindCarTelemetry, 60},
		{Format2025, KindCarStatus, 55},
		{Format2025, KindCarSetups, 50},
		{Format2025, KindCarDamage, 46},
		{Format2025, KindFinalClassification, 46},
		{Format2025, KindParticipants, 57},
		{Format2024, KindCarDamage, 42},
		{Format2024, KindFinalClassification, 45},
		{Format2024, KindParticipants, 60},
		{Format2024, KindLapData, 57},
	}
	for _, tt := range tests {
		got, ok := RecordSize(tt.format, tt.kind)
		if !ok {
			t.Fatalf("no layout for %s/%d", tt.kind, tt.format)
		}
		if got != tt.want {
			t.Errorf("RecordSize(%d, %s) = %d, want %d", tt.format, tt.kind, got, tt.want)
		}
	}
	if n := binary.Size(Header{}); n != HeaderSize {
		t.Fatalf("header struct is %d bytes, want %d", n, HeaderSize)
	}
}

func TestDecodeHeader(t *testing.T) {
	want := testHeader(KindLapData, Format2025)
	buf := AppendHeader(nil, want)
	require.Len(t, buf, HeaderSize)

	got, n, err := DecodeHeader(append(buf, 0xAA, 0xBB))
	require.NoError(t, err)
	assert.Equal(t, HeaderSize, n)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, KindLapData, got.Kind())
}

func TestDecodeHeaderIncomplete(t *testing.T) {
	for _, size := range []int{0, 1, HeaderSize - 1} {
		_, _, err := DecodeHeader(make([]byte, size))
		if !errors.Is(err, ErrIncompleteHeader) {
			t.Errorf("size %d: err = %v, want ErrIncompleteHeader", size, err)
		}
	}
}

func lapRecord(pos uint8) *LapData {
	return &LapData{
		LastLapTimeMS:     91234,
		CurrentLapTimeMS:  1000 * uint32(pos),
		LapDistance:       512.5,
		CarPosition:       pos + 1,
		CurrentLapNum:     7,
		PitStatus:         PitPitting,
		CurrentLapInvalid: 0,
		ResultStatus:      ResultActive,
	}
}

func TestDecodeBodyRecordCount(t *testing.T) {
	tests := []struct {
		name     string
		records  int
		trailing int
		want     int
	}{
		{"none", 0, 10, 0},
		{"partial", 3, 20, 3},
		{"full grid with trailer", MaxCars, 2, MaxCars},
		{"oversized", MaxCars + 3, 0, MaxCars},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := make([]any, tt.records)
			for i := range recs {
				recs[i] = lapRecord(uint8(i))
			}
			buf, err := Encode(testHeader(KindLapData, Format2025), nil, recs...)
			require.NoError(t, err)
			buf = append(buf, make([]byte, tt.trailing)...)

			h, samples, err := Decode(buf, time.Unix(100, 0))
			require.NoError(t, err)
			require.Len(t, samples, tt.want)
			for i, s := range samples {
				assert.Equal(t, uint8(i), s.CarIndex)
				assert.Equal(t, h.SessionUID, s.SessionUID)
				lap := s.Body.(*LapData)
				assert.Equal(t, uint8(i+1), lap.CarPosition)
				assert.Equal(t, PitPitting, lap.PitStatus)
				assert.Equal(t, uint32(1000*i), lap.CurrentLapTimeMS)
			}
		})
	}
}

func TestDecodeParticipants(t *testing.T) {
	name := make([]byte, 32)
	copy(name, "VERSTAPPEN")
	rec := participant2025{DriverID: 9, TeamID: 2, RaceNumber: 1}
	copy(rec.Name[:], name)
	bad := participant2025{DriverID: 12}
	copy(bad.Name[:], []byte{'A', 0xFF, 'B'})

	buf, err := Encode(testHeader(KindParticipants, Format2025), []byte{2}, &rec, &bad)
	require.NoError(t, err)
	_, samples, err := Decode(buf, time.Now())
	require.NoError(t, err)
	require.Len(t, samples, 2)

	p0 := samples[0].Body.(*Participant)
	assert.Equal(t, "VERSTAPPEN", p0.Name)
	assert.Equal(t, uint8(9), p0.DriverID)
	assert.Equal(t, "A�B", samples[1].Body.(*Participant).Name)
}

func TestDecodeParticipants2024(t *testing.T) {
	rec := participant2024{DriverID: 0, TeamID: 5, Platform: 6}
	copy(rec.Name[:], "HAMILTON")
	buf, err := Encode(testHeader(KindParticipants, Format2024), []byte{1}, &rec)
	require.NoError(t, err)
	_, samples, err := Decode(buf, time.Now())
	require.NoError(t, err)
	require.Len(t, samples, 1)
	p := samples[0].Body.(*Participant)
	assert.Equal(t, "HAMILTON", p.Name)
	assert.Equal(t, uint8(6), p.Platform)
}

func TestDecodeCarDamage2024(t *testing.T) {
	rec := carDamage2024{TyresWear: [4]float32{1, 2, 3, 4}, EngineSeized: 1}
	buf, err := Encode(testHeader(KindCarDamage, Format2024), nil, &rec)
	require.NoError(t, err)
	_, samples, err := Decode(buf, time.Now())
	require.NoError(t, err)
	require.Len(t, samples, 1)
	d := samples[0].Body.(*CarDamage)
	assert.Equal(t, [4]float32{1, 2, 3, 4}, d.TyresWear)
	assert.Equal(t, [4]uint8{}, d.TyreBlisters)
	assert.Equal(t, uint8(1), d.EngineSeized)
}

func TestDecodeSingleRecord(t *testing.T) {
	h := testHeader(KindSession, Format2025)
	buf, err := Encode(h, nil, &Session{TotalLaps: 57, TrackLength: 5412, SafetyCarStatus: SafetyCarVirtual})
	require.NoError(t, err)
	// The real packet continues well past the fixed prefix.
	buf = append(buf, bytes.Repeat([]byte{0x7F}, 600)...)

	_, samples, err := Decode(buf, time.Now())
	require.NoError(t, err)
	require.Len(t, samples, 1)
	s := samples[0].Body.(*Session)
	assert.Equal(t, uint8(57), s.TotalLaps)
	assert.Equal(t, uint16(5412), s.TrackLength)
	assert.Equal(t, SafetyCarVirtual, s.SafetyCarStatus)
	assert.Equal(t, h.PlayerCarIndex, samples[0].CarIndex)

	_, _, err = Decode(buf[:HeaderSize+40], time.Now())
	assert.ErrorIs(t, err, ErrShortBody)
}

func TestDecodeEvent(t *testing.T) {
	buf, err := Encode(testHeader(KindEvent, Format2025), nil, &eventWire{Code: [4]byte{'R', 'T', 'M', 'T'}, Detail: [2]uint8{11, 2}})
	require.NoError(t, err)
	_, samples, err := Decode(buf, time.Now())
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, &Event{Code: "RTMT", Detail0: 11, Detail1: 2}, samples[0].Body)
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		h    Header
		want error
	}{
		{"old format", testHeader(KindLapData, 2023), ErrUnsupportedFormat},
		{"unknown kind", testHeader(Kind(42), Format2025), ErrUnknownKind},
		{"not decoded", testHeader(KindLobbyInfo, Format2025), ErrUnsupportedKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := append(AppendHeader(nil, tt.h), make([]byte, 1200)...)
			_, _, err := Decode(buf, time.Now())
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if Supported(tt.h) == nil {
				t.Fatal("Supported returned nil")
			}
		})
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte("NORRIS\x00\x00junk"), "NORRIS"},
		{[]byte("P\xC3\xA9rez\x00"), "Pérez"},
		{[]byte{0}, ""},
		{[]byte("full width"), "full width"},
	}
	for _, tt := range tests {
		if got := decodeText(tt.in); got != tt.want {
			t.Errorf("decodeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
