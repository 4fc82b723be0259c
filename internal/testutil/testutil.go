// Package testutil provides shared test fixtures: encoded telemetry
// datagrams and packet captures holding them.
package testutil

import (
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pitwall/internal/telemetry/packet"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d (%s), want %d", got, http.StatusText(got), want)
	}
}

// LapDatagram encodes a 2025 lap data packet carrying a zeroed record for
// every car slot.
func LapDatagram(t testing.TB, sessionUID uint64, frame uint32) []byte {
	t.Helper()
	h := packet.Header{
		PacketFormat:     packet.Format2025,
		GameYear:         25,
		GameMajorVersion: 1,
		PacketVersion:    1,
		PacketID:         uint8(packet.KindLapData),
		SessionUID:       sessionUID,
		FrameIdentifier:  frame,
	}
	buf, err := packet.Encode(h, nil, make([]packet.LapData, packet.MaxCars))
	require.NoError(t, err)
	return buf
}

// Frame is one captured UDP datagram.
type Frame struct {
	Port    uint16
	At      time.Time
	Payload []byte
}

// WritePCAP writes frames as Ethernet/IPv4/UDP records to a pcap file in a
// test temp dir and returns its path.
func WritePCAP(t testing.TB, frames []Frame) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))
	for _, fr := range frames {
		eth := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 5},
			DstMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 6},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ip := &layers.IPv4{
			Version:  4,
			TTL:      64,
			Protocol: layers.IPProtocolUDP,
			SrcIP:    net.IPv4(192, 168, 1, 20),
			DstIP:    net.IPv4(192, 168, 1, 10),
		}
		udp := &layers.UDP{SrcPort: 50000, DstPort: layers.UDPPort(fr.Port)}
		require.NoError(t, udp.SetNetworkLayerForChecksum(ip))

		sb := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
		require.NoError(t, gopacket.SerializeLayers(sb, opts, eth, ip, udp, gopacket.Payload(fr.Payload)))
		data := sb.Bytes()
		require.NoError(t, w.WritePacket(gopacket.CaptureInfo{
			Timestamp:     fr.At,
			CaptureLength: len(data),
			Length:        len(data),
		}, data))
	}
	return path
}
