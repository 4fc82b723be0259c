package network

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/banshee-data/pitwall/internal/monitoring"
)

// ReplayHandler receives one UDP payload and its capture time.
type ReplayHandler func(captured time.Time, payload []byte)

// ReplayResult summarises a replay.
type ReplayResult struct {
	Frames   int // capture records read
	Payloads int // UDP payloads handed to the handler
}

type packetDataSource interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// openCapture detects pcap or pcapng from the file magic.
func openCapture(r io.Reader) (packetDataSource, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("read capture magic: %w", err)
	}
	// pcapng files start with a section header block of type 0x0A0D0D0A.
	if magic[0] == 0x0A && magic[1] == 0x0D && magic[2] == 0x0D && magic[3] == 0x0A {
		return pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	}
	return pcapgo.NewReader(br)
}

// ReplayPCAP reads a pcap or pcapng file and hands every UDP payload sent
// to udpPort (any port when 0) to handle, in capture order. It reads the
// capture with pure-Go pcapgo, so no libpcap is required.
func ReplayPCAP(ctx context.Context, path string, udpPort int, stats PacketStatsInterface, handle ReplayHandler) (ReplayResult, error) {
	var res ReplayResult
	f, err := os.Open(path)
	if err != nil {
		return res, fmt.Errorf("failed to open PCAP file %s: %w", path, err)
	}
	defer f.Close()

	src, err := openCapture(f)
	if err != nil {
		return res, fmt.Errorf("failed to read PCAP file %s: %w", path, err)
	}
	if stats == nil {
		stats = noopStats{}
	}

	start := time.Now()
	for {
		if ctx.Err() != nil {
			monitoring.Logf("PCAP replay stopping (processed %d frames)", res.Frames)
			return res, ctx.Err()
		}
		data, ci, err := src.ReadPacketData()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read frame %d: %w", res.Frames+1, err)
		}
		res.Frames++

		pkt := gopacket.NewPacket(data, src.LinkType(), gopacket.DecodeOptions{Lazy: true, NoCopy: true})
		udp, ok := pkt.Layer(layers.LayerTypeUDP).(*layers.UDP)
		if !ok || len(udp.Payload) == 0 {
			continue
		}
		if udpPort != 0 && int(udp.DstPort) != udpPort {
			continue
		}

		stats.AddPacket(len(udp.Payload))
		handle(ci.Timestamp, udp.Payload)
		res.Payloads++

		if res.Frames%10000 == 0 {
			elapsed := time.Since(start)
			monitoring.Logf("PCAP progress: %d frames in %v (%.0f frames/s)",
				res.Frames, elapsed, float64(res.Frames)/elapsed.Seconds())
		}
	}
	monitoring.Logf("PCAP replay complete: %d frames, %d telemetry payloads in %v",
		res.Frames, res.Payloads, time.Since(start))
	return res, nil
}
