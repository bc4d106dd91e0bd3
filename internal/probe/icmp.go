package probe

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"

	"github.com/netpulse/netpulse/internal/domain"
)

const protocolICMPv4 = 1 // IANA protocol number for parsing replies

// ICMPProber sends one echo request over an unprivileged datagram ICMP
// socket (no raw-socket capability needed on Linux with
// net.ipv4.ping_group_range configured). A reply within the deadline
// means reachable.
type ICMPProber struct{}

func (p *ICMPProber) Probe(ctx context.Context, t domain.Target) domain.ProbeResult {
	start := time.Now()
	res := domain.ProbeResult{TargetID: t.ID, CheckedAt: start.UTC()}

	addr, err := net.ResolveIPAddr("ip4", t.Host)
	if err != nil {
		res.Outcome, res.Message = classifyNetErr(err)
		return res
	}

	conn, err := icmp.ListenPacket("udp4", "0.0.0.0")
	if err != nil {
		res.Outcome = domain.OutcomeError
		res.Message = err.Error()
		return res
	}
	defer conn.Close()

	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	echo := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Body: &icmp.Echo{
			ID:   os.Getpid() & 0xffff,
			Seq:  1,
			Data: []byte("netpulse"),
		},
	}
	wb, err := echo.Marshal(nil)
	if err != nil {
		res.Outcome = domain.OutcomeError
		res.Message = err.Error()
		return res
	}
	if _, err := conn.WriteTo(wb, &net.UDPAddr{IP: addr.IP}); err != nil {
		res.LatencyMS = latencyMS(start)
		res.Outcome, res.Message = classifyNetErr(err)
		return res
	}

	rb := make([]byte, 1500)
	n, _, err := conn.ReadFrom(rb)
	res.LatencyMS = latencyMS(start)
	if err != nil {
		res.Outcome, res.Message = classifyNetErr(err)
		return res
	}

	reply, err := icmp.ParseMessage(protocolICMPv4, rb[:n])
	if err != nil {
		res.Outcome = domain.OutcomeError
		res.Message = err.Error()
		return res
	}
	if reply.Type != ipv4.ICMPTypeEchoReply {
		res.Outcome = domain.OutcomeFailure
		res.Message = fmt.Sprintf("unexpected icmp reply type %v", reply.Type)
		return res
	}

	res.Outcome = domain.OutcomeSuccess
	res.Message = "echo reply"
	return res
}
