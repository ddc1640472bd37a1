package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mjfern/rootdns/internal/wire"
)

// Resolver is the subset of resolver.Resolver the handler depends on.
type Resolver interface {
	Resolve(ctx context.Context, qname string, qtype wire.RRType) (wire.Packet, error)
}

// Handler implements the per-inbound-datagram pipeline of §4.7: decode the
// request, pop its question, drive the resolver, and build a reply.
type Handler struct {
	Resolver Resolver
	Stats    *DNSStats
	Logger   *slog.Logger
	Timeout  time.Duration // per-query resolver deadline; defaults to 4s
}

// Handle decodes reqBytes, resolves the question it carries, and returns the
// encoded reply to send back to src. A nil return means the datagram could
// not even be parsed well enough to build any reply and should be dropped.
func (h *Handler) Handle(ctx context.Context, src string, reqBytes []byte) []byte {
	start := time.Now()
	corrID := uuid.New().String()[:8]
	logger := h.logger().With("correlation_id", corrID, "src", src)

	req, err := wire.Decode(reqBytes)
	if err != nil {
		logger.Warn("dropping undecodable datagram", "error", err)
		return nil
	}

	if len(req.Questions) == 0 {
		logger.Info("dns query", "qdcount", 0, "rcode", wire.RCodeFormErr.String())
		h.recordOutcome(wire.RCodeFormErr, start)
		return h.encodeReply(req.Header, wire.Question{}, wire.RCodeFormErr, nil, nil, nil, logger)
	}
	q := req.Questions[0]

	resp, rcode := h.resolveWithTimeout(ctx, logger, q)

	logger.Info("dns query",
		"qname", q.Name,
		"qtype", q.QType.String(),
		"rcode", rcode.String(),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.recordOutcome(rcode, start)

	// resolveWithTimeout only returns a non-nil err-derived SERVFAIL when the
	// resolver itself failed or timed out; on every other path resp is the
	// resolver's real terminal packet, whatever rcode upstream set (NOERROR,
	// NXDOMAIN, or a terminal referral-exhaustion case carrying SERVFAIL,
	// REFUSED, or NOTIMP from the last authority queried) and its sections
	// are copied through rather than discarded.
	return h.encodeReply(req.Header, q, rcode, resp.Answers, resp.Authorities, resp.Additionals, logger)
}

// resolveWithTimeout runs the resolver in a goroutine bounded by a local
// timeout, so a single hung upstream cannot stall the single-threaded UDP
// loop indefinitely (mirrors the teacher's resolveWithTimeout mechanism;
// there is no worker pool here to protect, but the per-query deadline is
// still required to bound the blocking recv in §5).
func (h *Handler) resolveWithTimeout(ctx context.Context, logger *slog.Logger, q wire.Question) (wire.Packet, wire.RCode) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 4 * time.Second
	}

	type result struct {
		packet wire.Packet
		err    error
	}
	resCh := make(chan result, 1)
	go func() {
		p, err := h.Resolver.Resolve(ctx, q.Name, q.QType)
		resCh <- result{packet: p, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return wire.Packet{}, wire.RCodeServFail
	case <-timer.C:
		logger.Warn("resolver timeout", "qname", q.Name, "qtype", q.QType.String())
		return wire.Packet{}, wire.RCodeServFail
	case r := <-resCh:
		if r.err != nil {
			logger.Warn("resolver failure", "qname", q.Name, "qtype", q.QType.String(), "error", r.err)
			return wire.Packet{}, wire.RCodeServFail
		}
		return r.packet, r.packet.Header.ResponseCode
	}
}

// encodeReply builds and serializes the reply packet per §4.7: id echoed,
// is_response set, recursion_desired copied, recursion_available true,
// question echoed (if any), sections copied from the resolver's terminal
// packet in order. UNKNOWN-type records are left out: their RDATA is not
// kept, so they cannot be re-emitted. It falls back to a minimal SERVFAIL if
// even that fails to encode (e.g. a pathological upstream payload), and
// returns nil only if that fallback itself cannot be encoded.
func (h *Handler) encodeReply(
	reqHeader wire.Header,
	q wire.Question,
	rcode wire.RCode,
	answers, authorities, additionals []wire.Record,
	logger *slog.Logger,
) []byte {
	known := func(records []wire.Record) []wire.Record {
		out := make([]wire.Record, 0, len(records))
		for _, r := range records {
			if _, ok := r.(*wire.UnknownRecord); !ok {
				out = append(out, r)
			}
		}
		return out
	}
	reply := wire.Packet{
		Header: wire.Header{
			ID:                 reqHeader.ID,
			IsResponse:         true,
			RecursionDesired:   reqHeader.RecursionDesired,
			RecursionAvailable: true,
			ResponseCode:       rcode,
		},
		Answers:     known(answers),
		Authorities: known(authorities),
		Additionals: known(additionals),
	}
	if q.Name != "" || q.QType != 0 {
		reply.Questions = []wire.Question{q}
	}

	msg, err := reply.EncodeTruncated()
	if err != nil {
		logger.Error("failed to encode reply, sending bare SERVFAIL", "error", err)
		fallback := wire.Packet{Header: wire.Header{
			ID: reqHeader.ID, IsResponse: true, ResponseCode: wire.RCodeServFail,
		}}
		msg, err = fallback.Encode()
		if err != nil {
			logger.Error("failed to encode fallback SERVFAIL, dropping datagram", "error", err)
			return nil
		}
	}
	return msg
}

func (h *Handler) recordOutcome(rcode wire.RCode, start time.Time) {
	if h.Stats == nil {
		return
	}
	h.Stats.RecordQuery()
	h.Stats.RecordLatency(time.Since(start).Nanoseconds())
	switch rcode {
	case wire.RCodeNXDomain:
		h.Stats.RecordNXDOMAIN()
	case wire.RCodeNoError:
	default:
		h.Stats.RecordError()
	}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
