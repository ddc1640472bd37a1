// Package resolver implements the iterative resolution engine (§4.6): given
// a query name and type, it descends the authoritative hierarchy starting at
// a configured root server, following referrals (glue-resolved or not) until
// it reaches a terminal answer, a negative result, or exhausts its step
// budget.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/mjfern/rootdns/internal/wire"
)

// DefaultRootServer is the compile-time root hint (A.ROOT-SERVERS.NET).
const DefaultRootServer = "198.41.0.4"

// DefaultMaxSteps is the recommended resolver loop iteration budget (§4.6).
const DefaultMaxSteps = 16

// DefaultGlueDepth bounds how deeply glue-less-referral recursions may nest
// within one inbound query, guarding against a pathological zone chaining
// glue-less referrals into unbounded recursive descents (§9 "recursion vs. iteration";
// PART E of the expanded design).
const DefaultGlueDepth = 4

// DefaultUpstreamTimeout is the recommended per-upstream-recv deadline (§5).
const DefaultUpstreamTimeout = 2 * time.Second

// queryID is the fixed transaction id used for every outbound upstream
// query. The resolver never multiplexes concurrent upstream queries on one
// socket, so a fixed id carries no collision risk (§4.6 step 1).
const queryID = 0xD057

// BudgetExhaustedError reports that the resolver loop exceeded its
// iteration budget without reaching a terminal state.
type BudgetExhaustedError struct {
	Steps int
}

func (e *BudgetExhaustedError) Error() string {
	return fmt.Sprintf("resolver: exhausted budget of %d steps", e.Steps)
}

// UpstreamError wraps a network failure talking to an authoritative server.
type UpstreamError struct {
	Upstream string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("resolver: upstream %s: %v", e.Upstream, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Config configures a Resolver.
type Config struct {
	RootServer      string
	MaxSteps        int
	GlueDepth       int
	UpstreamTimeout time.Duration
	Logger          *slog.Logger
}

// Resolver performs iterative descent from a root server (§4.6). There is
// exactly one resolution strategy in this system, so a concrete type stands
// in for what a forwarding-only resolver would instead model as an
// interface with multiple implementations.
type Resolver struct {
	rootServer      string
	maxSteps        int
	glueDepth       int
	upstreamTimeout time.Duration
	logger          *slog.Logger
}

// New builds a Resolver from cfg, filling in defaults for zero-valued fields.
func New(cfg Config) *Resolver {
	r := &Resolver{
		rootServer:      cfg.RootServer,
		maxSteps:        cfg.MaxSteps,
		glueDepth:       cfg.GlueDepth,
		upstreamTimeout: cfg.UpstreamTimeout,
		logger:          cfg.Logger,
	}
	if r.rootServer == "" {
		r.rootServer = DefaultRootServer
	}
	if r.maxSteps <= 0 {
		r.maxSteps = DefaultMaxSteps
	}
	if r.glueDepth <= 0 {
		r.glueDepth = DefaultGlueDepth
	}
	if r.upstreamTimeout <= 0 {
		r.upstreamTimeout = DefaultUpstreamTimeout
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Resolve drives the iterative descent of §4.6 for (qname, qtype), starting
// at the configured root server. It returns the terminal Packet the
// hierarchy produced (answer, NXDOMAIN, or the last referral if the
// authority section is exhausted) or an error if the budget is exceeded or
// an upstream query of this descent fails.
func (r *Resolver) Resolve(ctx context.Context, qname string, qtype wire.RRType) (wire.Packet, error) {
	return r.resolve(ctx, qname, qtype, r.glueDepth)
}

// resolve is Resolve's entry point plus a glue-recursion budget that is
// passed down decremented on every glue-less-referral re-entry (§4.6 step 5),
// bounding the nesting depth of recursive descents independently of the
// per-descent step budget. Sibling re-entries at the same level each get the
// same remaining budget; their total count is not capped.
func (r *Resolver) resolve(ctx context.Context, qname string, qtype wire.RRType, glueBudget int) (wire.Packet, error) {
	currentNS := r.rootServer

	for step := 0; step < r.maxSteps; step++ {
		resp, err := r.queryOne(ctx, currentNS, qname, qtype)
		if err != nil {
			return wire.Packet{}, &UpstreamError{Upstream: currentNS, Err: err}
		}

		if len(resp.Answers) > 0 && resp.Header.ResponseCode == wire.RCodeNoError {
			return resp, nil
		}
		if resp.Header.ResponseCode == wire.RCodeNXDomain {
			return resp, nil
		}

		next, ok := r.pickGlue(resp, qname)
		if ok {
			currentNS = next
			continue
		}

		nsHost, ok := r.pickReferral(resp, qname)
		if !ok {
			return resp, nil
		}

		if glueBudget <= 0 {
			return resp, nil
		}
		glueResp, err := r.resolve(ctx, nsHost, wire.TypeA, glueBudget-1)
		if err != nil {
			return resp, nil
		}
		addr, ok := firstAAddr(glueResp.Answers)
		if !ok {
			return resp, nil
		}
		currentNS = addr
	}

	return wire.Packet{}, &BudgetExhaustedError{Steps: r.maxSteps}
}

// pickGlue scans the authority section for NS records covering qname and
// returns the address of the first A record in additionals matching the
// target host of one of them, trying the NS records in section order
// (§4.6 step 4, "first matching" in section order).
func (r *Resolver) pickGlue(resp wire.Packet, qname string) (string, bool) {
	for _, rec := range resp.Authorities {
		ns, ok := rec.(*wire.NSRecord)
		if !ok || !isSuffix(qname, ns.H.Domain) {
			continue
		}
		for _, add := range resp.Additionals {
			a, ok := add.(*wire.ARecord)
			if !ok || !strings.EqualFold(a.H.Domain, ns.Host) {
				continue
			}
			return a.Addr.String(), true
		}
	}
	return "", false
}

// pickReferral returns the first NS in the authority section whose domain
// covers qname, for the glue-less case (§4.6 step 5).
func (r *Resolver) pickReferral(resp wire.Packet, qname string) (string, bool) {
	for _, rec := range resp.Authorities {
		ns, ok := rec.(*wire.NSRecord)
		if !ok || !isSuffix(qname, ns.H.Domain) {
			continue
		}
		return ns.Host, true
	}
	return "", false
}

// isSuffix reports whether ns is a (lowercased) suffix of qname, per §4.6's
// literal string-suffix tie-break.
func isSuffix(qname, ns string) bool {
	qname = strings.ToLower(qname)
	ns = strings.ToLower(ns)
	return strings.HasSuffix(qname, ns)
}

func firstAAddr(records []wire.Record) (string, bool) {
	for _, rec := range records {
		if a, ok := rec.(*wire.ARecord); ok {
			return a.Addr.String(), true
		}
	}
	return "", false
}

// upstreamPort is the authoritative DNS port every upstream query targets.
// It is a var rather than a const solely so package-internal tests can
// point queries at an unprivileged loopback port instead of 53.
var upstreamPort = "53"

// queryOne sends a single query (RD bit set) to upstream on a fresh
// ephemeral-port UDP socket, per §4.6 step 1 and §9's ephemeral-port source
// ambiguity fix (the reference implementation's fixed local port 43210 is
// not reproduced here).
func (r *Resolver) queryOne(ctx context.Context, upstream, qname string, qtype wire.RRType) (wire.Packet, error) {
	req := wire.Packet{
		Header: wire.Header{
			ID:               queryID,
			RecursionDesired: true,
			QDCount:          1,
		},
		Questions: []wire.Question{{Name: qname, QType: qtype}},
	}
	reqBytes, err := req.Encode()
	if err != nil {
		return wire.Packet{}, fmt.Errorf("encode upstream query: %w", err)
	}

	conn, err := net.Dial("udp", net.JoinHostPort(upstream, upstreamPort))
	if err != nil {
		return wire.Packet{}, fmt.Errorf("dial upstream %s: %w", upstream, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(r.upstreamTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetDeadline(deadline)

	if _, err := conn.Write(reqBytes); err != nil {
		return wire.Packet{}, fmt.Errorf("write to upstream %s: %w", upstream, err)
	}

	buf := make([]byte, wire.Capacity)
	n, err := conn.Read(buf)
	if err != nil {
		return wire.Packet{}, fmt.Errorf("read from upstream %s: %w", upstream, err)
	}

	resp, err := wire.Decode(buf[:n])
	if err != nil {
		return wire.Packet{}, fmt.Errorf("decode response from upstream %s: %w", upstream, err)
	}

	r.logger.Debug("upstream lookup",
		"upstream", upstream,
		"qname", qname,
		"qtype", qtype.String(),
		"rcode", resp.Header.ResponseCode.String(),
		"answers", len(resp.Answers),
	)
	return resp, nil
}

// ErrNoUsableReferral is never returned directly, kept for documentation of
// the "exhausted" terminal case (§4.6 step 6): an empty authority section
// simply returns the last received Packet rather than a distinct error.
var ErrNoUsableReferral = errors.New("resolver: no usable referral")
