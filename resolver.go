//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package dnswalk

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/miekg/dns"
)

const (
	// DefaultTimeout bounds each query/response round trip.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxHops bounds referral and indirection chains. Without
	// this bound a looping delegation would keep the walk going forever.
	DefaultMaxHops = 32
)

// Errors emitted by [*Resolver]. All of them end one root-server
// attempt; only [ErrAllRootsFailed] ends the whole lookup.
var (
	// ErrEmptyReferral means a referral response carried no
	// nameserver names to continue the walk with.
	ErrEmptyReferral = errors.New("referral without nameservers")

	// ErrMaxHopsExceeded means a referral or indirection chain
	// exceeded the hop budget.
	ErrMaxHopsExceeded = errors.New("too many resolution hops")

	// ErrAllRootsFailed means every configured root server attempt
	// failed at the transport or codec level.
	ErrAllRootsFailed = errors.New("hostname could not be resolved")
)

// Outcome classifies the terminal state of a resolution.
//
// Name errors are outcomes rather than Go errors: they are
// authoritative statements about the queried name and end the whole
// lookup, while transport and codec errors only end the current
// root-server attempt.
type Outcome int

const (
	// OutcomeResolved means the walk ended with an address.
	OutcomeResolved Outcome = iota

	// OutcomeInvalidTLD means the name was denied at the root: its
	// top-level domain does not exist.
	OutcomeInvalidTLD

	// OutcomeInvalidDomain means the name was denied one hop below
	// the root: its domain does not exist.
	OutcomeInvalidDomain

	// OutcomeUnresolvedSubdomain means a deeper zone denied the name.
	OutcomeUnresolvedSubdomain
)

// String returns the user-visible description of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeInvalidTLD:
		return "Invalid TLD"
	case OutcomeInvalidDomain:
		return "Invalid domain"
	case OutcomeUnresolvedSubdomain:
		return "Subdomain could not be resolved"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is the terminal state of one lookup.
type Result struct {
	// Outcome classifies the result.
	Outcome Outcome

	// Address is the resolved address (for MX lookups, the address of
	// the mail exchange) when Outcome is [OutcomeResolved].
	Address string
}

// Transport sends one query datagram to a server and waits for the
// reply. It is a collaborator of [*Resolver], not part of the walk
// itself; [*UDPTransport] is the default implementation.
//
// Implementations must release whatever socket they open on every
// return path, timeout included.
type Transport interface {
	SendQuery(server string, query []byte, timeout time.Duration) ([]byte, error)
}

// IDSource produces transaction IDs for outgoing queries. The default
// source is [dns.Id]; tests inject a deterministic one.
type IDSource func() uint16

// Resolver walks the DNS delegation hierarchy from the root.
//
// Construct using [NewResolver]. The zero value is not usable. A
// Resolver keeps no state across lookups and performs exactly one
// query at a time.
type Resolver struct {
	// Roots are the root server addresses in fallback priority order.
	Roots []string

	// Transport performs the query round trips.
	Transport Transport

	// Timeout bounds each round trip.
	Timeout time.Duration

	// MaxHops bounds each walk.
	MaxHops int

	// NewID produces transaction IDs.
	NewID IDSource

	// Logger logs one line per hop. Defaults to discarding.
	Logger *slog.Logger
}

// NewResolver constructs a [*Resolver] with the given root servers,
// the UDP transport, and default limits.
func NewResolver(roots []string) *Resolver {
	return &Resolver{
		Roots:     roots,
		Transport: &UDPTransport{},
		Timeout:   DefaultTimeout,
		MaxHops:   DefaultMaxHops,
		NewID:     dns.Id,
		Logger:    slog.New(slog.DiscardHandler),
	}
}

// Resolve resolves hostname, walking from each configured root server
// in priority order. With wantMX set it resolves the address of the
// name's mail exchange instead.
//
// A transport or codec error only fails the current root attempt and
// the next root is tried; a [Result] is final, whether it carries an
// address or a name error. When every root fails, the returned error
// wraps [ErrAllRootsFailed] together with the last attempt's error.
func (r *Resolver) Resolve(hostname string, wantMX bool) (Result, error) {
	lastErr := errors.New("no root servers configured")
	for _, root := range r.Roots {
		result, err := r.walk(frame{
			server: root,
			name:   hostname,
			wantMX: wantMX,
			root:   root,
		})
		if err != nil {
			r.Logger.Warn("root attempt failed", "root", root, "err", err)
			lastErr = err
			continue
		}
		return result, nil
	}
	return Result{}, fmt.Errorf("%w: %w", ErrAllRootsFailed, lastErr)
}

// frame is the transient state of one walk: which server to query
// next, the name being resolved, and how deep in the delegation chain
// the walk is. It lives only for the duration of one root attempt.
type frame struct {
	server string
	name   string
	wantMX bool
	root   string
	depth  int
}

// walk runs the hop-by-hop state machine for a single root server
// until a terminal result or an attempt-local error.
func (r *Resolver) walk(f frame) (Result, error) {
	for hop := 0; hop < r.MaxHops; hop++ {
		resp, err := r.roundTrip(f)
		if err != nil {
			return Result{}, err
		}

		switch {
		// 1. an SOA in the authority section, or an NXDOMAIN response
		// code, authoritatively denies the name at this depth
		case resp.HasSOA() || resp.Header.RCode == RCodeNameError:
			return Result{Outcome: nameErrorOutcome(f.depth)}, nil

		// 2. a CNAME is an indirection: the target may live in a
		// different zone, so the walk restarts from the root
		case hasCNAME(resp):
			target, err := resp.FirstCNAME()
			if err != nil {
				return Result{}, err
			}
			f = frame{server: f.root, name: target, wantMX: f.wantMX, root: f.root, depth: f.depth + 1}

		// 3. an authoritative answer ends the walk, except that an MX
		// target is itself a host name that needs an address lookup
		case resp.Header.AA:
			if f.wantMX {
				target, err := resp.FirstMX()
				if err != nil {
					return Result{}, err
				}
				f = frame{server: f.root, name: target, wantMX: false, root: f.root, depth: f.depth + 1}
				continue
			}
			addr, err := resp.FirstA()
			if err != nil {
				return Result{}, err
			}
			return Result{Outcome: OutcomeResolved, Address: addr}, nil

		// 4. anything else is a referral to the nameservers of the
		// next, more specific zone
		default:
			servers, err := resp.NameServers()
			if err != nil {
				return Result{}, err
			}
			if len(servers) == 0 {
				return Result{}, ErrEmptyReferral
			}
			f = frame{server: servers[0], name: f.name, wantMX: f.wantMX, root: f.root, depth: f.depth + 1}
		}
	}
	return Result{}, ErrMaxHopsExceeded
}

// roundTrip packs and sends one query for the frame and parses the
// paired response, validating its transaction ID.
func (r *Resolver) roundTrip(f frame) (*Response, error) {
	query := &Query{ID: r.NewID(), Name: f.name, WantMX: f.wantMX}
	raw, err := query.Pack()
	if err != nil {
		return nil, err
	}
	r.Logger.Info("querying", "server", f.server, "name", f.name, "depth", f.depth)
	reply, err := r.Transport.SendQuery(f.server, raw, r.Timeout)
	if err != nil {
		return nil, err
	}
	return ParseResponse(query.ID, reply)
}

// nameErrorOutcome maps the depth at which a name error arrived to
// the part of the name being denied: the root denies the TLD, the TLD
// server denies the domain, anything deeper denies a subdomain.
func nameErrorOutcome(depth int) Outcome {
	switch depth {
	case 0:
		return OutcomeInvalidTLD
	case 1:
		return OutcomeInvalidDomain
	default:
		return OutcomeUnresolvedSubdomain
	}
}

func hasCNAME(resp *Response) bool {
	for _, rec := range resp.Answer {
		if rec.Type == TypeCNAME && rec.Class == ClassINET {
			return true
		}
	}
	return false
}
