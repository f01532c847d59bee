package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/filecoin-project/go-lossy"
	"github.com/filecoin-project/go-lossy/internal/clock"
	"github.com/filecoin-project/go-lossy/transport"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var proxyCmd = cli.Command{
	Name:  "proxy",
	Usage: "relays UDP datagrams between clients and upstreams, impairing both directions",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name: "route",
			Usage: "listen and upstream address separated by '=', e.g. 127.0.0.1:4000=10.0.0.7:4000. " +
				"Each route is impaired independently.",
			Required: true,
		},
		&cli.DurationFlag{
			Name:  "poll-interval",
			Usage: "the maximum time spent waiting for a datagram on each side per poll",
			Value: time.Millisecond,
		},
		&cli.IntFlag{
			Name:  "breaker-failures",
			Usage: "the number of consecutive upstream write failures after which writes are suspended",
			Value: 5,
		},
		&cli.DurationFlag{
			Name:  "breaker-reset",
			Usage: "how long upstream writes stay suspended before being retried",
			Value: time.Second,
		},
		latencyFlag,
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfigOrDefault(c.Path("config"))
		if err != nil {
			return err
		}
		var routes []*route
		closeAll := func() {
			for _, r := range routes {
				r.close()
			}
		}
		for i, arg := range c.StringSlice("route") {
			listen, upstream, found := strings.Cut(arg, "=")
			if !found {
				closeAll()
				return fmt.Errorf("invalid route %q: expected <listen>=<upstream>", arg)
			}
			// Offset seeds so that routes do not impair identically.
			routeCfg := cfg
			routeCfg.Outgoing.Seed += int64(i)
			routeCfg.Incoming.Seed += int64(i)

			r, err := newRoute(c.Context, listen, upstream, routeCfg, routeOptions{
				pollInterval:    c.Duration("poll-interval"),
				breakerFailures: c.Int("breaker-failures"),
				breakerReset:    c.Duration("breaker-reset"),
				latency:         c.String("latency"),
			})
			if err != nil {
				closeAll()
				return err
			}
			routes = append(routes, r)
			_, _ = fmt.Fprintf(c.App.Writer, "Relaying %s <-> %s\n", r.client.LocalAddr(), upstream)
		}

		eg, ctx := errgroup.WithContext(c.Context)
		for _, r := range routes {
			r := r
			eg.Go(func() error { return r.run(ctx) })
		}
		return eg.Wait()
	},
}

// route relays datagrams between a single client and its upstream. Datagrams
// from the client are impaired by the outgoing direction of the wrapped
// upstream transport, and replies by its incoming direction.
type route struct {
	client   net.PacketConn
	clientTr *transport.PacketConn
	upstream *lossy.Conn
}

type routeOptions struct {
	pollInterval    time.Duration
	breakerFailures int
	breakerReset    time.Duration
	latency         string
}

func newRoute(ctx context.Context, listen, upstream string, cfg lossy.Config, opts routeOptions) (*route, error) {
	if opts.breakerFailures < 1 {
		return nil, fmt.Errorf("breaker failures must be at least 1, got %d", opts.breakerFailures)
	}
	if opts.latency == "" {
		opts.latency = "fixed"
	}
	connOpts, err := latencyOptions(opts.latency, cfg)
	if err != nil {
		return nil, err
	}
	upstreamAddr, err := net.ResolveUDPAddr("udp", upstream)
	if err != nil {
		return nil, fmt.Errorf("resolving upstream %s: %w", upstream, err)
	}
	client, err := net.ListenPacket("udp", listen)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", listen, err)
	}
	upstreamConn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("opening upstream socket: %w", err)
	}
	clientTr := transport.NewPacketConn(client, nil)
	clientTr.SetReadTimeout(opts.pollInterval)
	upstreamTr := transport.NewPacketConn(upstreamConn, upstreamAddr)
	upstreamTr.SetReadTimeout(opts.pollInterval)
	guarded := transport.NewBreaker(upstreamTr, clock.GetClock(ctx), opts.breakerFailures, opts.breakerReset)

	conn, err := lossy.NewConn(ctx, guarded, cfg, connOpts...)
	if err != nil {
		_ = client.Close()
		_ = upstreamConn.Close()
		return nil, fmt.Errorf("wrapping upstream: %w", err)
	}
	return &route{
		client:   client,
		clientTr: clientTr,
		upstream: conn,
	}, nil
}

func (r *route) run(ctx context.Context) error {
	defer r.close()

	buf := make([]byte, 65507)
	for ctx.Err() == nil {
		n, err := r.clientTr.Read(buf)
		if err != nil {
			return fmt.Errorf("reading from client: %w", err)
		}
		if n > 0 {
			// Writes to a lossy.Conn never fail.
			_, _ = r.upstream.Write(buf[:n])
		}
		if _, err := r.upstream.Flush(); errors.Is(err, transport.ErrBreakerOpen) {
			log.Debugw("upstream writes suspended; datagram discarded")
		} else if err != nil {
			log.Warnw("failed to relay datagram upstream", "error", err)
		}
		r.relayReplies(buf)
	}
	return nil
}

// relayReplies forwards every reply that is due to the client.
func (r *route) relayReplies(buf []byte) {
	for {
		n, err := r.upstream.Read(buf)
		if err != nil {
			log.Warnw("failed to read from upstream", "error", err)
			return
		}
		if n == 0 {
			return
		}
		if _, err := r.clientTr.Write(buf[:n]); err != nil {
			log.Warnw("failed to relay reply to client", "client", r.clientTr.Peer(), "error", err)
		}
	}
}

func (r *route) close() {
	if err := r.upstream.Close(); err != nil {
		log.Warnw("failed to close upstream", "error", err)
	}
	if err := r.clientTr.Close(); err != nil {
		log.Warnw("failed to close client", "error", err)
	}
}
