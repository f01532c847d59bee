package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/filecoin-project/go-lossy"
	"github.com/filecoin-project/go-lossy/internal/clock"
	"github.com/filecoin-project/go-lossy/transport"
	"github.com/urfave/cli/v2"
)

var simCmd = cli.Command{
	Name:  "sim",
	Usage: "simulates a round trip of datagrams over a loopback transport in virtual time",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "count",
			Usage: "number of datagrams to send",
			Value: 1000,
		},
		&cli.DurationFlag{
			Name:  "interval",
			Usage: "virtual time between consecutive datagrams",
			Value: 10 * time.Millisecond,
		},
		latencyFlag,
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfigOrDefault(c.Path("config"))
		if err != nil {
			return err
		}
		opts, err := latencyOptions(c.String("latency"), cfg)
		if err != nil {
			return err
		}
		result, err := simulate(c.Context, cfg, c.Int("count"), c.Duration("interval"), opts...)
		if err != nil {
			return err
		}
		result.print(c.App.Writer)
		return nil
	},
}

type simResult struct {
	sent       int
	delivered  int
	unique     int
	duplicates int
	corrupted  int
	outOfOrder int
	minHold    time.Duration
	maxHold    time.Duration
	totalHold  time.Duration
	elapsed    time.Duration
}

func (r *simResult) lost() int { return r.sent - r.unique }

func (r *simResult) meanHold() time.Duration {
	if r.delivered == r.corrupted {
		return 0
	}
	return r.totalHold / time.Duration(r.delivered-r.corrupted)
}

func (r *simResult) print(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Sent:         %d\n", r.sent)
	_, _ = fmt.Fprintf(w, "Delivered:    %d\n", r.delivered)
	_, _ = fmt.Fprintf(w, "Lost:         %d\n", r.lost())
	_, _ = fmt.Fprintf(w, "Duplicates:   %d\n", r.duplicates)
	_, _ = fmt.Fprintf(w, "Corrupted:    %d\n", r.corrupted)
	_, _ = fmt.Fprintf(w, "Out of order: %d\n", r.outOfOrder)
	_, _ = fmt.Fprintf(w, "Round trip:   min=%s mean=%s max=%s\n", r.minHold, r.meanHold(), r.maxHold)
	_, _ = fmt.Fprintf(w, "Elapsed:      %s (virtual)\n", r.elapsed)
}

// simulate sends count sequence-numbered datagrams through a Conn wrapping a
// loopback transport, so that every datagram crosses both directions, and
// tallies what comes back.
func simulate(ctx context.Context, cfg lossy.Config, count int, interval time.Duration, o ...lossy.Option) (*simResult, error) {
	if count < 0 {
		return nil, fmt.Errorf("count cannot be negative: %d", count)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive: %s", interval)
	}
	ctx, clk := clock.WithMockClock(ctx)
	loopback := transport.NewLoopback()
	conn, err := lossy.NewConn(ctx, loopback, cfg, o...)
	if err != nil {
		return nil, fmt.Errorf("creating conn: %w", err)
	}
	defer conn.Close()

	var (
		result   simResult
		start    = clk.Now()
		nextSend = start
		sentAt   = make(map[uint64]time.Time, count)
		seen     = make(map[uint64]struct{}, count)
		highest  uint64
		buf      = make([]byte, 64)
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		now := clk.Now()
		for result.sent < count && !now.Before(nextSend) {
			seq := uint64(result.sent)
			_, _ = conn.Write(encodeSeq(seq))
			sentAt[seq] = now
			result.sent++
			nextSend = nextSend.Add(interval)
		}
		if _, err := conn.Flush(); err != nil {
			return nil, fmt.Errorf("flushing: %w", err)
		}
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return nil, fmt.Errorf("reading: %w", err)
			}
			if n == 0 {
				if loopback.Len() == 0 {
					break
				}
				continue
			}
			result.delivered++
			seq, ok := decodeSeq(buf[:n])
			if !ok {
				result.corrupted++
				continue
			}
			if _, dup := seen[seq]; dup {
				result.duplicates++
			} else {
				seen[seq] = struct{}{}
				result.unique++
			}
			if seq < highest {
				result.outOfOrder++
			} else {
				highest = seq
			}
			hold := now.Sub(sentAt[seq])
			if result.delivered-result.corrupted == 1 || hold < result.minHold {
				result.minHold = hold
			}
			if hold > result.maxHold {
				result.maxHold = hold
			}
			result.totalHold += hold
		}

		outgoing, incoming := conn.Pending()
		if result.sent == count && outgoing == 0 && incoming == 0 {
			result.elapsed = now.Sub(start)
			return &result, nil
		}
		// Jump straight to the next send or release.
		next := nextSend
		if release, found := conn.NextReleaseAt(); found && (result.sent == count || release.Before(next)) {
			next = release
		}
		clk.Set(next)
	}
}

// encodeSeq encodes seq followed by its complement, so that corruption of any
// bit is detectable.
func encodeSeq(seq uint64) []byte {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b, seq)
	binary.BigEndian.PutUint64(b[8:], ^seq)
	return b
}

func decodeSeq(b []byte) (uint64, bool) {
	if len(b) != 16 {
		return 0, false
	}
	seq := binary.BigEndian.Uint64(b)
	return seq, binary.BigEndian.Uint64(b[8:]) == ^seq
}
