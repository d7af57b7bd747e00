// Package udp receives scoring-system datagrams and feeds decoded events
// into the pipeline in arrival order.
package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/internal/domain/pss"
	"github.com/ringcast/ringcast/pkg/logger"
	"github.com/ringcast/ringcast/pkg/metrics"
)

// Default listener configuration constants.
const (
	defaultChannelBuffer = 1024
	maxDatagramSize      = 64 * 1024
)

// Listener owns the UDP socket. Malformed datagrams never terminate the
// read loop; they surface as raw events like everything else.
type Listener struct {
	addr          string
	channelBuffer int
	log           logger.Logger

	conn *net.UDPConn
}

// New creates a listener for the given UDP address.
func New(addr string, opts ...Option) *Listener {
	l := &Listener{
		addr:          addr,
		channelBuffer: defaultChannelBuffer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(l)
	}

	if l.log == nil {
		l.log = logger.Get().Named("udp")
	}
	return l
}

// Start binds the socket and begins reading. Events are delivered on the
// returned channel in arrival order; the channel closes when ctx is
// cancelled or the socket dies.
func (l *Listener) Start(ctx context.Context) (<-chan model.Event, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", l.addr)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", l.addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", l.addr, err)
	}
	l.conn = conn

	events := make(chan model.Event, l.channelBuffer)

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	go func() {
		defer close(events)
		buf := make([]byte, maxDatagramSize)
		for {
			n, _, err := conn.ReadFromUDP(buf)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
					return
				}
				l.log.Warn(ctx, "read failed", logger.Error(err))
				continue
			}

			metrics.RecordDatagramReceived()
			raw := make([]byte, n)
			copy(raw, buf[:n])

			ev := pss.Decode(raw, time.Now())
			metrics.RecordEventDecoded(ev.Kind.String())

			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	l.log.Info(ctx, "listening", logger.String("addr", conn.LocalAddr().String()))
	return events, nil
}

// Addr returns the bound address, valid after Start.
func (l *Listener) Addr() string {
	if l.conn == nil {
		return l.addr
	}
	return l.conn.LocalAddr().String()
}
