package net

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
)

// Datagram is one decoded inbound request.
type Datagram struct {
	Addr *net.UDPAddr
	Op   Opcode
	Args []string
}

// Conn owns the UDP socket. A single reader goroutine decodes datagrams and
// pushes them onto a bounded queue; the simulation loop drains the queue on
// its own schedule (bounded per tick), so a flood of small packets cannot
// starve the tick. When the queue itself is full, datagrams are dropped with
// a warning — UDP semantics, the client retries.
//
// Failure policy: checksum mismatches and undersized packets are logged and
// dropped, never surfaced to the sender. Only the socket bind can fail, and
// that aborts startup.
type Conn struct {
	sock     *net.UDPConn
	checksum string
	inbound  chan Datagram
	log      *zap.Logger

	closeCh   chan struct{}
	closeOnce sync.Once
}

func NewConn(bindAddr, checksum string, queueSize int, log *zap.Logger) (*Conn, error) {
	if len(checksum) != ChecksumLen {
		return nil, fmt.Errorf("checksum secret must be exactly %d bytes, got %d", ChecksumLen, len(checksum))
	}
	addr, err := net.ResolveUDPAddr("udp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", bindAddr, err)
	}
	sock, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", bindAddr, err)
	}
	return &Conn{
		sock:     sock,
		checksum: checksum,
		inbound:  make(chan Datagram, queueSize),
		log:      log,
		closeCh:  make(chan struct{}),
	}, nil
}

// ReadLoop runs in its own goroutine until Close.
func (c *Conn) ReadLoop() {
	buf := make([]byte, BufferSize)
	for {
		n, addr, err := c.sock.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-c.closeCh:
				return
			default:
			}
			c.log.Error("udp read", zap.Error(err))
			continue
		}

		op, args, err := Decode(c.checksum, buf[:n])
		if err != nil {
			if errors.Is(err, ErrChecksumMismatch) {
				c.log.Debug("wrong checksum, ignoring packet", zap.String("from", addr.String()))
			} else {
				c.log.Debug("malformed packet, ignoring", zap.String("from", addr.String()), zap.Error(err))
			}
			continue
		}

		select {
		case c.inbound <- Datagram{Addr: addr, Op: op, Args: args}:
		default:
			c.log.Warn("inbound queue full, dropping datagram",
				zap.String("op", string(op)),
				zap.String("from", addr.String()),
			)
		}
	}
}

// Inbound returns the decoded-request queue for the simulation loop.
func (c *Conn) Inbound() <-chan Datagram {
	return c.inbound
}

// SendTo encodes and transmits one response datagram. Send failures are
// logged, never propagated: the tick loop must not unwind on a dead client.
func (c *Conn) SendTo(addr *net.UDPAddr, op Opcode, args ...string) {
	buf, err := Encode(c.checksum, op, args...)
	if err != nil {
		c.log.Error("encode packet", zap.String("op", string(op)), zap.Error(err))
		return
	}
	if _, err := c.sock.WriteToUDP(buf, addr); err != nil {
		c.log.Debug("udp write", zap.String("to", addr.String()), zap.Error(err))
	}
}

func (c *Conn) LocalAddr() net.Addr {
	return c.sock.LocalAddr()
}

func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		c.sock.Close()
	})
}
