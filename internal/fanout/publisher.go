package fanout

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"
)

// Publisher is the handler side of the broker's TCP ingress, standing
// in for the ZMQ PUSH socket original_source's web application writes
// envelopes to. One Publisher is safe for concurrent use by many
// request handlers.
type Publisher struct {
	addr string

	mu   sync.Mutex
	conn net.Conn
	w    *bufio.Writer
}

// NewPublisher targets the broker's ingress address
// (config.PortsConfig.WebsocketPathIn). The connection is established
// lazily on first Publish and re-established on write failure.
func NewPublisher(addr string) *Publisher {
	return &Publisher{addr: addr}
}

// Publish sends one envelope to the broker for fan-out. Delivery is
// best-effort: a broker outage drops the message rather than blocking
// the HTTP handler that produced it, the same trade-off a ZMQ PUSH
// socket with a bounded high-water mark makes.
func (p *Publisher) Publish(e Envelope) error {
	body, err := e.Encode()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		if err := p.dialLocked(); err != nil {
			return err
		}
	}

	if err := p.writeLocked(body); err != nil {
		p.conn.Close()
		p.conn = nil
		if err := p.dialLocked(); err != nil {
			return err
		}
		return p.writeLocked(body)
	}
	return nil
}

func (p *Publisher) dialLocked() error {
	conn, err := net.DialTimeout("tcp", p.addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("fanout: dial broker ingress %s: %w", p.addr, err)
	}
	p.conn = conn
	p.w = bufio.NewWriter(conn)
	return nil
}

func (p *Publisher) writeLocked(body []byte) error {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(body)))
	if _, err := p.w.Write(length[:]); err != nil {
		return err
	}
	if _, err := p.w.Write(body); err != nil {
		return err
	}
	return p.w.Flush()
}

// Close releases the underlying connection, if any.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}
