package canbus

import (
	"context"
	"fmt"
	"net"

	log "github.com/sirupsen/logrus"
	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

// Bus is a SocketCAN connection. A single receive loop feeds ReadFrame
// so a canceled read never loses the next frame.
type Bus struct {
	conn   net.Conn
	tx     *socketcan.Transmitter
	frames chan can.Frame
	done   chan struct{}
}

// Dial opens iface (e.g. "can0" or "vcan0").
func Dial(ctx context.Context, iface string) (*Bus, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial: %w", err)
	}
	b := &Bus{
		conn:   conn,
		tx:     socketcan.NewTransmitter(conn),
		frames: make(chan can.Frame, 64),
		done:   make(chan struct{}),
	}
	go b.receive()
	return b, nil
}

func (b *Bus) receive() {
	defer close(b.done)
	rx := socketcan.NewReceiver(b.conn)
	for rx.Receive() {
		select {
		case b.frames <- rx.Frame():
		default:
			log.Debugf("[canbus] receive queue full, dropping frame")
		}
	}
	if err := rx.Err(); err != nil {
		log.Debugf("[canbus] receiver stopped: %v", err)
	}
}

func (b *Bus) WriteFrame(ctx context.Context, frame can.Frame) error {
	return b.tx.TransmitFrame(ctx, frame)
}

func (b *Bus) ReadFrame(ctx context.Context) (can.Frame, error) {
	select {
	case <-ctx.Done():
		return can.Frame{}, ctx.Err()
	case f := <-b.frames:
		return f, nil
	case <-b.done:
		return can.Frame{}, fmt.Errorf("socketcan receiver closed")
	}
}

func (b *Bus) Close() error {
	return b.conn.Close()
}
