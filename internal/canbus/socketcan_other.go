//go:build !linux

package canbus

import (
	"context"
	"errors"

	"go.einride.tech/can"
)

// Bus is unavailable off Linux.
type Bus struct{}

func Dial(ctx context.Context, iface string) (*Bus, error) {
	return nil, errors.New("canbus: socketcan requires linux")
}

func (b *Bus) WriteFrame(ctx context.Context, frame can.Frame) error {
	return errors.New("canbus: socketcan requires linux")
}

func (b *Bus) ReadFrame(ctx context.Context) (can.Frame, error) {
	return can.Frame{}, errors.New("canbus: socketcan requires linux")
}

func (b *Bus) Close() error { return nil }
