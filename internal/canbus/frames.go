// Package canbus connects the parking core to motor and sensor nodes on a
// CAN bus. Frames use a fixed little-endian layout.
package canbus

import (
	"encoding/binary"
	"errors"
	"fmt"

	"go.einride.tech/can"

	"github.com/san-kum/autopark/internal/vehicle"
)

const (
	MotorCommandID  uint32 = 0x200
	SensorRequestID uint32 = 0x310
	// SensorReplyBase plus the vehicle.Side carries a distance reading.
	SensorReplyBase uint32 = 0x300
)

// Command is the first byte of a motor frame.
type Command uint8

const (
	CmdDifferential Command = iota + 1
	CmdForward
	CmdReverse
	CmdStop
)

func (c Command) String() string {
	switch c {
	case CmdDifferential:
		return "differential"
	case CmdForward:
		return "forward"
	case CmdReverse:
		return "reverse"
	case CmdStop:
		return "stop"
	default:
		return fmt.Sprintf("command(%d)", uint8(c))
	}
}

var ErrBadFrame = errors.New("canbus: malformed frame")

// EncodeMotor builds a motor frame. Speeds are clamped to int16.
func EncodeMotor(cmd Command, left, right int) can.Frame {
	f := can.Frame{ID: MotorCommandID, Length: 5}
	f.Data[0] = byte(cmd)
	binary.LittleEndian.PutUint16(f.Data[1:3], uint16(clamp16(left)))
	binary.LittleEndian.PutUint16(f.Data[3:5], uint16(clamp16(right)))
	return f
}

func DecodeMotor(f can.Frame) (Command, int, int, error) {
	if f.ID != MotorCommandID || f.Length < 5 {
		return 0, 0, 0, fmt.Errorf("motor frame id 0x%X len %d: %w", f.ID, f.Length, ErrBadFrame)
	}
	left := int(int16(binary.LittleEndian.Uint16(f.Data[1:3])))
	right := int(int16(binary.LittleEndian.Uint16(f.Data[3:5])))
	return Command(f.Data[0]), left, right, nil
}

// EncodeSensorRequest asks the node on side for a reading. The node echoes
// seq in its reply.
func EncodeSensorRequest(side vehicle.Side, seq uint8) can.Frame {
	f := can.Frame{ID: SensorRequestID, Length: 2}
	f.Data[0] = byte(side)
	f.Data[1] = seq
	return f
}

func EncodeSensorReply(side vehicle.Side, seq uint8, distance int) can.Frame {
	f := can.Frame{ID: SensorReplyBase + uint32(side), Length: 5}
	binary.LittleEndian.PutUint32(f.Data[0:4], uint32(int32(distance)))
	f.Data[4] = seq
	return f
}

// DecodeSensorReply returns the side, echoed sequence number and distance
// carried by f.
func DecodeSensorReply(f can.Frame) (vehicle.Side, uint8, int, error) {
	if f.ID < SensorReplyBase || f.ID > SensorReplyBase+uint32(vehicle.Rear) || f.Length < 5 {
		return 0, 0, 0, fmt.Errorf("sensor frame id 0x%X len %d: %w", f.ID, f.Length, ErrBadFrame)
	}
	d := int(int32(binary.LittleEndian.Uint32(f.Data[0:4])))
	return vehicle.Side(f.ID - SensorReplyBase), f.Data[4], d, nil
}

func clamp16(v int) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
