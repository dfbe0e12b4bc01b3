package models

import (
	"encoding/binary"
	"fmt"
)

const clockVectorSize = 8

// Clock is an opaque watermark over the posting log. An empty vector means "latest".
type Clock struct {
	Vector []byte `json:"vector,omitempty" swaggertype:"string" format:"base64"`
}

func NewClock(value int64) Clock {
	v := make([]byte, clockVectorSize)
	binary.BigEndian.PutUint64(v, uint64(value))
	return Clock{Vector: v}
}

func (c Clock) IsLatest() bool {
	return len(c.Vector) == 0
}

// Value decodes the watermark carried by the vector.
func (c Clock) Value() (int64, error) {
	if len(c.Vector) != clockVectorSize {
		return 0, fmt.Errorf("clock vector must be %d bytes, got %d", clockVectorSize, len(c.Vector))
	}
	value := int64(binary.BigEndian.Uint64(c.Vector))
	if value < 0 {
		return 0, fmt.Errorf("clock value %d is negative", value)
	}
	return value, nil
}
