package wire

import (
	"encoding/binary"
	"math"
)

// ResponseSize is the length of the status reply sent after each packet.
const ResponseSize = 64

// Response is the status a device sends back to the streaming client so it
// can pace itself against buffer depth and clock skew. Ages are seconds.
type Response struct {
	Version    uint32
	Clock      float64
	OldestAge  float64
	NewestAge  float64
	Brightness float64
	Signal     float64
	BufferSize uint32
	BufferPos  uint32
	FPS        uint32
	Watts      uint32
}

// Encode lays the response out little-endian, prefixed by its size.
func (r Response) Encode() []byte {
	b := make([]byte, ResponseSize)
	le := binary.LittleEndian
	le.PutUint32(b[0:4], ResponseSize)
	le.PutUint32(b[4:8], r.Version)
	le.PutUint64(b[8:16], math.Float64bits(r.Clock))
	le.PutUint64(b[16:24], math.Float64bits(r.OldestAge))
	le.PutUint64(b[24:32], math.Float64bits(r.NewestAge))
	le.PutUint64(b[32:40], math.Float64bits(r.Brightness))
	le.PutUint64(b[40:48], math.Float64bits(r.Signal))
	le.PutUint32(b[48:52], r.BufferSize)
	le.PutUint32(b[52:56], r.BufferPos)
	le.PutUint32(b[56:60], r.FPS)
	le.PutUint32(b[60:64], r.Watts)
	return b
}

// DecodeResponse is the inverse of Encode. ok is false on a short or
// mis-sized reply.
func DecodeResponse(b []byte) (r Response, ok bool) {
	le := binary.LittleEndian
	if len(b) < ResponseSize || le.Uint32(b[0:4]) != ResponseSize {
		return Response{}, false
	}
	return Response{
		Version:    le.Uint32(b[4:8]),
		Clock:      math.Float64frombits(le.Uint64(b[8:16])),
		OldestAge:  math.Float64frombits(le.Uint64(b[16:24])),
		NewestAge:  math.Float64frombits(le.Uint64(b[24:32])),
		Brightness: math.Float64frombits(le.Uint64(b[32:40])),
		Signal:     math.Float64frombits(le.Uint64(b[40:48])),
		BufferSize: le.Uint32(b[48:52]),
		BufferPos:  le.Uint32(b[52:56]),
		FPS:        le.Uint32(b[56:60]),
		Watts:      le.Uint32(b[60:64]),
	}, true
}
